// Package ledger 提供固定容量的交易流水账本：金额以分为单位存进懒标记线段树，
// 支持追加登记、区间批量调整（手续费/利息）与任意区间的余额聚合查询。
package ledger

import (
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/rangequery/segtree"
	"github.com/wyfcoding/rangequery/xerrors"
)

var centsPerUnit = decimal.NewFromInt(100)

// toCents 把十进制金额换算为分，按四舍五入取整。
// 换算结果超出 int64 表示范围时返回 ErrAmountOverflow。
func toCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(centsPerUnit).Round(0).BigInt()
	if !cents.IsInt64() {
		return 0, xerrors.ErrAmountOverflow
	}
	return cents.Int64(), nil
}

// fromCents 把分换算回十进制金额。
func fromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}

type ledgerOptions struct {
	Logger *slog.Logger
	Name   string
}

// Option 定义账本的配置选项。
type Option func(*ledgerOptions)

// WithName 设置账本名称，仅用于日志标识。
func WithName(name string) Option {
	return func(o *ledgerOptions) {
		o.Name = name
	}
}

// WithLogger 注入日志器。
func WithLogger(logger *slog.Logger) Option {
	return func(o *ledgerOptions) {
		o.Logger = logger
	}
}

// Ledger 固定容量的追加式账本。条目一经登记便占据一个稠密下标，
// 金额可以整体调整或单点改写，但条目本身不支持删除。
//
// 余额查询会触发线段树的标记下推，因此读路径与写路径共用互斥锁。
type Ledger struct {
	mu   sync.Mutex
	tree *segtree.LazySegmentTree[int64]
	size int // 已登记的条目数。
	name string
}

// NewLedger 创建容量固定的账本，capacity 必须为正。
func NewLedger(capacity int, opts ...Option) (*Ledger, error) {
	if capacity <= 0 {
		return nil, xerrors.ErrInvalidCapacity
	}

	options := &ledgerOptions{
		Name:   "default-ledger",
		Logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	options.Logger.Info("ledger initialized",
		"name", options.Name,
		"capacity", capacity)

	return &Ledger{
		tree: segtree.NewLazySegmentTree(make([]int64, capacity)),
		name: options.Name,
	}, nil
}

// Append 登记一笔新金额，返回它占据的下标；容量耗尽时返回 ErrLedgerFull。
func (l *Ledger) Append(amount decimal.Decimal) (int, error) {
	cents, err := toCents(amount)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size >= l.tree.Len() {
		return 0, xerrors.ErrLedgerFull
	}
	idx := l.size
	if err := l.tree.Update(idx, cents); err != nil {
		return 0, err
	}
	l.size++
	return idx, nil
}

// Adjust 给闭区间 [left, right] 内的每笔金额加上 delta（可为负），
// 一次调整即覆盖整段，适合费率、利息这类批量场景。
// 端点必须落在已登记的条目内，否则返回 ErrInvalidRange。
func (l *Ledger) Adjust(left, right int, delta decimal.Decimal) error {
	cents, err := toCents(delta)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if left > right || left < 0 || right >= l.size {
		return xerrors.ErrInvalidRange
	}
	return l.tree.RangeUpdate(left, right, cents)
}

// Set 把下标 idx 处的金额改写为 amount，下标必须已登记。
func (l *Ledger) Set(idx int, amount decimal.Decimal) error {
	cents, err := toCents(amount)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if idx < 0 || idx >= l.size {
		return xerrors.ErrIndexOutOfRange
	}
	return l.tree.Update(idx, cents)
}

// BalanceBetween 返回闭区间 [left, right] 内金额之和。
// 端点必须落在已登记的条目内，否则返回 ErrInvalidRange。
func (l *Ledger) BalanceBetween(left, right int) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if left > right || left < 0 || right >= l.size {
		return decimal.Zero, xerrors.ErrInvalidRange
	}
	cents, err := l.tree.Query(left, right)
	if err != nil {
		return decimal.Zero, err
	}
	return fromCents(cents), nil
}

// RunningBalance 返回从第一笔到下标 idx（含）的累计余额。
func (l *Ledger) RunningBalance(idx int) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if idx < 0 || idx >= l.size {
		return decimal.Zero, xerrors.ErrIndexOutOfRange
	}
	cents, err := l.tree.Query(0, idx)
	if err != nil {
		return decimal.Zero, err
	}
	return fromCents(cents), nil
}

// Total 返回全部已登记金额之和，空账本返回 0。
func (l *Ledger) Total() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.size == 0 {
		return decimal.Zero
	}
	// 区间必然合法，错误分支不可达。
	cents, _ := l.tree.Query(0, l.size-1)
	return fromCents(cents)
}

// Len 返回已登记的条目数。
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Cap 返回账本的固定容量。
func (l *Ledger) Cap() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tree.Len()
}
