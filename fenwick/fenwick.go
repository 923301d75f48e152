// Package fenwick 提供树状数组（Binary Indexed Tree）以及配套的坐标压缩，
// 面向前缀和与区间和的 O(log n) 维护。与线段树相比，树状数组只支持
// 加法增量与求和，但常数更小、内存占用仅 n+1 个元素。
package fenwick

import (
	"github.com/wyfcoding/rangequery/xerrors"
)

// Number 约束树状数组可维护的数值类型。
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// FenwickTree 树状数组。内部数组 1 起始、长度 n+1，下标 0 闲置；
// 对外接口统一使用 0 起始下标与闭区间，与本仓库其他结构保持一致。
//
// 更新是加法增量而非赋值。本结构不做内部同步，由调用方串行化
// 同一实例上的操作，共享场景使用 SyncedFenwickTree。
type FenwickTree[T Number] struct {
	nodes []T
	n     int
}

// NewFenwickTree 构建全零的树状数组。n 允许为 0，此时一切读写都会被拒绝。
func NewFenwickTree[T Number](n int) (*FenwickTree[T], error) {
	if n < 0 {
		return nil, xerrors.ErrInvalidCapacity
	}
	return &FenwickTree[T]{
		nodes: make([]T, n+1),
		n:     n,
	}, nil
}

// NewFenwickTreeFrom 根据初始序列构建，时间复杂度 O(n log n)。
func NewFenwickTreeFrom[T Number](values []T) *FenwickTree[T] {
	t := &FenwickTree[T]{
		nodes: make([]T, len(values)+1),
		n:     len(values),
	}
	for i, v := range values {
		t.add(i+1, v)
	}
	return t
}

// Update 给 idx 处的元素加上 delta，时间复杂度 O(log n)。
func (t *FenwickTree[T]) Update(idx int, delta T) error {
	if idx < 0 || idx >= t.n {
		return xerrors.ErrIndexOutOfRange
	}

	t.add(idx+1, delta)
	return nil
}

// add 沿 i += i & (-i) 上行，把增量累进每个覆盖 i 的节点。
func (t *FenwickTree[T]) add(i int, delta T) {
	for ; i <= t.n; i += i & (-i) {
		t.nodes[i] += delta
	}
}

// PrefixSum 返回闭区间 [0, idx] 的和，时间复杂度 O(log n)。
// idx == -1 表示空前缀，返回 0；其余越界下标以 ErrIndexOutOfRange 拒绝。
func (t *FenwickTree[T]) PrefixSum(idx int) (T, error) {
	var zero T
	if idx == -1 {
		return zero, nil
	}
	if idx < 0 || idx >= t.n {
		return zero, xerrors.ErrIndexOutOfRange
	}

	return t.prefix(idx + 1), nil
}

// prefix 沿 i -= i & (-i) 下行，累加不相交的覆盖段。
func (t *FenwickTree[T]) prefix(i int) T {
	var sum T
	for ; i > 0; i -= i & (-i) {
		sum += t.nodes[i]
	}
	return sum
}

// RangeSum 返回闭区间 [left, right] 的和，即 prefix(right) - prefix(left-1)。
// 端点越界或 left > right 都以 ErrInvalidRange 拒绝。
func (t *FenwickTree[T]) RangeSum(left, right int) (T, error) {
	var zero T
	if left > right || left < 0 || right >= t.n {
		return zero, xerrors.ErrInvalidRange
	}

	return t.prefix(right+1) - t.prefix(left), nil
}

// Len 返回原始序列的逻辑大小。
func (t *FenwickTree[T]) Len() int {
	return t.n
}
