package ledger

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/rangequery/xerrors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLedgerAppendAndTotal(t *testing.T) {
	l, err := NewLedger(4)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}

	idx, err := l.Append(d("10.50"))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if idx != 0 {
		t.Errorf("first Append idx = %d, want 0", idx)
	}
	idx, err = l.Append(d("2.25"))
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if idx != 1 {
		t.Errorf("second Append idx = %d, want 1", idx)
	}

	if got := l.Total(); !got.Equal(d("12.75")) {
		t.Errorf("Total() = %s, want 12.75", got)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
	if l.Cap() != 4 {
		t.Errorf("Cap() = %d, want 4", l.Cap())
	}
}

func TestLedgerEmpty(t *testing.T) {
	l, err := NewLedger(3)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}

	if got := l.Total(); !got.IsZero() {
		t.Errorf("Total() on empty ledger = %s, want 0", got)
	}
	if _, err := l.BalanceBetween(0, 0); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("BalanceBetween on empty ledger: got %v, want ErrInvalidRange", err)
	}
	if _, err := l.RunningBalance(0); !errors.Is(err, xerrors.ErrIndexOutOfRange) {
		t.Errorf("RunningBalance on empty ledger: got %v, want ErrIndexOutOfRange", err)
	}
}

func TestLedgerFull(t *testing.T) {
	l, err := NewLedger(2)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}
	if _, err := l.Append(d("1")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := l.Append(d("2")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if _, err := l.Append(d("3")); !errors.Is(err, xerrors.ErrLedgerFull) {
		t.Errorf("Append beyond capacity: got %v, want ErrLedgerFull", err)
	}
	if got := l.Total(); !got.Equal(d("3")) {
		t.Errorf("Total() after rejected append = %s, want 3", got)
	}
}

func TestLedgerInvalidCapacity(t *testing.T) {
	if _, err := NewLedger(0); !errors.Is(err, xerrors.ErrInvalidCapacity) {
		t.Errorf("NewLedger(0): got %v, want ErrInvalidCapacity", err)
	}
	if _, err := NewLedger(-5); !errors.Is(err, xerrors.ErrInvalidCapacity) {
		t.Errorf("NewLedger(-5): got %v, want ErrInvalidCapacity", err)
	}
}

func TestLedgerAdjust(t *testing.T) {
	l, err := NewLedger(8, WithName("fees"))
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}
	for _, amount := range []string{"100.00", "200.00", "300.00"} {
		if _, err := l.Append(d(amount)); err != nil {
			t.Fatalf("Append(%s) failed: %v", amount, err)
		}
	}

	// 每笔收取 0.50 手续费。
	if err := l.Adjust(0, 2, d("-0.50")); err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}

	if got := l.Total(); !got.Equal(d("598.50")) {
		t.Errorf("Total() = %s, want 598.50", got)
	}
	got, err := l.BalanceBetween(1, 1)
	if err != nil {
		t.Fatalf("BalanceBetween failed: %v", err)
	}
	if !got.Equal(d("199.50")) {
		t.Errorf("BalanceBetween(1, 1) = %s, want 199.50", got)
	}
	got, err = l.BalanceBetween(1, 2)
	if err != nil {
		t.Fatalf("BalanceBetween failed: %v", err)
	}
	if !got.Equal(d("499.00")) {
		t.Errorf("BalanceBetween(1, 2) = %s, want 499.00", got)
	}
}

func TestLedgerAdjustRejectsUnregistered(t *testing.T) {
	l, err := NewLedger(5)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}
	if _, err := l.Append(d("1")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := l.Append(d("2")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	// 调整范围不得越过已登记的条目，即便容量还有空位。
	if err := l.Adjust(0, 2, d("1")); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("Adjust beyond size: got %v, want ErrInvalidRange", err)
	}
	if err := l.Adjust(1, 0, d("1")); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("Adjust with inverted range: got %v, want ErrInvalidRange", err)
	}
	if got := l.Total(); !got.Equal(d("3")) {
		t.Errorf("Total() after rejected adjusts = %s, want 3", got)
	}
}

func TestLedgerSet(t *testing.T) {
	l, err := NewLedger(3)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}
	if _, err := l.Append(d("10")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := l.Append(d("20")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if err := l.Set(1, d("50.25")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := l.Total(); !got.Equal(d("60.25")) {
		t.Errorf("Total() after set = %s, want 60.25", got)
	}

	if err := l.Set(2, d("1")); !errors.Is(err, xerrors.ErrIndexOutOfRange) {
		t.Errorf("Set on unregistered idx: got %v, want ErrIndexOutOfRange", err)
	}
}

func TestLedgerRunningBalance(t *testing.T) {
	l, err := NewLedger(4)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}
	for _, amount := range []string{"10", "20", "30"} {
		if _, err := l.Append(d(amount)); err != nil {
			t.Fatalf("Append(%s) failed: %v", amount, err)
		}
	}

	got, err := l.RunningBalance(1)
	if err != nil {
		t.Fatalf("RunningBalance failed: %v", err)
	}
	if !got.Equal(d("30")) {
		t.Errorf("RunningBalance(1) = %s, want 30", got)
	}
	got, err = l.RunningBalance(2)
	if err != nil {
		t.Fatalf("RunningBalance failed: %v", err)
	}
	if !got.Equal(d("60")) {
		t.Errorf("RunningBalance(2) = %s, want 60", got)
	}

	if _, err := l.RunningBalance(-1); !errors.Is(err, xerrors.ErrIndexOutOfRange) {
		t.Errorf("RunningBalance(-1): got %v, want ErrIndexOutOfRange", err)
	}
	if _, err := l.RunningBalance(3); !errors.Is(err, xerrors.ErrIndexOutOfRange) {
		t.Errorf("RunningBalance(3): got %v, want ErrIndexOutOfRange", err)
	}
}

func TestLedgerRounding(t *testing.T) {
	l, err := NewLedger(2)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}

	// 半分按四舍五入进位。
	if _, err := l.Append(d("0.005")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if got := l.Total(); !got.Equal(d("0.01")) {
		t.Errorf("Total() = %s, want 0.01", got)
	}

	if _, err := l.Append(d("1.004")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if got := l.Total(); !got.Equal(d("1.01")) {
		t.Errorf("Total() = %s, want 1.01", got)
	}
}

func TestLedgerAmountOverflow(t *testing.T) {
	l, err := NewLedger(2)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}

	huge := decimal.New(1, 20) // 1e20 元，换算为分后超出 int64。
	if _, err := l.Append(huge); !errors.Is(err, xerrors.ErrAmountOverflow) {
		t.Errorf("Append(1e20): got %v, want ErrAmountOverflow", err)
	}
	if l.Len() != 0 {
		t.Errorf("Len() after rejected append = %d, want 0", l.Len())
	}

	if _, err := l.Append(d("1")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := l.Adjust(0, 0, huge); !errors.Is(err, xerrors.ErrAmountOverflow) {
		t.Errorf("Adjust(1e20): got %v, want ErrAmountOverflow", err)
	}
}

func TestLedgerConcurrentAppend(t *testing.T) {
	const (
		workers = 8
		perW    = 8
	)
	l, err := NewLedger(workers * perW)
	if err != nil {
		t.Fatalf("NewLedger failed: %v", err)
	}

	indices := make(chan int, workers*perW)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perW; i++ {
				idx, err := l.Append(d("1.00"))
				if err != nil {
					t.Errorf("Append failed: %v", err)
					return
				}
				indices <- idx
			}
		}()
	}
	wg.Wait()
	close(indices)

	seen := make(map[int]bool)
	for idx := range indices {
		if seen[idx] {
			t.Errorf("Append returned duplicate idx %d", idx)
		}
		seen[idx] = true
	}
	if len(seen) != workers*perW {
		t.Errorf("appended %d entries, want %d", len(seen), workers*perW)
	}
	if got := l.Total(); !got.Equal(d("64.00")) {
		t.Errorf("Total() = %s, want 64.00", got)
	}
}
