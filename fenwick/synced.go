package fenwick

import "sync"

// SyncedFenwickTree 是 FenwickTree 的并发安全包装：前缀/区间查询走读锁，
// 更新走写锁。树状数组的查询不改写内部数组，读写锁在这里是安全的。
type SyncedFenwickTree[T Number] struct {
	mu   sync.RWMutex
	tree *FenwickTree[T]
}

// NewSyncedFenwickTree 构建并发安全的全零树状数组。
func NewSyncedFenwickTree[T Number](n int) (*SyncedFenwickTree[T], error) {
	tree, err := NewFenwickTree[T](n)
	if err != nil {
		return nil, err
	}
	return &SyncedFenwickTree[T]{tree: tree}, nil
}

// NewSyncedFenwickTreeFrom 根据初始序列构建并发安全的树状数组。
func NewSyncedFenwickTreeFrom[T Number](values []T) *SyncedFenwickTree[T] {
	return &SyncedFenwickTree[T]{tree: NewFenwickTreeFrom(values)}
}

// Update 给 idx 处的元素加上 delta。
func (s *SyncedFenwickTree[T]) Update(idx int, delta T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Update(idx, delta)
}

// PrefixSum 返回闭区间 [0, idx] 的和。
func (s *SyncedFenwickTree[T]) PrefixSum(idx int) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.PrefixSum(idx)
}

// RangeSum 返回闭区间 [left, right] 的和。
func (s *SyncedFenwickTree[T]) RangeSum(left, right int) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.RangeSum(left, right)
}

// Len 返回原始序列的逻辑大小。
func (s *SyncedFenwickTree[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}
