package segtree

import "sync"

// SyncedSegmentTree 是 SegmentTree 的并发安全包装：查询走读锁，更新走写锁。
// 适合读多写少的共享场景；单写者或已有外部串行化时直接用裸结构即可。
type SyncedSegmentTree[T any] struct {
	mu   sync.RWMutex
	tree *SegmentTree[T]
}

// NewSyncedSegmentTree 构建并发安全的线段树，参数约定与 NewSegmentTree 一致。
func NewSyncedSegmentTree[T any](values []T, agg Aggregate[T]) (*SyncedSegmentTree[T], error) {
	tree, err := NewSegmentTree(values, agg)
	if err != nil {
		return nil, err
	}
	return &SyncedSegmentTree[T]{tree: tree}, nil
}

// Update 单点赋值。
func (s *SyncedSegmentTree[T]) Update(idx int, val T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Update(idx, val)
}

// Query 区间聚合查询。
func (s *SyncedSegmentTree[T]) Query(left, right int) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Query(left, right)
}

// Len 返回原始序列的逻辑大小。
func (s *SyncedSegmentTree[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Len()
}

// Clone 在读锁下深拷贝，返回不带锁语义的裸树副本。
func (s *SyncedSegmentTree[T]) Clone() *SegmentTree[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Clone()
}

// SyncedLazySegmentTree 是 LazySegmentTree 的并发安全包装。
// 注意 Query 也可能下推标记改写内部数组，因此查询同样走写锁。
type SyncedLazySegmentTree[T Number] struct {
	mu   sync.Mutex
	tree *LazySegmentTree[T]
}

// NewSyncedLazySegmentTree 构建并发安全的懒标记线段树。
func NewSyncedLazySegmentTree[T Number](values []T) *SyncedLazySegmentTree[T] {
	return &SyncedLazySegmentTree[T]{tree: NewLazySegmentTree(values)}
}

// RangeUpdate 区间加。
func (s *SyncedLazySegmentTree[T]) RangeUpdate(left, right int, delta T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.RangeUpdate(left, right, delta)
}

// Update 单点赋值。
func (s *SyncedLazySegmentTree[T]) Update(idx int, val T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Update(idx, val)
}

// Query 区间求和。
func (s *SyncedLazySegmentTree[T]) Query(left, right int) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Query(left, right)
}

// Len 返回原始序列的逻辑大小。
func (s *SyncedLazySegmentTree[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Len()
}

// Clone 深拷贝内部状态，返回不带锁语义的裸树副本。
func (s *SyncedLazySegmentTree[T]) Clone() *LazySegmentTree[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}
