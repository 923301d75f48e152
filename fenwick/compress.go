package fenwick

import (
	"cmp"
	"slices"

	"github.com/wyfcoding/rangequery/xerrors"
)

// Compressor 坐标压缩器：把任意可比较值域映射为 1 起始的稠密名次，
// 使树状数组能在值域稀疏、跨度巨大时照常工作。名次保持原值的大小关系。
type Compressor[T cmp.Ordered] struct {
	sorted []T // 升序去重后的值域。
}

// NewCompressor 对输入值域排序去重后建立映射，时间复杂度 O(n log n)。
// 输入切片不会被修改，重复值只占据一个名次。
func NewCompressor[T cmp.Ordered](values []T) *Compressor[T] {
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	return &Compressor[T]{sorted: sorted}
}

// Rank 返回 v 在值域中的 1 起始名次；v 不在值域内时返回 (0, false)。
func (c *Compressor[T]) Rank(v T) (int, bool) {
	i, ok := slices.BinarySearch(c.sorted, v)
	if !ok {
		return 0, false
	}
	return i + 1, true
}

// Value 返回名次对应的原始值，名次必须位于 [1, Len()]。
func (c *Compressor[T]) Value(rank int) (T, error) {
	if rank < 1 || rank > len(c.sorted) {
		var zero T
		return zero, xerrors.ErrRankOutOfRange
	}
	return c.sorted[rank-1], nil
}

// Len 返回去重后的值域大小。
func (c *Compressor[T]) Len() int {
	return len(c.sorted)
}

// Values 返回升序值域的副本。
func (c *Compressor[T]) Values() []T {
	return slices.Clone(c.sorted)
}
