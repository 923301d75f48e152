package fenwick

import "cmp"

// CountSmallerBefore 对每个下标 i 统计满足 j < i 且 values[j] < values[i]
// 的 j 的个数。先做坐标压缩，再按出现顺序往树状数组里登记名次，
// 整体时间复杂度 O(n log n)。
func CountSmallerBefore[T cmp.Ordered](values []T) []int64 {
	counts := make([]int64, len(values))
	comp := NewCompressor(values)
	bit, _ := NewFenwickTree[int64](comp.Len())

	for i, v := range values {
		// v 取自原序列，名次必然存在；名次为 1 时前缀为空，PrefixSum(-1) 返回 0。
		rank, _ := comp.Rank(v)
		smaller, _ := bit.PrefixSum(rank - 2)
		counts[i] = smaller
		_ = bit.Update(rank-1, 1)
	}
	return counts
}

// CountInversions 统计逆序对个数，即满足 j < i 且 values[j] > values[i]
// 的下标对 (j, i) 的个数。时间复杂度 O(n log n)。
func CountInversions[T cmp.Ordered](values []T) int64 {
	comp := NewCompressor(values)
	bit, _ := NewFenwickTree[int64](comp.Len())

	var inversions int64
	for i, v := range values {
		rank, _ := comp.Rank(v)
		// 已登记 i 个元素，其中名次不超过 rank 的有 upTo 个，其余都比 v 大。
		upTo, _ := bit.PrefixSum(rank - 1)
		inversions += int64(i) - upTo
		_ = bit.Update(rank-1, 1)
	}
	return inversions
}
