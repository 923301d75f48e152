package segtree

import "slices"

// fixedArena 是树节点的扁平存储块，由创建它的树独占，生命周期与树一致。
// 采用 1 号位为根的堆式布局：节点 i 的左右孩子分别是 2i 与 2i+1。
// 对 n 个叶子分配 4n 个槽位，足以容纳任意非 2 的幂的 n。
type fixedArena[T any] struct {
	nodes []T
}

// newFixedArena 为 n 个叶子分配全零 arena。n 为 0 时返回空 arena。
func newFixedArena[T any](n int) fixedArena[T] {
	return fixedArena[T]{nodes: make([]T, 4*n)}
}

// clone 深拷贝整个存储块，两份互不约束。
func (a fixedArena[T]) clone() fixedArena[T] {
	return fixedArena[T]{nodes: slices.Clone(a.nodes)}
}
