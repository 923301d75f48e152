// Package segtree 实现了基于扁平数组的线段树，支持 O(log n) 的单点更新、
// 区间聚合查询，以及带懒标记下推的 O(log n) 区间更新。
// 聚合策略（求和、最小值、最大值、最大公约数或自定义）在构建时注入。
// 在库存统计（查询某个商品分类的总库存）、销量汇总、余额区间核对等
// 场景中非常有用。
package segtree

import (
	"github.com/wyfcoding/rangequery/xerrors"
)

// SegmentTree 线段树。每个节点代表原始序列的一个连续区间，根节点代表
// 整个序列，叶子节点代表单个元素；内部节点的值恒等于左右孩子值经
// Combine 合并的结果。
//
// 本结构自身不做任何同步：同一实例上的操作必须由调用方串行化，
// 需要跨 goroutine 共享时请使用 SyncedSegmentTree。
type SegmentTree[T any] struct {
	arena fixedArena[T] // 节点存储，4n 槽位。
	agg   Aggregate[T]  // 聚合策略。
	n     int           // 原始序列的逻辑大小。
}

// NewSegmentTree 根据初始序列构建线段树，时间复杂度 O(n)。
// values 允许为空：空树上的一切 Update/Query 都会以错误拒绝。
func NewSegmentTree[T any](values []T, agg Aggregate[T]) (*SegmentTree[T], error) {
	if agg.Combine == nil {
		return nil, xerrors.ErrNilCombine
	}

	st := &SegmentTree[T]{
		arena: newFixedArena[T](len(values)),
		agg:   agg,
		n:     len(values),
	}
	if st.n > 0 {
		st.build(values, 1, 0, st.n-1)
	}
	return st, nil
}

// build 递归填充节点，结束后每个内部节点都等于左右孩子的聚合。
func (st *SegmentTree[T]) build(values []T, node, start, end int) {
	if start == end {
		st.arena.nodes[node] = values[start]
		return
	}

	mid := (start + end) / 2
	st.build(values, 2*node, start, mid)
	st.build(values, 2*node+1, mid+1, end)
	st.arena.nodes[node] = st.agg.Combine(st.arena.nodes[2*node], st.arena.nodes[2*node+1])
}

// Update 单点更新原始序列中 idx 处的元素为 val，时间复杂度 O(log n)。
// idx 越界时以 ErrIndexOutOfRange 拒绝，树不会被触碰。
func (st *SegmentTree[T]) Update(idx int, val T) error {
	if idx < 0 || idx >= st.n {
		return xerrors.ErrIndexOutOfRange
	}

	st.update(1, 0, st.n-1, idx, val)
	return nil
}

// update 沿根到叶的路径下降，叶子赋值后在回溯时逐层重算祖先的聚合。
func (st *SegmentTree[T]) update(node, start, end, idx int, val T) {
	if start == end {
		st.arena.nodes[node] = val
		return
	}

	mid := (start + end) / 2
	if idx <= mid {
		st.update(2*node, start, mid, idx, val)
	} else {
		st.update(2*node+1, mid+1, end, idx, val)
	}

	st.arena.nodes[node] = st.agg.Combine(st.arena.nodes[2*node], st.arena.nodes[2*node+1])
}

// Query 查询闭区间 [left, right] 的聚合值，时间复杂度 O(log n)。
// left > right 视为空区间，返回幺元且不报错；负端点或 right >= n
// 返回 ErrInvalidRange，不做静默截断。
func (st *SegmentTree[T]) Query(left, right int) (T, error) {
	if left > right {
		return st.agg.Identity, nil
	}
	if left < 0 || right >= st.n {
		return st.agg.Identity, xerrors.ErrInvalidRange
	}

	return st.query(1, 0, st.n-1, left, right), nil
}

// query 经典三分支：区间不相交返回幺元；完全覆盖直接取节点值；
// 部分重叠才继续分治。每层最多递归进 2 个部分重叠的节点，故整体 O(log n)。
func (st *SegmentTree[T]) query(node, start, end, left, right int) T {
	if right < start || end < left {
		return st.agg.Identity
	}
	if left <= start && end <= right {
		return st.arena.nodes[node]
	}

	mid := (start + end) / 2
	return st.agg.Combine(
		st.query(2*node, start, mid, left, right),
		st.query(2*node+1, mid+1, end, left, right),
	)
}

// Len 返回原始序列的逻辑大小。
func (st *SegmentTree[T]) Len() int {
	return st.n
}

// Clone 深拷贝整棵树，副本拥有独立的 arena，与原树互不影响。
func (st *SegmentTree[T]) Clone() *SegmentTree[T] {
	return &SegmentTree[T]{
		arena: st.arena.clone(),
		agg:   st.agg,
		n:     st.n,
	}
}
