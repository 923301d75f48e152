package segtree

import (
	"github.com/wyfcoding/rangequery/xerrors"
)

// LazySegmentTree 带懒标记的线段树，支持 O(log n) 的区间加与区间求和。
// 聚合固定为求和，区间更新固定为加法增量；区间赋值标记以及与
// 最小值/最大值聚合组合的懒标记均不在本结构的能力范围内。
//
// 懒标记的约定：节点 v 上的非零标记表示 v 自身的和已经吸收了该增量，
// 但增量尚未下推给 v 的孩子；任何读写孩子之前必须先 pushDown。
//
// 与 SegmentTree 一样，本结构不做内部同步，由调用方串行化同一实例上的操作。
type LazySegmentTree[T Number] struct {
	sums fixedArena[T] // 区间和。
	tags fixedArena[T] // 待下推的加法增量，与 sums 同布局。
	n    int
}

// NewLazySegmentTree 根据初始序列构建，时间复杂度 O(n)。
// values 允许为空：空树上的一切操作都会以错误拒绝。
func NewLazySegmentTree[T Number](values []T) *LazySegmentTree[T] {
	t := &LazySegmentTree[T]{
		sums: newFixedArena[T](len(values)),
		tags: newFixedArena[T](len(values)),
		n:    len(values),
	}
	if t.n > 0 {
		t.build(values, 1, 0, t.n-1)
	}
	return t
}

func (t *LazySegmentTree[T]) build(values []T, node, start, end int) {
	if start == end {
		t.sums.nodes[node] = values[start]
		return
	}

	mid := (start + end) / 2
	t.build(values, 2*node, start, mid)
	t.build(values, 2*node+1, mid+1, end)
	t.sums.nodes[node] = t.sums.nodes[2*node] + t.sums.nodes[2*node+1]
}

// RangeUpdate 给闭区间 [left, right] 内的每个元素加上 delta，时间复杂度 O(log n)。
// left > right 视为空区间直接返回；非法端点以 ErrInvalidRange 拒绝。
func (t *LazySegmentTree[T]) RangeUpdate(left, right int, delta T) error {
	if left > right {
		return nil
	}
	if left < 0 || right >= t.n {
		return xerrors.ErrInvalidRange
	}

	t.rangeUpdate(1, 0, t.n-1, left, right, delta)
	return nil
}

func (t *LazySegmentTree[T]) rangeUpdate(node, start, end, left, right int, delta T) {
	if right < start || end < left {
		return
	}

	// 完全覆盖：本节点的和吸收 增量×跨度，增量累进标记，不再下探。
	if left <= start && end <= right {
		t.sums.nodes[node] += delta * T(end-start+1)
		t.tags.nodes[node] += delta
		return
	}

	// 部分重叠：先下推旧标记，保证孩子状态一致后再分治。
	t.pushDown(node, start, end)
	mid := (start + end) / 2
	t.rangeUpdate(2*node, start, mid, left, right, delta)
	t.rangeUpdate(2*node+1, mid+1, end, left, right, delta)
	t.sums.nodes[node] = t.sums.nodes[2*node] + t.sums.nodes[2*node+1]
}

// Update 单点赋值：把 idx 处的元素改写为 val，时间复杂度 O(log n)。
// 下降路径上的标记会被逐层下推，叶子赋值后回溯重算祖先的和。
func (t *LazySegmentTree[T]) Update(idx int, val T) error {
	if idx < 0 || idx >= t.n {
		return xerrors.ErrIndexOutOfRange
	}

	t.update(1, 0, t.n-1, idx, val)
	return nil
}

func (t *LazySegmentTree[T]) update(node, start, end, idx int, val T) {
	if start == end {
		t.sums.nodes[node] = val
		// 叶子没有孩子，残留标记已无意义，一并清零。
		t.tags.nodes[node] = 0
		return
	}

	t.pushDown(node, start, end)
	mid := (start + end) / 2
	if idx <= mid {
		t.update(2*node, start, mid, idx, val)
	} else {
		t.update(2*node+1, mid+1, end, idx, val)
	}
	t.sums.nodes[node] = t.sums.nodes[2*node] + t.sums.nodes[2*node+1]
}

// Query 查询闭区间 [left, right] 的和，时间复杂度 O(log n)。
// left > right 视为空区间返回 0；非法端点以 ErrInvalidRange 拒绝。
func (t *LazySegmentTree[T]) Query(left, right int) (T, error) {
	if left > right {
		return 0, nil
	}
	if left < 0 || right >= t.n {
		return 0, xerrors.ErrInvalidRange
	}

	return t.query(1, 0, t.n-1, left, right), nil
}

func (t *LazySegmentTree[T]) query(node, start, end, left, right int) T {
	if right < start || end < left {
		return 0
	}
	if left <= start && end <= right {
		return t.sums.nodes[node]
	}

	t.pushDown(node, start, end)
	mid := (start + end) / 2
	return t.query(2*node, start, mid, left, right) +
		t.query(2*node+1, mid+1, end, left, right)
}

// pushDown 把 node 上挂起的标记下推一层：两个孩子的和各自按跨度放大后
// 吸收增量，增量累加（而非覆盖）进孩子自己的标记，最后清空本节点标记。
// 只会在 start < end 的内部节点上被调用；对已清零的节点重复调用是空操作。
func (t *LazySegmentTree[T]) pushDown(node, start, end int) {
	delta := t.tags.nodes[node]
	if delta == 0 {
		return
	}

	mid := (start + end) / 2
	left, right := 2*node, 2*node+1
	t.sums.nodes[left] += delta * T(mid-start+1)
	t.tags.nodes[left] += delta
	t.sums.nodes[right] += delta * T(end-mid)
	t.tags.nodes[right] += delta
	t.tags.nodes[node] = 0
}

// Len 返回原始序列的逻辑大小。
func (t *LazySegmentTree[T]) Len() int {
	return t.n
}

// Clone 深拷贝整棵树（含未下推的标记），副本与原树互不影响。
func (t *LazySegmentTree[T]) Clone() *LazySegmentTree[T] {
	return &LazySegmentTree[T]{
		sums: t.sums.clone(),
		tags: t.tags.clone(),
		n:    t.n,
	}
}
