package segtree

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/wyfcoding/rangequery/xerrors"
)

func TestLazySegmentTreeRangeAdd(t *testing.T) {
	tree := NewLazySegmentTree([]int64{0, 0, 0, 0, 0})

	if err := tree.RangeUpdate(1, 3, 5); err != nil {
		t.Fatalf("RangeUpdate(1, 3, 5) failed: %v", err)
	}

	cases := []struct {
		left, right int
		want        int64
	}{
		{0, 4, 15},
		{1, 3, 15},
		{0, 0, 0},
		{4, 4, 0},
		{2, 2, 5},
	}
	for _, c := range cases {
		got, err := tree.Query(c.left, c.right)
		if err != nil {
			t.Fatalf("Query(%d, %d) failed: %v", c.left, c.right, err)
		}
		if got != c.want {
			t.Errorf("Query(%d, %d) = %d, want %d", c.left, c.right, got, c.want)
		}
	}
}

func TestLazySegmentTreeOverlappingUpdates(t *testing.T) {
	tree := NewLazySegmentTree([]int64{1, 2, 3, 4, 5, 6})

	if err := tree.RangeUpdate(0, 3, 10); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}
	if err := tree.RangeUpdate(2, 5, -4); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}

	// 序列应为 [11, 12, 9, 10, 1, 2]。
	want := []int64{11, 12, 9, 10, 1, 2}
	for i, w := range want {
		got, err := tree.Query(i, i)
		if err != nil {
			t.Fatalf("Query(%d, %d) failed: %v", i, i, err)
		}
		if got != w {
			t.Errorf("Query(%d, %d) = %d, want %d", i, i, got, w)
		}
	}
	if got, _ := tree.Query(0, 5); got != 45 {
		t.Errorf("Query(0, 5) = %d, want 45", got)
	}
}

func TestLazySegmentTreePointAssign(t *testing.T) {
	tree := NewLazySegmentTree([]int64{1, 2, 3})

	if err := tree.RangeUpdate(0, 2, 10); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}
	// 单点赋值是覆盖语义：挂起的增量不得在赋值之后再作用到该位置。
	if err := tree.Update(1, 5); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got, _ := tree.Query(1, 1); got != 5 {
		t.Errorf("Query(1, 1) = %d, want 5", got)
	}
	if got, _ := tree.Query(0, 2); got != 29 {
		t.Errorf("Query(0, 2) = %d, want 29", got)
	}
}

func TestLazySegmentTreeEmptyRange(t *testing.T) {
	tree := NewLazySegmentTree([]int64{1, 2, 3})

	got, err := tree.Query(2, 0)
	if err != nil {
		t.Fatalf("Query(2, 0) should be an empty-range no-op, got error %v", err)
	}
	if got != 0 {
		t.Errorf("Query(2, 0) = %d, want 0", got)
	}

	if err := tree.RangeUpdate(2, 0, 100); err != nil {
		t.Fatalf("RangeUpdate(2, 0) should be an empty-range no-op, got error %v", err)
	}
	if got, _ := tree.Query(0, 2); got != 6 {
		t.Errorf("Query(0, 2) after empty-range update = %d, want 6", got)
	}
}

func TestLazySegmentTreeRejectsBadBounds(t *testing.T) {
	tree := NewLazySegmentTree([]int64{1, 2, 3})

	if _, err := tree.Query(-1, 2); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("Query(-1, 2): got %v, want ErrInvalidRange", err)
	}
	if _, err := tree.Query(0, 3); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("Query(0, 3): got %v, want ErrInvalidRange", err)
	}
	if err := tree.RangeUpdate(-1, 1, 5); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("RangeUpdate(-1, 1): got %v, want ErrInvalidRange", err)
	}
	if err := tree.RangeUpdate(0, 3, 5); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("RangeUpdate(0, 3): got %v, want ErrInvalidRange", err)
	}
	if err := tree.Update(3, 5); !errors.Is(err, xerrors.ErrIndexOutOfRange) {
		t.Errorf("Update(3): got %v, want ErrIndexOutOfRange", err)
	}

	if got, _ := tree.Query(0, 2); got != 6 {
		t.Errorf("Query(0, 2) after rejected ops = %d, want 6", got)
	}
}

func TestLazySegmentTreeEmpty(t *testing.T) {
	tree := NewLazySegmentTree([]int64{})
	if tree.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tree.Len())
	}
	if _, err := tree.Query(0, 0); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("Query on empty tree: got %v, want ErrInvalidRange", err)
	}
	if err := tree.RangeUpdate(0, 0, 1); !errors.Is(err, xerrors.ErrInvalidRange) {
		t.Errorf("RangeUpdate on empty tree: got %v, want ErrInvalidRange", err)
	}
}

func TestLazySegmentTreePushDownClearsTag(t *testing.T) {
	tree := NewLazySegmentTree([]int64{0, 0, 0, 0})

	if err := tree.RangeUpdate(0, 3, 7); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}
	if tree.tags.nodes[1] != 7 {
		t.Fatalf("root tag = %d, want 7 pending", tree.tags.nodes[1])
	}

	// 部分重叠的查询必须下推根标记并保持结果正确。
	if got, _ := tree.Query(0, 1); got != 14 {
		t.Errorf("Query(0, 1) = %d, want 14", got)
	}
	if tree.tags.nodes[1] != 0 {
		t.Errorf("root tag after push down = %d, want 0", tree.tags.nodes[1])
	}
	if tree.tags.nodes[2] != 7 || tree.tags.nodes[3] != 7 {
		t.Errorf("child tags = (%d, %d), want (7, 7)", tree.tags.nodes[2], tree.tags.nodes[3])
	}

	// 重复查询不改变结果：下推是幂等的状态迁移。
	if got, _ := tree.Query(0, 1); got != 14 {
		t.Errorf("repeated Query(0, 1) = %d, want 14", got)
	}
	if got, _ := tree.Query(0, 3); got != 28 {
		t.Errorf("Query(0, 3) = %d, want 28", got)
	}
}

func TestLazySegmentTreePushDownIdempotent(t *testing.T) {
	tree := NewLazySegmentTree([]int64{1, 2, 3, 4})

	if err := tree.RangeUpdate(0, 3, 5); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}

	tree.pushDown(1, 0, 3)
	sumsAfterFirst := append([]int64(nil), tree.sums.nodes...)
	tagsAfterFirst := append([]int64(nil), tree.tags.nodes...)

	// 标记清零后的第二次下推必须是空操作。
	tree.pushDown(1, 0, 3)
	for i := range sumsAfterFirst {
		if tree.sums.nodes[i] != sumsAfterFirst[i] {
			t.Fatalf("sums[%d] changed on second push down: %d != %d", i, tree.sums.nodes[i], sumsAfterFirst[i])
		}
		if tree.tags.nodes[i] != tagsAfterFirst[i] {
			t.Fatalf("tags[%d] changed on second push down: %d != %d", i, tree.tags.nodes[i], tagsAfterFirst[i])
		}
	}

	if got, _ := tree.Query(0, 3); got != 30 {
		t.Errorf("Query(0, 3) = %d, want 30", got)
	}
}

func TestLazySegmentTreeTagAccumulates(t *testing.T) {
	tree := NewLazySegmentTree([]int64{0, 0, 0, 0})

	// 两次全覆盖更新叠加在根标记上，而不是相互覆盖。
	if err := tree.RangeUpdate(0, 3, 3); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}
	if err := tree.RangeUpdate(0, 3, 4); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}
	if tree.tags.nodes[1] != 7 {
		t.Errorf("root tag = %d, want accumulated 7", tree.tags.nodes[1])
	}
	if got, _ := tree.Query(2, 2); got != 7 {
		t.Errorf("Query(2, 2) = %d, want 7", got)
	}
}

func TestLazySegmentTreeRandomAgainstBruteForce(t *testing.T) {
	const (
		n   = 131
		ops = 3000
	)
	rng := rand.New(rand.NewSource(7))

	values := make([]int64, n)
	for i := range values {
		values[i] = int64(rng.Intn(201) - 100)
	}
	tree := NewLazySegmentTree(values)
	mirror := make([]int64, n)
	copy(mirror, values)

	for op := 0; op < ops; op++ {
		switch rng.Intn(3) {
		case 0:
			left := rng.Intn(n)
			right := left + rng.Intn(n-left)
			delta := int64(rng.Intn(201) - 100)
			if err := tree.RangeUpdate(left, right, delta); err != nil {
				t.Fatalf("op %d: RangeUpdate(%d, %d, %d) failed: %v", op, left, right, delta, err)
			}
			for i := left; i <= right; i++ {
				mirror[i] += delta
			}
		case 1:
			idx := rng.Intn(n)
			val := int64(rng.Intn(201) - 100)
			if err := tree.Update(idx, val); err != nil {
				t.Fatalf("op %d: Update(%d, %d) failed: %v", op, idx, val, err)
			}
			mirror[idx] = val
		default:
			left := rng.Intn(n)
			right := left + rng.Intn(n-left)
			got, err := tree.Query(left, right)
			if err != nil {
				t.Fatalf("op %d: Query(%d, %d) failed: %v", op, left, right, err)
			}
			var want int64
			for i := left; i <= right; i++ {
				want += mirror[i]
			}
			if got != want {
				t.Fatalf("op %d: Query(%d, %d) = %d, want %d", op, left, right, got, want)
			}
		}
	}
}

func TestLazySegmentTreeClone(t *testing.T) {
	tree := NewLazySegmentTree([]int64{1, 2, 3, 4})

	// 留下未下推的标记再克隆，验证标记也被拷贝。
	if err := tree.RangeUpdate(0, 3, 10); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}
	copyTree := tree.Clone()

	if err := tree.RangeUpdate(0, 1, 100); err != nil {
		t.Fatalf("RangeUpdate failed: %v", err)
	}
	if got, _ := copyTree.Query(0, 3); got != 50 {
		t.Errorf("clone affected by original's update: Query(0, 3) = %d, want 50", got)
	}
	if got, _ := copyTree.Query(1, 1); got != 12 {
		t.Errorf("clone Query(1, 1) = %d, want 12", got)
	}
	if got, _ := tree.Query(0, 3); got != 250 {
		t.Errorf("original Query(0, 3) = %d, want 250", got)
	}
}

func TestSyncedLazySegmentTree(t *testing.T) {
	tree := NewSyncedLazySegmentTree([]int64{0, 0, 0, 0})

	done := make(chan error, 4)
	for w := 0; w < 4; w++ {
		go func() {
			for i := 0; i < 250; i++ {
				if err := tree.RangeUpdate(0, 3, 1); err != nil {
					done <- err
					return
				}
				if _, err := tree.Query(0, 3); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}()
	}
	for i := 0; i < 4; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent ops failed: %v", err)
		}
	}

	got, err := tree.Query(0, 3)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if got != 4000 {
		t.Errorf("Query(0, 3) = %d, want 4000", got)
	}
}

func BenchmarkLazySegmentTreeRangeUpdate(b *testing.B) {
	const n = 1 << 16
	tree := NewLazySegmentTree(make([]int64, n))
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		left := rng.Intn(n)
		right := left + rng.Intn(n-left)
		if err := tree.RangeUpdate(left, right, 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLazySegmentTreeQuery(b *testing.B) {
	const n = 1 << 16
	tree := NewLazySegmentTree(make([]int64, n))
	for i := 0; i < 64; i++ {
		_ = tree.RangeUpdate(i*512, i*512+511, int64(i))
	}
	rng := rand.New(rand.NewSource(1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		left := rng.Intn(n)
		right := left + rng.Intn(n-left)
		if _, err := tree.Query(left, right); err != nil {
			b.Fatal(err)
		}
	}
}
