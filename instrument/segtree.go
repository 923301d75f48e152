package instrument

import (
	"context"
	"time"

	"github.com/wyfcoding/rangequery/logging"
	"github.com/wyfcoding/rangequery/metrics"
	"github.com/wyfcoding/rangequery/segtree"
	"github.com/wyfcoding/rangequery/tracing"
)

// ObservedSegmentTree 包装一棵线段树, 为每次操作采集指标与追踪.
// 被包装的核心不带锁, 并发控制仍由调用方负责.
type ObservedSegmentTree[T any] struct {
	tree    *segtree.SegmentTree[T]
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewObservedSegmentTree 创建线段树的可观测包装.
func NewObservedSegmentTree[T any](tree *segtree.SegmentTree[T], m *metrics.Metrics, logger *logging.Logger) *ObservedSegmentTree[T] {
	if m != nil {
		m.TreeSize.WithLabelValues(structureSegmentTree).Set(float64(tree.Len()))
	}

	return &ObservedSegmentTree[T]{tree: tree, metrics: m, logger: logger}
}

// Query 返回闭区间 [left, right] 上的聚合值.
func (o *ObservedSegmentTree[T]) Query(ctx context.Context, left, right int) (T, error) {
	operation := "query"
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "SegmentTree.Query")
	defer span.End()
	tracing.AddTag(ctx, "range.left", left)
	tracing.AddTag(ctx, "range.right", right)

	value, err := o.tree.Query(left, right)
	if err != nil {
		o.record(operation, "error", start)
		tracing.SetError(ctx, err)

		return value, err
	}

	o.record(operation, "success", start)
	o.debug(ctx, "segment tree queried", "left", left, "right", right)

	return value, nil
}

// Update 将 idx 位置的元素替换为 val.
func (o *ObservedSegmentTree[T]) Update(ctx context.Context, idx int, val T) error {
	operation := "update"
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "SegmentTree.Update")
	defer span.End()
	tracing.AddTag(ctx, "index", idx)

	if err := o.tree.Update(idx, val); err != nil {
		o.record(operation, "error", start)
		tracing.SetError(ctx, err)

		return err
	}

	o.record(operation, "success", start)
	o.debug(ctx, "segment tree updated", "index", idx)

	return nil
}

// Len 返回元素个数.
func (o *ObservedSegmentTree[T]) Len() int {
	return o.tree.Len()
}

func (o *ObservedSegmentTree[T]) record(op, status string, start time.Time) {
	if o.metrics == nil {
		return
	}

	o.metrics.OperationsTotal.WithLabelValues(structureSegmentTree, op, status).Inc()
	o.metrics.OperationDuration.WithLabelValues(structureSegmentTree, op).Observe(time.Since(start).Seconds())
}

func (o *ObservedSegmentTree[T]) debug(ctx context.Context, msg string, args ...any) {
	if o.logger == nil {
		return
	}

	o.logger.DebugContext(ctx, msg, args...)
}
