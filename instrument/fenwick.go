// Package instrument 为区间结构提供可观测性装饰器.
// 装饰器只负责采集指标、链路与日志, 不改变被包装结构的任何语义;
// 传入 nil 的指标或日志组件时自动退化为纯透传.
package instrument

import (
	"context"
	"time"

	"github.com/wyfcoding/rangequery/fenwick"
	"github.com/wyfcoding/rangequery/logging"
	"github.com/wyfcoding/rangequery/metrics"
	"github.com/wyfcoding/rangequery/tracing"
)

const (
	structureSegmentTree = "segment_tree"
	structureFenwickTree = "fenwick_tree"
)

// ObservedFenwickTree 包装一棵树状数组, 为每次操作采集指标与追踪.
// 被包装的核心不带锁, 并发控制仍由调用方负责.
type ObservedFenwickTree[T fenwick.Number] struct {
	tree    *fenwick.FenwickTree[T]
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// NewObservedFenwickTree 创建树状数组的可观测包装.
func NewObservedFenwickTree[T fenwick.Number](tree *fenwick.FenwickTree[T], m *metrics.Metrics, logger *logging.Logger) *ObservedFenwickTree[T] {
	if m != nil {
		m.TreeSize.WithLabelValues(structureFenwickTree).Set(float64(tree.Len()))
	}

	return &ObservedFenwickTree[T]{tree: tree, metrics: m, logger: logger}
}

// Update 在 idx 位置累加 delta.
func (o *ObservedFenwickTree[T]) Update(ctx context.Context, idx int, delta T) error {
	operation := "update"
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "FenwickTree.Update")
	defer span.End()
	tracing.AddTag(ctx, "index", idx)

	if err := o.tree.Update(idx, delta); err != nil {
		o.record(operation, "error", start)
		tracing.SetError(ctx, err)

		return err
	}

	o.record(operation, "success", start)
	o.debug(ctx, "fenwick tree updated", "index", idx)

	return nil
}

// PrefixSum 返回 [0, idx] 的前缀和.
func (o *ObservedFenwickTree[T]) PrefixSum(ctx context.Context, idx int) (T, error) {
	operation := "prefix_sum"
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "FenwickTree.PrefixSum")
	defer span.End()
	tracing.AddTag(ctx, "index", idx)

	sum, err := o.tree.PrefixSum(idx)
	if err != nil {
		o.record(operation, "error", start)
		tracing.SetError(ctx, err)

		return sum, err
	}

	o.record(operation, "success", start)
	o.debug(ctx, "fenwick tree prefix sum", "index", idx)

	return sum, nil
}

// RangeSum 返回闭区间 [left, right] 的和.
func (o *ObservedFenwickTree[T]) RangeSum(ctx context.Context, left, right int) (T, error) {
	operation := "range_sum"
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "FenwickTree.RangeSum")
	defer span.End()
	tracing.AddTag(ctx, "range.left", left)
	tracing.AddTag(ctx, "range.right", right)

	sum, err := o.tree.RangeSum(left, right)
	if err != nil {
		o.record(operation, "error", start)
		tracing.SetError(ctx, err)

		return sum, err
	}

	o.record(operation, "success", start)
	o.debug(ctx, "fenwick tree range sum", "left", left, "right", right)

	return sum, nil
}

// Len 返回元素个数.
func (o *ObservedFenwickTree[T]) Len() int {
	return o.tree.Len()
}

func (o *ObservedFenwickTree[T]) record(op, status string, start time.Time) {
	if o.metrics == nil {
		return
	}

	o.metrics.OperationsTotal.WithLabelValues(structureFenwickTree, op, status).Inc()
	o.metrics.OperationDuration.WithLabelValues(structureFenwickTree, op).Observe(time.Since(start).Seconds())
}

func (o *ObservedFenwickTree[T]) debug(ctx context.Context, msg string, args ...any) {
	if o.logger == nil {
		return
	}

	o.logger.DebugContext(ctx, msg, args...)
}
