// Package worker 提供按 key 分片的操作执行器。同一 key 的操作始终路由到
// 同一个分片、由同一个 goroutine 串行执行，不同 key 之间互不阻塞。
// 数据结构实例以各自的 key 提交操作，即可获得单写者保证，而无需内部加锁。
package worker

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"

	"github.com/wyfcoding/rangequery/metrics"
)

var (
	ErrApplierClosed = errors.New("applier is closed")
	ErrApplierFull   = errors.New("applier shard queue is full")
	ErrSubmitTimeout = errors.New("op submission timeout")
)

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// Op 是提交给执行器的操作函数。
type Op func(ctx context.Context)

// Applier 是分片串行执行器。
type Applier struct {
	shards  []chan Op
	quit    chan struct{}
	options *applierOptions
	metrics *applierMetrics
	wg      *conc.WaitGroup
	closed  int32
}

type applierMetrics struct {
	activeWorkers prometheus.Gauge
	queueDepth    *prometheus.GaugeVec
}

type applierOptions struct {
	Logger       *slog.Logger
	PanicHandler func(any)
	Metrics      *metrics.Metrics
	Name         string
	Workers      int
	QueueSize    int
}

// Option 定义配置选项。
type Option func(*applierOptions)

// WithName 设置执行器名称。
func WithName(name string) Option {
	return func(o *applierOptions) {
		o.Name = name
	}
}

// WithWorkers 设置分片数量，每个分片对应一个串行 worker。
func WithWorkers(n int) Option {
	return func(o *applierOptions) {
		o.Workers = n
	}
}

// WithQueueSize 设置每个分片的操作队列大小。
func WithQueueSize(size int) Option {
	return func(o *applierOptions) {
		o.QueueSize = size
	}
}

// WithLogger 注入日志器。
func WithLogger(logger *slog.Logger) Option {
	return func(o *applierOptions) {
		o.Logger = logger
	}
}

// WithPanicHandler 设置 Panic 处理回调。
func WithPanicHandler(handler func(any)) Option {
	return func(o *applierOptions) {
		o.PanicHandler = handler
	}
}

// WithMetrics 注入指标采集器.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *applierOptions) {
		o.Metrics = m
	}
}

// NewApplier 创建并启动分片执行器。
func NewApplier(opts ...Option) *Applier {
	options := &applierOptions{
		Name:      "default-applier",
		Workers:   8,
		QueueSize: 128,
		Logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Workers <= 0 {
		options.Workers = 1
	}
	if options.QueueSize <= 0 {
		options.QueueSize = 1
	}

	a := &Applier{
		shards:  make([]chan Op, options.Workers),
		quit:    make(chan struct{}),
		options: options,
		wg:      &conc.WaitGroup{},
	}
	for i := range a.shards {
		a.shards[i] = make(chan Op, options.QueueSize)
	}

	if options.Metrics != nil {
		a.metrics = &applierMetrics{
			activeWorkers: options.Metrics.NewGauge(prometheus.GaugeOpts{
				Name:        "rangequery_applier_active_workers",
				Help:        "Number of active shard workers in the applier",
				ConstLabels: prometheus.Labels{"applier": options.Name},
			}),
			queueDepth: options.Metrics.NewGaugeVec(prometheus.GaugeOpts{
				Name:        "rangequery_applier_queue_depth",
				Help:        "Pending ops per applier shard",
				ConstLabels: prometheus.Labels{"applier": options.Name},
			}, []string{"shard"}),
		}
	}

	a.start()
	return a
}

func (a *Applier) start() {
	a.options.Logger.Info("Applier starting",
		"name", a.options.Name,
		"workers", a.options.Workers,
		"queue_size", a.options.QueueSize)

	for i := range a.shards {
		if a.metrics != nil {
			a.metrics.activeWorkers.Inc()
		}
		label := strconv.Itoa(i)
		ops := a.shards[i]
		a.wg.Go(func() {
			defer func() {
				if a.metrics != nil {
					a.metrics.activeWorkers.Dec()
				}
			}()
			a.runShard(label, ops)
		})
	}
}

func (a *Applier) runShard(label string, ops chan Op) {
	for {
		if a.metrics != nil {
			a.metrics.queueDepth.WithLabelValues(label).Set(float64(len(ops)))
		}
		select {
		case op := <-ops:
			a.execute(op)
		case <-a.quit:
			// 退出前把本分片已接收的操作执行完，保证提交过的操作不丢。
			for {
				select {
				case op := <-ops:
					a.execute(op)
				default:
					return
				}
			}
		}
	}
}

func (a *Applier) execute(op Op) {
	defer func() {
		if r := recover(); r != nil {
			if a.options.PanicHandler != nil {
				a.options.PanicHandler(r)
			} else {
				a.options.Logger.Error("Applier op panic recovered", "panic", r)
			}
		}
	}()
	op(context.Background())
}

// shardIndex 用 FNV-1a 把 key 映射到固定分片。
func (a *Applier) shardIndex(key string) int {
	h := uint32(fnvOffset32)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= fnvPrime32
	}
	return int(h % uint32(len(a.shards)))
}

// Submit 提交一个操作。如果对应分片的队列已满，则阻塞直到有空位或执行器被关闭。
func (a *Applier) Submit(key string, op Op) error {
	if atomic.LoadInt32(&a.closed) == 1 {
		return ErrApplierClosed
	}

	select {
	case a.shards[a.shardIndex(key)] <- op:
		return nil
	case <-a.quit:
		return ErrApplierClosed
	}
}

// SubmitWithTimeout 提交一个带超时的操作。
func (a *Applier) SubmitWithTimeout(key string, op Op, timeout time.Duration) error {
	if atomic.LoadInt32(&a.closed) == 1 {
		return ErrApplierClosed
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case a.shards[a.shardIndex(key)] <- op:
		return nil
	case <-timer.C:
		return ErrSubmitTimeout
	case <-a.quit:
		return ErrApplierClosed
	}
}

// TrySubmit 尝试提交一个操作。如果对应分片的队列已满，立即返回 ErrApplierFull。
func (a *Applier) TrySubmit(key string, op Op) error {
	if atomic.LoadInt32(&a.closed) == 1 {
		return ErrApplierClosed
	}

	select {
	case a.shards[a.shardIndex(key)] <- op:
		return nil
	default:
		return ErrApplierFull
	}
}

// Stop 停止执行器：拒绝新提交，执行完已入队的操作后退出所有分片 worker。
func (a *Applier) Stop() {
	if !atomic.CompareAndSwapInt32(&a.closed, 0, 1) {
		return
	}
	close(a.quit) // 通知 worker 退出
	a.wg.Wait()   // 等待所有分片清空并退出
	a.options.Logger.Info("Applier stopped", "name", a.options.Name)
}
