// Package bootstrap 处理引擎进程通用基础设施的启动引导.
package bootstrap

import (
	"context"
	"flag"

	"github.com/wyfcoding/rangequery/config"
	"github.com/wyfcoding/rangequery/logging"
	"github.com/wyfcoding/rangequery/metrics"
	"github.com/wyfcoding/rangequery/tracing"
)

// Bootstrapper 按固定顺序初始化日志、配置、指标与追踪.
type Bootstrapper struct {
	ServiceName string
	Version     string
	Logger      *logging.Logger
}

// New 创建一个新的引导器实例.
func New(serviceName, version string) *Bootstrapper {
	return &Bootstrapper{
		ServiceName: serviceName,
		Version:     version,
	}
}

// Initialize 解析命令行标志、加载配置文件并初始化日志系统.
// 它接收一个 cfg 指针，用于将加载的配置反序列化到该结构体中。
func (b *Bootstrapper) Initialize(cfg any) error {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/config.toml", "path to config file")
	flag.Parse()

	// 1. 临时初始化 Logger（用于记录配置加载过程中的潜在错误）。
	logging.InitLogger(b.ServiceName, "bootstrap")
	b.Logger = logging.Default()

	// 2. 加载配置文件：读取 TOML 文件并映射到传入的 cfg 结构体中。
	if err := config.Load(configPath, cfg); err != nil {
		b.Logger.Error("failed to load config", "error", err)
		return err
	}

	// 3. 应用配置中的日志级别. 后续热更新由 config 包的回调接管.
	if c, ok := cfg.(*config.Config); ok {
		logging.SetLevel(c.Log.Level)
	}

	return nil
}

// SetupTracing 初始化 OpenTelemetry 追踪器并返回关闭函数.
// 配置未启用追踪时返回空操作.
func (b *Bootstrapper) SetupTracing(cfg config.TracingConfig) func() {
	if !cfg.Enabled {
		return func() {}
	}

	shutdown, err := tracing.InitTracer(cfg)
	if err != nil {
		b.Logger.Error("failed to init tracer", "error", err)
		return func() {}
	}

	return func() {
		if err := shutdown(context.Background()); err != nil {
			b.Logger.Error("failed to shutdown tracer", "error", err)
		}
	}
}

// SetupMetrics 构建指标注册表并按配置暴露采集端点, 返回注册表与关闭函数.
func (b *Bootstrapper) SetupMetrics(cfg config.MetricsConfig) (*metrics.Metrics, func()) {
	m := metrics.NewMetrics(b.ServiceName)
	m.RegisterBuildInfo(b.ServiceName, b.Version)

	if !cfg.Enabled {
		return m, func() {}
	}

	return m, m.ExposeHttp(cfg.Port, cfg.Path)
}
