// Package config 提供了统一的配置加载与管理能力：TOML 文件、APP_ 前缀的
// 环境变量覆盖、结构体校验以及基于 fsnotify 的热更新。
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/wyfcoding/rangequery/logging"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 全局顶级配置结构.
type Config struct {
	Service string        `mapstructure:"service" toml:"service" validate:"required"`
	Version string        `mapstructure:"version" toml:"version"`
	Log     LogConfig     `mapstructure:"log"     toml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" toml:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing" toml:"tracing"`
	Engine  EngineConfig  `mapstructure:"engine"  toml:"engine"`
}

// LogConfig 定义日志输出、级别与切割策略.
type LogConfig struct {
	Level      string `mapstructure:"level"       toml:"level"`       // 日志级别。
	File       string `mapstructure:"file"        toml:"file"`        // 日志文件路径，为空则只输出到 stdout。
	MaxSize    int    `mapstructure:"max_size"    toml:"max_size"`    // 单个文件最大大小 (MB)。
	MaxBackups int    `mapstructure:"max_backups" toml:"max_backups"` // 最大备份数。
	MaxAge     int    `mapstructure:"max_age"     toml:"max_age"`     // 最大保留天数。
	Compress   bool   `mapstructure:"compress"    toml:"compress"`    // 是否启用压缩。
}

// MetricsConfig 普罗米修斯监控指标暴露配置.
type MetricsConfig struct {
	Port    string `mapstructure:"port"    toml:"port"`
	Path    string `mapstructure:"path"    toml:"path"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

// TracingConfig 分布式链路追踪（OpenTelemetry）配置.
type TracingConfig struct {
	ServiceName  string  `mapstructure:"service_name"  toml:"service_name"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint" toml:"otlp_endpoint"`
	SamplerRatio float64 `mapstructure:"sampler_ratio" toml:"sampler_ratio"`
	Enabled      bool    `mapstructure:"enabled"       toml:"enabled"`
}

// EngineConfig 范围查询引擎自身的运行参数.
type EngineConfig struct {
	Applier ApplierConfig `mapstructure:"applier" toml:"applier"`
	Ledger  LedgerConfig  `mapstructure:"ledger"  toml:"ledger"`
}

// ApplierConfig 分片执行器的规模参数.
type ApplierConfig struct {
	Workers   int `mapstructure:"workers"    toml:"workers"    validate:"omitempty,min=1"`
	QueueSize int `mapstructure:"queue_size" toml:"queue_size" validate:"omitempty,min=1"`
}

// LedgerConfig 账本的默认建账参数.
type LedgerConfig struct {
	DefaultCapacity int `mapstructure:"default_capacity" toml:"default_capacity" validate:"omitempty,min=1"`
}

var vInstance = viper.New()
var onReload []func(*Config)

// RegisterReloadHook 注册配置热更新回调。
func RegisterReloadHook(hook func(*Config)) {
	if hook == nil {
		return
	}
	onReload = append(onReload, hook)
}

// Load 全生产级的配置加载逻辑.
func Load(path string, conf any) error {
	vInstance.SetConfigFile(path)
	vInstance.SetConfigType("toml")

	vInstance.SetEnvPrefix("APP")
	vInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vInstance.AutomaticEnv()

	if err := vInstance.ReadInConfig(); err != nil {
		return fmt.Errorf("read config error: %w", err)
	}

	if err := vInstance.Unmarshal(conf); err != nil {
		return fmt.Errorf("unmarshal config error: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(conf); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	vInstance.WatchConfig()
	vInstance.OnConfigChange(func(event fsnotify.Event) {
		slog.Info("detecting config change", "file", event.Name)
		const debounceTimeout = 500 * time.Millisecond
		time.Sleep(debounceTimeout)

		if unmarshalErr := vInstance.Unmarshal(conf); unmarshalErr != nil {
			slog.Error("reload config unmarshal failed", "error", unmarshalErr)

			return
		}

		// 如果配置中有日志级别，自动更新全局日志级别
		if c, ok := conf.(*Config); ok {
			logging.SetLevel(c.Log.Level)
		} else {
			// 尝试使用反射获取 Log.Level
			val := reflect.ValueOf(conf)
			if val.Kind() == reflect.Ptr {
				val = val.Elem()
			}
			logField := val.FieldByName("Log")
			if logField.IsValid() {
				levelField := logField.FieldByName("Level")
				if levelField.IsValid() && levelField.Kind() == reflect.String {
					logging.SetLevel(levelField.String())
				}
			}
		}

		if validateErr := validate.Struct(conf); validateErr != nil {
			slog.Error("reload config validation failed", "error", validateErr)
		} else {
			slog.Info("config hot-reloaded and validated successfully")
		}

		if cfg, ok := conf.(*Config); ok {
			for _, hook := range onReload {
				hook(cfg)
			}
		}
	})

	return nil
}

// PrintWithMask 脱敏打印当前配置.
func PrintWithMask(conf any) {
	data, err := json.Marshal(conf)
	if err != nil {
		slog.Error("failed to marshal config for printing", "error", err)

		return
	}

	var configMap map[string]any
	if unmarshalErr := json.Unmarshal(data, &configMap); unmarshalErr != nil {
		slog.Error("failed to unmarshal config for masking", "error", unmarshalErr)

		return
	}

	mask(configMap)

	maskedJSON, marshalErr := json.MarshalIndent(configMap, "  ", "  ")
	if marshalErr != nil {
		slog.Error("failed to marshal masked config", "error", marshalErr)

		return
	}

	slog.Info("Current effective configuration", "config", string(maskedJSON))
}

func mask(configMap map[string]any) {
	sensitiveKeys := []string{"password", "secret", "dsn", "key", "token"}

	for key, val := range configMap {
		if subMap, ok := val.(map[string]any); ok {
			mask(subMap)

			continue
		}

		if slice, ok := val.([]any); ok {
			for _, item := range slice {
				if itemMap, ok := item.(map[string]any); ok {
					mask(itemMap)
				}
			}

			continue
		}

		for _, sensitiveKey := range sensitiveKeys {
			if strings.Contains(strings.ToLower(key), sensitiveKey) {
				configMap[key] = "******"

				break
			}
		}
	}
}

// GetViper 返回底层的 Viper 实例.
func GetViper() *viper.Viper {
	return vInstance
}
