// Package engine 提供执行引擎配置
package engine

// EngineOptions 执行引擎配置选项
type EngineOptions struct {
	// === 计算预算 ===
	DefaultBudget uint64 `json:"default_budget"` // 外部调用默认计算预算
	MaxCallDepth  int    `json:"max_call_depth"` // 嵌套调用最大深度

	// === 存储后端 ===
	StorageBackend string `json:"storage_backend"` // "memory" 或 "badger"
	BadgerDir      string `json:"badger_dir"`      // badger数据目录
}

// Config 执行引擎配置实现
type Config struct {
	options *EngineOptions
}

// UserEngineConfig 用户引擎配置（可覆盖字段）
type UserEngineConfig struct {
	DefaultBudget  *uint64 `json:"default_budget,omitempty"`
	MaxCallDepth   *int    `json:"max_call_depth,omitempty"`
	StorageBackend *string `json:"storage_backend,omitempty"`
	BadgerDir      *string `json:"badger_dir,omitempty"`
}

// New 创建执行引擎配置实现
func New(userConfig interface{}) *Config {
	defaultOptions := createDefaultEngineOptions()

	if userConfig != nil {
		applyUserEngineConfig(defaultOptions, userConfig)
	}

	return &Config{
		options: defaultOptions,
	}
}

// applyUserEngineConfig 应用用户配置覆盖默认值
func applyUserEngineConfig(options *EngineOptions, userConfig interface{}) {
	if cfg, ok := userConfig.(*UserEngineConfig); ok && cfg != nil {
		if cfg.DefaultBudget != nil {
			options.DefaultBudget = *cfg.DefaultBudget
		}
		if cfg.MaxCallDepth != nil {
			options.MaxCallDepth = *cfg.MaxCallDepth
		}
		if cfg.StorageBackend != nil {
			options.StorageBackend = *cfg.StorageBackend
		}
		if cfg.BadgerDir != nil {
			options.BadgerDir = *cfg.BadgerDir
		}
	}
}

// GetOptions 获取完整配置选项
func (c *Config) GetOptions() *EngineOptions {
	return c.options
}

// GetDefaultBudget 获取默认计算预算
func (c *Config) GetDefaultBudget() uint64 {
	return c.options.DefaultBudget
}

// GetMaxCallDepth 获取最大嵌套调用深度
func (c *Config) GetMaxCallDepth() int {
	return c.options.MaxCallDepth
}

// GetStorageBackend 获取存储后端类型
func (c *Config) GetStorageBackend() string {
	return c.options.StorageBackend
}

// GetBadgerDir 获取badger数据目录
func (c *Config) GetBadgerDir() string {
	return c.options.BadgerDir
}
