package engine

// 执行引擎配置默认值
const (
	// defaultBudget 外部调用默认计算预算
	// 按基本操作计费（存储读写、哈希、嵌套调用），1千万足以覆盖
	// 深度嵌套的升级/转发场景，同时防止失控递归耗尽宿主资源
	defaultBudget uint64 = 10_000_000

	// defaultMaxCallDepth 嵌套调用最大深度
	// 与常见执行引擎的调用栈上限保持同阶
	defaultMaxCallDepth = 1024

	// defaultStorageBackend 默认存储后端
	defaultStorageBackend = "memory"

	// defaultBadgerDir 默认badger数据目录
	defaultBadgerDir = "data/ucs"
)

// createDefaultEngineOptions 创建默认引擎配置
func createDefaultEngineOptions() *EngineOptions {
	return &EngineOptions{
		DefaultBudget:  defaultBudget,
		MaxCallDepth:   defaultMaxCallDepth,
		StorageBackend: defaultStorageBackend,
		BadgerDir:      defaultBadgerDir,
	}
}
