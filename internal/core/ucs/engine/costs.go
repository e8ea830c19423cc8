package engine

// 基本操作的计算预算开销
//
// 定价只需满足两点：确定性，以及量级关系与真实执行引擎同阶
// （存储写 ≫ 存储读 ≫ 哈希 ≫ 纯计算）。
const (
	costCallBase    = 700  // 每次调用帧（含外部入口与嵌套调用）
	costStorageRead = 200  // 读一个存储槽
	costStorageWrite = 5000 // 写一个存储槽
	costHashBase    = 30   // 哈希固定开销
	costHashPerWord = 6    // 哈希每32字节增量开销
	costCreate      = 32000 // 部署一个可执行体
)
