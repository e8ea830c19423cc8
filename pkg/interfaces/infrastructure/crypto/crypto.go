// Package crypto 提供UCS运行时的哈希服务接口定义
//
// 运行时只依赖抗碰撞哈希这一种密码学原语：
// 槽地址推导与选择器推导都建立在 Keccak-256 之上。
package crypto

// HashManager 定义哈希服务接口
type HashManager interface {
	// SHA256 计算SHA-256哈希
	SHA256(data []byte) []byte

	// Keccak256 计算Keccak-256哈希
	Keccak256(data []byte) []byte
}
