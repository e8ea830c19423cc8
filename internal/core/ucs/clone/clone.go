// Package clone 提供最小克隆代理的固定字节布局
//
// 最小克隆是一段45字节的可执行体：被调用时无条件对内嵌的目标地址
// 发起上下文保持远程调用，并透明转发结果/失败。目标地址烧录在代码
// 里而非存储中，是零配置代理，用于把大量代理实例廉价地指向同一个
// 共享字典。
//
// 字节布局固定不可变：10字节前缀 ‖ 20字节目标地址 ‖ 2字节中缀 ‖
// 13字节后缀，装配为两个32字节字后以总长45交给"部署可执行体"原语。
package clone

import "github.com/ucskit/v1/pkg/types"

// CodeSize 最小克隆代码总长度
const CodeSize = 45

// 固定字节段
var (
	// prefix 10字节前缀：参数透传与目标地址压栈序列
	prefix = [10]byte{0x36, 0x3d, 0x3d, 0x37, 0x3d, 0x3d, 0x3d, 0x36, 0x3d, 0x73}

	// mid 2字节中缀：上下文保持远程调用
	mid = [2]byte{0x5a, 0xf4}

	// suffix 13字节后缀：结果/失败的透明转发
	suffix = [13]byte{0x3d, 0x82, 0x80, 0x3e, 0x90, 0x3d, 0x91, 0x60, 0x2b, 0x57, 0xfd, 0x5b, 0xf3}
)

// Code 装配指向target的最小克隆代码
//
// 先填满两个32字节字（第一个字恰好容纳前缀+地址+中缀），
// 再按总长45截取。
func Code(target types.Address) []byte {
	var words [2 * types.WordSize]byte

	n := copy(words[:], prefix[:])
	n += copy(words[n:], target[:])
	n += copy(words[n:], mid[:])
	copy(words[n:], suffix[:])

	out := make([]byte, CodeSize)
	copy(out, words[:CodeSize])
	return out
}

// Parse 识别一段代码是否为最小克隆，是则抽出内嵌目标地址
func Parse(code []byte) (types.Address, bool) {
	if len(code) != CodeSize {
		return types.ZeroAddress, false
	}
	for i, b := range prefix {
		if code[i] != b {
			return types.ZeroAddress, false
		}
	}
	off := len(prefix) + types.AddressSize
	for i, b := range mid {
		if code[off+i] != b {
			return types.ZeroAddress, false
		}
	}
	off += len(mid)
	for i, b := range suffix {
		if code[off+i] != b {
			return types.ZeroAddress, false
		}
	}
	var target types.Address
	copy(target[:], code[len(prefix):len(prefix)+types.AddressSize])
	return target, true
}
