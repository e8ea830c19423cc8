// Package types 定义UCS运行时共享的基础数据类型
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
)

// ==================== 基本尺寸 ====================

const (
	// WordSize 存储字长度（字节）
	WordSize = 32

	// AddressSize 账户地址长度（字节）
	AddressSize = 20

	// SelectorSize 函数选择子长度（字节）
	SelectorSize = 4
)

// ==================== 字 ====================

// Word 32字节存储字：键、值、槽标识统一使用的定长单元
type Word [WordSize]byte

// Address 20字节账户地址
type Address [AddressSize]byte

// Selector 4字节函数选择子
type Selector [SelectorSize]byte

var (
	// ZeroWord 全零字
	ZeroWord Word

	// ZeroAddress 全零地址
	ZeroAddress Address
)

// WordFromBytes 从字节切片构造字，右对齐、高位补零
// 超过32字节时仅保留末尾32字节
//
// 参数:
//   - b: 源字节
//
// 返回:
//   - Word: 构造出的字
func WordFromBytes(b []byte) Word {
	var w Word
	if len(b) > WordSize {
		b = b[len(b)-WordSize:]
	}
	copy(w[WordSize-len(b):], b)
	return w
}

// WordFromU256 从256位无符号整数构造字（大端）
func WordFromU256(v *uint256.Int) Word {
	return v.Bytes32()
}

// WordFromUint64 从uint64构造字（大端、右对齐）
func WordFromUint64(v uint64) Word {
	var w Word
	for i := 0; i < 8; i++ {
		w[WordSize-1-i] = byte(v >> (8 * i))
	}
	return w
}

// WordFromAddress 从地址构造字（右对齐20字节）
func WordFromAddress(a Address) Word {
	var w Word
	copy(w[WordSize-AddressSize:], a[:])
	return w
}

// U256 将字解释为256位无符号整数（大端）
func (w Word) U256() *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

// Address 取字的末尾20字节作为地址
func (w Word) Address() Address {
	var a Address
	copy(a[:], w[WordSize-AddressSize:])
	return a
}

// IsZero 判断是否为全零字
func (w Word) IsZero() bool {
	return w == ZeroWord
}

// Bytes 返回字的字节副本
func (w Word) Bytes() []byte {
	out := make([]byte, WordSize)
	copy(out, w[:])
	return out
}

// Hex 返回0x前缀的十六进制表示
func (w Word) Hex() string {
	return "0x" + hex.EncodeToString(w[:])
}

// ==================== 地址 ====================

// Word 将地址扩展为右对齐的字
func (a Address) Word() Word {
	return WordFromAddress(a)
}

// IsZero 判断是否为全零地址
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Hex 返回0x前缀的十六进制表示
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// AddressFromHex 解析0x前缀（可省略）的十六进制地址
//
// 参数:
//   - s: 十六进制字符串，必须恰好40个十六进制字符
//
// 返回:
//   - Address: 解析出的地址
//   - error: 格式或长度错误
func AddressFromHex(s string) (Address, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	var a Address
	if len(s) != AddressSize*2 {
		return a, fmt.Errorf("地址长度非法: 期望%d个十六进制字符, 实际%d个", AddressSize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("地址解析失败: %w", err)
	}
	copy(a[:], b)
	return a, nil
}

// ==================== 选择子 ====================

// SelectorFromBytes 取字节切片前4字节作为选择子
// 不足4字节时无选择子可提取，第二个返回值为false
func SelectorFromBytes(b []byte) (Selector, bool) {
	var s Selector
	if len(b) < SelectorSize {
		return s, false
	}
	copy(s[:], b)
	return s, true
}

// SelectorFromHex 解析0x前缀（可省略）的十六进制选择子
func SelectorFromHex(str string) (Selector, error) {
	if len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		str = str[2:]
	}
	var s Selector
	if len(str) != SelectorSize*2 {
		return s, fmt.Errorf("选择子长度非法: 期望%d个十六进制字符, 实际%d个", SelectorSize*2, len(str))
	}
	b, err := hex.DecodeString(str)
	if err != nil {
		return s, fmt.Errorf("选择子解析失败: %w", err)
	}
	copy(s[:], b)
	return s, nil
}

// Hex 返回0x前缀的十六进制表示
func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}
