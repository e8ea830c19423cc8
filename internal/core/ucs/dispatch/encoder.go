package dispatch

import "github.com/ucskit/v1/pkg/types"

// EncodeCall 构造calldata：选择器后接参数字序列
//
// 与Decoder的线格式互逆：4字节选择器（大端），每个参数一个
// 32字节字，按声明顺序排列。
func EncodeCall(sel types.Selector, args ...types.Word) []byte {
	out := make([]byte, types.SelectorSize+len(args)*types.WordSize)
	copy(out, sel[:])
	for i, arg := range args {
		copy(out[types.SelectorSize+i*types.WordSize:], arg[:])
	}
	return out
}

// SelectorWord 将bytes4参数左对齐编码为字（高4字节）
func SelectorWord(sel types.Selector) types.Word {
	var w types.Word
	copy(w[:types.SelectorSize], sel[:])
	return w
}
