package dispatch

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ucskit/v1/pkg/types"
)

// Decoder 顺序消费calldata参数字的游标解码器
//
// 从4字节选择器之后开始，每解码一个定宽（32字节）原语前进一个字；
// 多参数签名按从左到右的参数顺序依次解码，无需手工偏移运算。
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder 创建解码器，游标置于选择器之后
func NewDecoder(calldata []byte) *Decoder {
	return &Decoder{data: calldata, pos: types.SelectorSize}
}

// Selector 返回calldata头部的4字节选择器
func (d *Decoder) Selector() (types.Selector, error) {
	sel, ok := types.SelectorFromBytes(d.data)
	if !ok {
		return types.Selector{}, fmt.Errorf("%w: calldata %d bytes", ErrCalldataShort, len(d.data))
	}
	return sel, nil
}

// Remaining 返回游标之后剩余的字节数
func (d *Decoder) Remaining() int {
	if d.pos >= len(d.data) {
		return 0
	}
	return len(d.data) - d.pos
}

// Word 解码下一个32字节字
func (d *Decoder) Word() (types.Word, error) {
	if d.pos+types.WordSize > len(d.data) {
		return types.ZeroWord, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrCalldataShort, types.WordSize, d.pos, len(d.data)-d.pos)
	}
	var w types.Word
	copy(w[:], d.data[d.pos:d.pos+types.WordSize])
	d.pos += types.WordSize
	return w, nil
}

// Address 解码一个地址参数（左填充字的低20字节）
func (d *Decoder) Address() (types.Address, error) {
	w, err := d.Word()
	if err != nil {
		return types.ZeroAddress, err
	}
	return w.Address(), nil
}

// U256 解码一个256位无符号整数参数
func (d *Decoder) U256() (*uint256.Int, error) {
	w, err := d.Word()
	if err != nil {
		return nil, err
	}
	return w.U256(), nil
}

// Uint64 解码一个放得进uint64的整数参数
func (d *Decoder) Uint64() (uint64, error) {
	v, err := d.U256()
	if err != nil {
		return 0, err
	}
	u, overflow := v.Uint64WithOverflow()
	if overflow {
		return 0, fmt.Errorf("%w: value exceeds uint64", ErrDecodeValue)
	}
	return u, nil
}

// Bool 解码一个布尔参数（非零字为真）
func (d *Decoder) Bool() (bool, error) {
	w, err := d.Word()
	if err != nil {
		return false, err
	}
	return !w.IsZero(), nil
}

// Bytes32 解码一个定宽字节串参数
func (d *Decoder) Bytes32() (types.Word, error) {
	return d.Word()
}

// SelectorArg 解码一个bytes4参数（字的高4字节，左对齐）
func (d *Decoder) SelectorArg() (types.Selector, error) {
	w, err := d.Word()
	if err != nil {
		return types.Selector{}, err
	}
	var sel types.Selector
	copy(sel[:], w[:types.SelectorSize])
	return sel, nil
}
