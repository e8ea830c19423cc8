// Package slot 提供命名空间存储槽推导
//
// 槽地址推导是整个运行时防串槽的根基：互不相关的逻辑模块共享同一个
// 持久化键值空间，靠命名空间哈希把各自的数据结构隔离到互不重叠的
// 槽区间。所有函数均为纯函数，不持有任何状态。
//
// 推导规则：
//   - namespaceRoot(id) = keccak256(keccak256(id) - 1) & ~0xff
//     先减一再哈希，避免与其他常见推导方案产生平凡预像碰撞；
//     清零低8位，为根槽之后的顺序结构体字段保留256个连续槽。
//   - mappingSlot(base, key) = keccak256(key ‖ base)
//   - nestedMappingSlot(base, k1, k2) = mappingSlot(mappingSlot(base, k1), k2)
//   - arrayElementSlot(base, i, size) = keccak256(base) + i*size（长度存于base本身）
//   - structFieldSlot(base, offset) = base + offset（连续布局，不哈希）
package slot

import (
	"github.com/holiman/uint256"

	hashimpl "github.com/ucskit/v1/internal/core/infrastructure/crypto/hash"
	cryptointf "github.com/ucskit/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/ucskit/v1/pkg/types"
)

// NamespaceSpan 一个命名空间根槽之后保留的连续槽数量
//
// 根槽低8位恒为零，顺序字段偏移最多到255，否则会越入
// 相邻命名空间的对齐边界。
const NamespaceSpan = 256

// Deriver 槽推导器
//
// 仅依赖抗碰撞哈希原语，本身无状态，可并发使用。
type Deriver struct {
	hasher cryptointf.HashManager
}

// NewDeriver 创建槽推导器
//
// hasher为nil时使用默认的Keccak-256哈希服务。
func NewDeriver(hasher cryptointf.HashManager) *Deriver {
	if hasher == nil {
		hasher = hashimpl.NewHashService()
	}
	return &Deriver{hasher: hasher}
}

// NamespaceRoot 推导命名空间根槽
//
// 计算 keccak256(keccak256(id) - 1) 并清零低8位。
// 不同的命名空间字符串以压倒性概率得到互不重叠的槽区间。
func (d *Deriver) NamespaceRoot(id string) types.Word {
	inner := d.hasher.Keccak256([]byte(id))

	v := new(uint256.Int).SetBytes(inner)
	v.Sub(v, uint256.NewInt(1))

	buf := v.Bytes32()
	outer := d.hasher.Keccak256(buf[:])

	root := types.WordFromBytes(outer)
	root[types.WordSize-1] = 0 // 低字节清零，保留顺序字段区间
	return root
}

// MappingSlot 推导映射条目槽: keccak256(key ‖ base)
func (d *Deriver) MappingSlot(base types.Word, key types.Word) types.Word {
	buf := make([]byte, 2*types.WordSize)
	copy(buf, key[:])
	copy(buf[types.WordSize:], base[:])
	return types.WordFromBytes(d.hasher.Keccak256(buf))
}

// NestedMappingSlot 推导二级映射条目槽
func (d *Deriver) NestedMappingSlot(base types.Word, key1, key2 types.Word) types.Word {
	return d.MappingSlot(d.MappingSlot(base, key1), key2)
}

// ArrayElementSlot 推导数组元素槽: keccak256(base) + index*elemSize
//
// 数组长度本身存储在base槽；元素区起点取base的哈希，
// 加法按256位模运算进行。
func (d *Deriver) ArrayElementSlot(base types.Word, index uint64, elemSize uint64) types.Word {
	start := new(uint256.Int).SetBytes(d.hasher.Keccak256(base[:]))

	offset := new(uint256.Int).Mul(uint256.NewInt(index), uint256.NewInt(elemSize))
	start.Add(start, offset)

	return types.WordFromU256(start)
}

// StructFieldSlot 推导结构体字段槽: base + offset（连续布局）
func (d *Deriver) StructFieldSlot(base types.Word, offset uint64) types.Word {
	v := base.U256()
	v.Add(v, uint256.NewInt(offset))
	return types.WordFromU256(v)
}
