// Package schema 提供声明式存储布局：具名字段到推导槽地址的映射
//
// Schema 把一个命名空间内的具名字段（标量、映射、二级映射、数组）
// 按声明顺序绑定到根槽之后的连续偏移上，并提供组合了槽推导与
// 存储网关的类型化访问器。Schema 在启动期一次构造，之后只读。
//
// 容量硬上限：一个命名空间最多256个顶层字段——根槽低字节恒为零，
// 偏移超过255就会越入相邻命名空间的对齐边界。
package schema

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/ucskit/v1/internal/core/ucs/gateway"
	"github.com/ucskit/v1/internal/core/ucs/slot"
	"github.com/ucskit/v1/pkg/types"
)

// FieldKind 字段种类
type FieldKind int

const (
	// KindValue 单槽标量
	KindValue FieldKind = iota
	// KindMapping 一级映射
	KindMapping
	// KindMapping2 二级映射
	KindMapping2
	// KindArray 动态数组（长度存于字段头槽）
	KindArray
)

// String 返回字段种类的字符串表示
func (k FieldKind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindMapping:
		return "mapping"
	case KindMapping2:
		return "mapping2"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Field 一个具名存储字段
type Field struct {
	Name     string
	Kind     FieldKind
	ValType  string // 值类型（声明性描述，如 "address"、"uint256"）
	KeyType  string // 映射键类型（KindMapping/KindMapping2）
	KeyType2 string // 第二级映射键类型（KindMapping2）
	ElemSize uint64 // 数组元素槽宽（KindArray，≥1）
	Offset   uint64 // 相对命名空间根槽的偏移（声明顺序分配）
}

// Schema 锚定到一个命名空间根槽的有序字段表
//
// 启动期构造（逻辑上的"编译期"），之后只读。
type Schema struct {
	namespace string
	root      types.Word
	deriver   *slot.Deriver
	fields    []Field
	byName    map[string]int
	sealed    bool
}

// New 创建锚定到 namespaceRoot(id) 的Schema
func New(namespaceID string, deriver *slot.Deriver) *Schema {
	if deriver == nil {
		deriver = slot.NewDeriver(nil)
	}
	return &Schema{
		namespace: namespaceID,
		root:      deriver.NamespaceRoot(namespaceID),
		deriver:   deriver,
		byName:    make(map[string]int),
	}
}

// NewAt 创建锚定到固定根槽的Schema
//
// 用于协议保留布局（如字典的owner=槽0、implementations=槽1）。
func NewAt(root types.Word, deriver *slot.Deriver) *Schema {
	if deriver == nil {
		deriver = slot.NewDeriver(nil)
	}
	return &Schema{
		root:    root,
		deriver: deriver,
		byName:  make(map[string]int),
	}
}

// Namespace 返回命名空间标识（NewAt构造时为空）
func (s *Schema) Namespace() string {
	return s.namespace
}

// Root 返回命名空间根槽
func (s *Schema) Root() types.Word {
	return s.root
}

// Seal 封存Schema：之后所有AddXxx调用失败
func (s *Schema) Seal() {
	s.sealed = true
}

// ==================== 字段声明 ====================

// addField 分配下一个偏移并登记字段
func (s *Schema) addField(f Field) error {
	if s.sealed {
		return ErrSchemaSealed
	}
	if f.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidField)
	}
	if _, exists := s.byName[f.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateField, f.Name)
	}
	// 每个字段头占一个槽，偏移按声明顺序分配
	offset := uint64(len(s.fields))
	if offset >= slot.NamespaceSpan {
		return fmt.Errorf("%w: namespace %q already holds %d fields", ErrNamespaceFull, s.namespace, slot.NamespaceSpan)
	}
	f.Offset = offset
	s.byName[f.Name] = len(s.fields)
	s.fields = append(s.fields, f)
	return nil
}

// AddValue 声明一个单槽标量字段
func (s *Schema) AddValue(name, valType string) error {
	return s.addField(Field{Name: name, Kind: KindValue, ValType: valType})
}

// AddMapping 声明一个一级映射字段
func (s *Schema) AddMapping(name, keyType, valType string) error {
	return s.addField(Field{Name: name, Kind: KindMapping, KeyType: keyType, ValType: valType})
}

// AddMapping2 声明一个二级映射字段
func (s *Schema) AddMapping2(name, keyType1, keyType2, valType string) error {
	return s.addField(Field{Name: name, Kind: KindMapping2, KeyType: keyType1, KeyType2: keyType2, ValType: valType})
}

// AddArray 声明一个动态数组字段
func (s *Schema) AddArray(name, elemType string, elemSize uint64) error {
	if elemSize == 0 {
		return fmt.Errorf("%w: elemSize must be >= 1", ErrInvalidField)
	}
	return s.addField(Field{Name: name, Kind: KindArray, ValType: elemType, ElemSize: elemSize})
}

// ==================== 自省 ====================

// Offset 按名查找字段偏移
//
// 名字不存在返回ErrFieldNotFound——这是可恢复条件而非致命错误，
// Schema自省可能被防御性使用。
func (s *Schema) Offset(name string) (uint64, error) {
	idx, ok := s.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return s.fields[idx].Offset, nil
}

// Field 按名查找字段定义
func (s *Schema) Field(name string) (Field, error) {
	idx, ok := s.byName[name]
	if !ok {
		return Field{}, fmt.Errorf("%w: %s", ErrFieldNotFound, name)
	}
	return s.fields[idx], nil
}

// Fields 返回按声明顺序的字段表副本
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// field 按名取字段并校验种类
func (s *Schema) field(name string, kind FieldKind) (Field, error) {
	f, err := s.Field(name)
	if err != nil {
		return Field{}, err
	}
	if f.Kind != kind {
		return Field{}, fmt.Errorf("%w: field %s is %s, not %s", ErrKindMismatch, name, f.Kind, kind)
	}
	return f, nil
}

// ==================== 槽地址计算 ====================

// headSlot 字段头槽: root + offset
func (s *Schema) headSlot(f Field) types.Word {
	return s.deriver.StructFieldSlot(s.root, f.Offset)
}

// ValueSlot 标量字段槽
func (s *Schema) ValueSlot(name string) (types.Word, error) {
	f, err := s.field(name, KindValue)
	if err != nil {
		return types.ZeroWord, err
	}
	return s.headSlot(f), nil
}

// MappingEntrySlot 映射条目槽
func (s *Schema) MappingEntrySlot(name string, key types.Word) (types.Word, error) {
	f, err := s.field(name, KindMapping)
	if err != nil {
		return types.ZeroWord, err
	}
	return s.deriver.MappingSlot(s.headSlot(f), key), nil
}

// Mapping2EntrySlot 二级映射条目槽
func (s *Schema) Mapping2EntrySlot(name string, key1, key2 types.Word) (types.Word, error) {
	f, err := s.field(name, KindMapping2)
	if err != nil {
		return types.ZeroWord, err
	}
	return s.deriver.NestedMappingSlot(s.headSlot(f), key1, key2), nil
}

// ==================== 类型化访问器（经由存储网关） ====================

// ReadValue 读取标量字段
func (s *Schema) ReadValue(cap gateway.Capability, name string) (types.Word, error) {
	slotAddr, err := s.ValueSlot(name)
	if err != nil {
		return types.ZeroWord, err
	}
	return gateway.Read(cap, slotAddr)
}

// WriteValue 写入标量字段
func (s *Schema) WriteValue(cap gateway.Capability, name string, value types.Word) error {
	slotAddr, err := s.ValueSlot(name)
	if err != nil {
		return err
	}
	return gateway.Write(cap, slotAddr, value)
}

// ReadMapping 读取映射条目
func (s *Schema) ReadMapping(cap gateway.Capability, name string, key types.Word) (types.Word, error) {
	f, err := s.field(name, KindMapping)
	if err != nil {
		return types.ZeroWord, err
	}
	return gateway.ReadMapping(cap, s.headSlot(f), key)
}

// WriteMapping 写入映射条目
func (s *Schema) WriteMapping(cap gateway.Capability, name string, key, value types.Word) error {
	f, err := s.field(name, KindMapping)
	if err != nil {
		return err
	}
	return gateway.WriteMapping(cap, s.headSlot(f), key, value)
}

// ReadMapping2 读取二级映射条目
func (s *Schema) ReadMapping2(cap gateway.Capability, name string, key1, key2 types.Word) (types.Word, error) {
	f, err := s.field(name, KindMapping2)
	if err != nil {
		return types.ZeroWord, err
	}
	return gateway.ReadMapping2(cap, s.headSlot(f), key1, key2)
}

// WriteMapping2 写入二级映射条目
func (s *Schema) WriteMapping2(cap gateway.Capability, name string, key1, key2, value types.Word) error {
	f, err := s.field(name, KindMapping2)
	if err != nil {
		return err
	}
	return gateway.WriteMapping2(cap, s.headSlot(f), key1, key2, value)
}

// ArrayLen 读取数组长度
func (s *Schema) ArrayLen(cap gateway.Capability, name string) (uint64, error) {
	f, err := s.field(name, KindArray)
	if err != nil {
		return 0, err
	}
	w, err := gateway.ReadArrayLen(cap, s.headSlot(f))
	if err != nil {
		return 0, err
	}
	length, overflow := w.U256().Uint64WithOverflow()
	if overflow {
		return 0, fmt.Errorf("%w: array %s length exceeds uint64", ErrInvalidField, name)
	}
	return length, nil
}

// ReadArray 读取数组元素（带越界检查）
func (s *Schema) ReadArray(cap gateway.Capability, name string, index uint64) (types.Word, error) {
	f, err := s.field(name, KindArray)
	if err != nil {
		return types.ZeroWord, err
	}
	length, err := s.ArrayLen(cap, name)
	if err != nil {
		return types.ZeroWord, err
	}
	if index >= length {
		return types.ZeroWord, fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, length)
	}
	return gateway.ReadArrayElem(cap, s.headSlot(f), index, f.ElemSize)
}

// WriteArray 写入数组元素（带越界检查）
func (s *Schema) WriteArray(cap gateway.Capability, name string, index uint64, value types.Word) error {
	f, err := s.field(name, KindArray)
	if err != nil {
		return err
	}
	length, err := s.ArrayLen(cap, name)
	if err != nil {
		return err
	}
	if index >= length {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, length)
	}
	return gateway.WriteArrayElem(cap, s.headSlot(f), index, f.ElemSize, value)
}

// AppendArray 追加数组元素，返回新长度
//
// 长度自增带显式溢出检查（运行时校验的有界量，溢出返回类型化错误）。
func (s *Schema) AppendArray(cap gateway.Capability, name string, value types.Word) (uint64, error) {
	f, err := s.field(name, KindArray)
	if err != nil {
		return 0, err
	}
	head := s.headSlot(f)
	lenWord, err := gateway.ReadArrayLen(cap, head)
	if err != nil {
		return 0, err
	}
	length := lenWord.U256()
	newLen := new(uint256.Int).AddUint64(length, 1)
	if newLen.Cmp(length) < 0 {
		return 0, fmt.Errorf("%w: array %s length overflow", ErrOverflow, name)
	}
	index, overflow := length.Uint64WithOverflow()
	if overflow {
		return 0, fmt.Errorf("%w: array %s length exceeds uint64", ErrOverflow, name)
	}
	if err := gateway.WriteArrayElem(cap, head, index, f.ElemSize, value); err != nil {
		return 0, err
	}
	if err := gateway.Write(cap, head, types.WordFromU256(newLen)); err != nil {
		return 0, err
	}
	return index + 1, nil
}
