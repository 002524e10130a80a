package domain

// RefKind 标记多态引用字段的三种形态。
// 远端对关联对象的序列化并不稳定: 有时只给外键数字，
// 有时内嵌完整对象，可选字段还可能直接是 null。
type RefKind int

const (
	RefAbsent RefKind = iota // 字段为 null 或缺失
	RefID                    // 只有外键数字
	RefEntity                // 内嵌了完整对象
)

// Ref 是 int-or-object-or-null 多态字段的显式表示。
// 相比裸 any，三种形态枚举让调用方的分支处理一目了然。
type Ref[T any] struct {
	kind   RefKind
	id     int64
	entity *T
}

// AbsentRef 构造一个缺失态引用。
func AbsentRef[T any]() Ref[T] { return Ref[T]{kind: RefAbsent} }

// RefOfID 构造一个仅含外键的引用。
func RefOfID[T any](id int64) Ref[T] { return Ref[T]{kind: RefID, id: id} }

// RefOfEntity 构造一个携带完整实体的引用。
func RefOfEntity[T any](entity *T) Ref[T] { return Ref[T]{kind: RefEntity, entity: entity} }

// Kind 返回引用形态。
func (r Ref[T]) Kind() RefKind { return r.kind }

// IsAbsent 报告字段是否缺失(null)。
func (r Ref[T]) IsAbsent() bool { return r.kind == RefAbsent }

// ID 返回外键值。仅在 Kind() == RefID 时有意义。
func (r Ref[T]) ID() int64 { return r.id }

// Entity 返回内嵌实体。仅在 Kind() == RefEntity 时非 nil。
func (r Ref[T]) Entity() *T { return r.entity }
