package domain

import "fmt"

// InvalidInputError 表示调用方传入了无法处理的值。
// 典型场景: 日期归一化收到了既不是字符串也不是 time.Time 的输入。
type InvalidInputError struct {
	Value  any
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input (%T): %s", e.Value, e.Reason)
}

// MalformedResponseError 表示远端响应体不符合实体的预期结构:
// 必填字段缺失、类型不对、或者多态字段出现未知形态。
// 映射层遇到任何一处问题都会立刻失败，不产生半成品实体。
type MalformedResponseError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: field %q: %s: %v", e.Field, e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed response: field %q: %s", e.Field, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error { return e.Cause }

func newMalformed(field, format string, args ...any) *MalformedResponseError {
	return &MalformedResponseError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func wrapMalformed(field string, cause error) *MalformedResponseError {
	return &MalformedResponseError{Field: field, Reason: "nested mapping failed", Cause: cause}
}

// PreconditionError 表示门面方法的前置条件被破坏(必填参数为空等)。
// 这是编程契约层面的错误，期望在开发和测试阶段暴露，不属于运行时可恢复场景。
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition violated in %s: %s", e.Op, e.Reason)
}
