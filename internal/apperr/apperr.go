// Package apperr 定义了核心业务层的结构化错误分类。
// 所有核心错误都携带一个Kind，原样传播到边界层，
// 由handler统一映射为HTTP状态码。
package apperr

import (
	"errors"
	"fmt"
)

// Kind 是业务错误的分类枚举
type Kind int

const (
	// KindInvalidArgument 表示输入格式错误或越界（负数XP、等级<1、未知会话类型等）
	KindInvalidArgument Kind = iota + 1
	// KindNotFound 表示目标实体不存在（未知冒险者ID、未知导师ID）
	KindNotFound
	// KindPreconditionFailed 表示操作在当前状态下不合法（未指派导师时记录指导会话）
	KindPreconditionFailed
	// KindConflict 表示并发写入冲突
	KindConflict
)

// String 返回Kind的稳定文本标识
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindPreconditionFailed:
		return "precondition_failed"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error 是携带分类的业务错误
type Error struct {
	Kind    Kind
	Message string
	// Cause 是可选的底层错误
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New 创建一个带分类的业务错误
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Newf 创建一个带分类和格式化消息的业务错误
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap 将底层错误包装为带分类的业务错误
func Wrap(kind Kind, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf 提取错误的分类，非业务错误返回0
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
