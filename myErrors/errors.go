package myErrors

import (
	"context"
	"errors"
	"strings"

	"github.com/Xushengqwer/go-common/commonerrors"
)

// ErrCacheMiss 表示在缓存层未找到对应的键值
var ErrCacheMiss = errors.New("cache: key not found (miss)")

// 业务层统一使用的错误类型，调用方通过 errors.Is 判断
var (
	ErrNotFound            = commonerrors.ErrRepoNotFound
	ErrAlreadyTransitioned = errors.New("already handled by another admin")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("modified concurrently by another admin")
	ErrConstraint          = errors.New("storage constraint violation")
	ErrPermission          = errors.New("storage permission denied")
	ErrConnectivity        = errors.New("connectivity failure")
	ErrLockContention      = commonerrors.ErrServiceBusy
	ErrSyntax              = errors.New("query syntax error")
	ErrSystem              = commonerrors.ErrSystemError
)

// Kind 错误分类，只用于挑选面向用户的提示语，不影响回滚行为
type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindAlreadyTransitioned Kind = "already_transitioned"
	KindValidation          Kind = "validation"
	KindConflict            Kind = "conflict"
	KindConstraint          Kind = "constraint"
	KindPermission          Kind = "permission"
	KindConnectivity        Kind = "connectivity"
	KindLockContention      Kind = "lock"
	KindSyntax              Kind = "syntax"
	KindSystem              Kind = "other"
)

// detailedError 携带一段可直接展示的说明，同时仍能被 errors.Is 识别为对应的哨兵错误
type detailedError struct {
	sentinel error
	detail   string
}

func (e *detailedError) Error() string { return e.sentinel.Error() + ": " + e.detail }

func (e *detailedError) Unwrap() error { return e.sentinel }

// Validation 构造输入校验错误，detail 会原样展示给用户
func Validation(detail string) error {
	return &detailedError{sentinel: ErrValidation, detail: detail}
}

// NotFound 构造“对象不存在”错误
func NotFound(detail string) error {
	return &detailedError{sentinel: ErrNotFound, detail: detail}
}

// AlreadyTransitioned 构造“已被其他管理员处理”错误
func AlreadyTransitioned(detail string) error {
	return &detailedError{sentinel: ErrAlreadyTransitioned, detail: detail}
}

// Conflict 构造并发冲突错误，例如帖子已被其他管理员删除
func Conflict(detail string) error {
	return &detailedError{sentinel: ErrConflict, detail: detail}
}

// Classify 判断错误属于哪一类。
// 先识别本包的哨兵错误，再按驱动返回的错误文本归类。
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyTransitioned):
		return KindAlreadyTransitioned
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrConstraint):
		return KindConstraint
	case errors.Is(err, ErrPermission):
		return KindPermission
	case errors.Is(err, ErrLockContention):
		return KindLockContention
	case errors.Is(err, ErrConnectivity), errors.Is(err, context.DeadlineExceeded):
		return KindConnectivity
	case errors.Is(err, ErrSyntax):
		return KindSyntax
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "foreign key"), strings.Contains(msg, "constraint"):
		return KindConstraint
	case strings.Contains(msg, "permission"), strings.Contains(msg, "access denied"):
		return KindPermission
	// MySQL 的 "lock wait timeout exceeded" 属于锁竞争而不是网络超时
	case strings.Contains(msg, "deadlock"), strings.Contains(msg, "lock wait"):
		return KindLockContention
	case strings.Contains(msg, "connection"), strings.Contains(msg, "timeout"), strings.Contains(msg, "network"):
		return KindConnectivity
	case strings.Contains(msg, "lock"):
		return KindLockContention
	case strings.Contains(msg, "syntax"):
		return KindSyntax
	}
	return KindSystem
}

// UserMessage 把任意错误转换成可以直接展示给管理员的提示，不暴露内部错误文本。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var detailed *detailedError
	if errors.As(err, &detailed) {
		return detailed.detail
	}
	switch Classify(err) {
	case KindNotFound:
		return "Content not found. It may have been deleted already."
	case KindAlreadyTransitioned:
		return "This item was already handled by another admin."
	case KindValidation:
		return "Invalid input. Please check and try again."
	case KindConflict:
		return "The content was modified or deleted concurrently by another admin."
	case KindConstraint:
		return "Database constraint error - there may be related data preventing this action."
	case KindPermission:
		return "Database permission error - insufficient privileges."
	case KindConnectivity:
		return "Database connection error - network or timeout issue. Please retry."
	case KindLockContention:
		return "Database lock error - resource temporarily unavailable. Please retry."
	case KindSyntax:
		return "Database query error - please contact the administrator."
	default:
		return "Unexpected system error. The action was not applied."
	}
}
