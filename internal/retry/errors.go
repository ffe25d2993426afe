package retry

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted 重试次数耗尽
	ErrExhausted = errors.New("重试次数已耗尽")
	// ErrSuppressed 同一操作在抑制窗口内已耗尽重试，本次调用未执行
	ErrSuppressed = errors.New("操作处于重试抑制窗口内")
)

// ExhaustedError 记录耗尽重试的操作及最后一次错误
type ExhaustedError struct {
	Key      string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s (操作:%s, 尝试次数:%d): %v", ErrExhausted, e.Key, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Is 使 errors.Is(err, ErrExhausted) 成立
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// permanentError 标记不应重试的失败，Do 会解包后原样返回
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (e *permanentError) Unwrap() error { return e.err }

// Permanent 包装 err，使 Do 不再重试且不计入该操作的尝试次数
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}
