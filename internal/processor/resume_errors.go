package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrCapabilityCooling = errors.New("外部抽取能力处于冷却期")
	ErrExtractFailed     = errors.New("外部结构化抽取失败")
	ErrConvertFailed     = errors.New("文档转换文本失败")
	ErrRankFailed        = errors.New("候选人排序失败")
)

// ResumeProcessError 包含详细错误信息的自定义错误
type ResumeProcessError struct {
	Op      string
	BaseErr error
	Detail  string
}

func (e *ResumeProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s): %s", e.BaseErr, e.Op, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s)", e.BaseErr, e.Op)
}

func (e *ResumeProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ResumeProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewCoolingError(detail string) error {
	return &ResumeProcessError{Op: "extract", BaseErr: ErrCapabilityCooling, Detail: detail}
}

func NewExtractError(detail string) error {
	return &ResumeProcessError{Op: "extract", BaseErr: ErrExtractFailed, Detail: detail}
}

func NewConvertError(detail string) error {
	return &ResumeProcessError{Op: "convert", BaseErr: ErrConvertFailed, Detail: detail}
}

func NewRankError(detail string) error {
	return &ResumeProcessError{Op: "rank", BaseErr: ErrRankFailed, Detail: detail}
}
