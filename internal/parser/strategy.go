package parser

import (
	"resume-match-go/internal/types"
)

// extractionInput 抽取策略的输入
type extractionInput struct {
	// Section 目标章节的行
	Section []types.Line
	// All 全文的行
	All []types.Line
}

// Strategy 具名的抽取策略；ok=false 或结果为空表示本策略不适用
type Strategy[T any] struct {
	Name string
	Run  func(in extractionInput) ([]T, bool)
}

// runStrategies 依次执行策略，返回第一个非空结果及其策略名
func runStrategies[T any](strategies []Strategy[T], in extractionInput) ([]T, string) {
	for _, s := range strategies {
		if out, ok := s.Run(in); ok && len(out) > 0 {
			return out, s.Name
		}
	}
	return []T{}, ""
}
