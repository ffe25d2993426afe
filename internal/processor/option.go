package processor

import (
	"time"

	"github.com/rs/zerolog"
)

// Option 服务选项函数类型
type Option func(*ResumeService)

// ----- 组件选项 -----

// WithExtractor 设置外部结构化抽取器，未设置时只使用启发式解析
func WithExtractor(extractor StructuredExtractor) Option {
	return func(s *ResumeService) {
		s.extractor = extractor
	}
}

// WithHeuristicParser 替换默认的启发式解析器
func WithHeuristicParser(p HeuristicParser) Option {
	return func(s *ResumeService) {
		if p != nil {
			s.heuristic = p
		}
	}
}

// WithDocumentExtractor 设置文档转文本组件
func WithDocumentExtractor(extractor DocumentTextExtractor) Option {
	return func(s *ResumeService) {
		s.documents = extractor
	}
}

// WithMatcher 替换默认的评分器
func WithMatcher(m ResumeMatcher) Option {
	return func(s *ResumeService) {
		if m != nil {
			s.matcher = m
		}
	}
}

// ----- 设置选项 -----

// WithCooldown 外部抽取失败后暂停使用的时长，0 表示不暂停
func WithCooldown(d time.Duration) Option {
	return func(s *ResumeService) {
		if d >= 0 {
			s.gate.cooldown = d
		}
	}
}

// WithRankConcurrency 排序时的最大并发数
func WithRankConcurrency(n int) Option {
	return func(s *ResumeService) {
		if n > 0 {
			s.rankConcurrency = n
		}
	}
}

// WithClock 注入时钟，用于冷却期判断
func WithClock(now func() time.Time) Option {
	return func(s *ResumeService) {
		if now != nil {
			s.gate.now = now
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *ResumeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}
