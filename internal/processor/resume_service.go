package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"resume-match-go/internal/matcher"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

// 定义tracer
var tracer = otel.Tracer("processor")

const (
	defaultCooldown        = 5 * time.Minute
	defaultRankConcurrency = 4
)

// Status 服务当前的能力状态
type Status struct {
	ExtractorConfigured bool      `json:"extractor_configured"`
	DocumentConversion  bool      `json:"document_conversion"`
	CoolingUntil        time.Time `json:"cooling_until,omitempty"`
}

// ResumeService 简历解析与匹配的统一入口。
// 采用Facade模式，内部持有所有需要的组件；Parse/Match/Rank 对调用方从不暴露解析或评分错误，
// 各种失败都退化为保守的默认结果。
type ResumeService struct {
	extractor       StructuredExtractor
	heuristic       HeuristicParser
	documents       DocumentTextExtractor
	matcher         ResumeMatcher
	gate            *availabilityGate
	rankConcurrency int
	closers         []func() error
	logger          *zerolog.Logger
}

// NewResumeService 创建新的简历服务实例。未设置抽取器时只使用启发式解析，
// 未设置评分器时使用默认权重的 matcher.Scorer。
func NewResumeService(opts ...Option) *ResumeService {
	nop := zerolog.Nop()
	s := &ResumeService{
		heuristic:       parser.NewHeuristicParser(),
		gate:            &availabilityGate{cooldown: defaultCooldown, now: time.Now},
		rankConcurrency: defaultRankConcurrency,
		logger:          &nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.matcher == nil {
		s.matcher = matcher.NewScorer()
	}
	return s
}

// Parse 解析简历文本：先尝试外部结构化抽取，技能为空、调用失败或处于冷却期时退回启发式解析
func (s *ResumeService) Parse(ctx context.Context, text string) types.ParsedResume {
	ctx, span := tracer.Start(ctx, "ResumeService.Parse",
		trace.WithAttributes(attribute.Int("resume.length", len(text))))
	defer span.End()

	if strings.TrimSpace(text) == "" {
		return types.EmptyParsedResume(text)
	}

	resume, err := s.extractStructured(ctx, span, text)
	if err == nil && len(resume.Skills) > 0 {
		span.SetAttributes(attribute.String("resume.source", resume.Source))
		return resume
	}

	reason := "外部抽取未返回技能"
	if err != nil {
		reason = err.Error()
	}
	s.logger.Info().Str("reason", reason).Msg("使用启发式解析")
	tracing.RecordFallback(span, "llm", "heuristic", reason)

	resume = s.heuristic.Parse(text)
	span.SetAttributes(attribute.String("resume.source", resume.Source))
	return resume
}

// extractStructured 调用外部抽取器；能力性失败会触发冷却期
func (s *ResumeService) extractStructured(ctx context.Context, span trace.Span, text string) (types.ParsedResume, error) {
	if s.extractor == nil {
		return types.ParsedResume{}, parser.ErrLLMUnavailable
	}
	if err := s.gate.check(); err != nil {
		return types.ParsedResume{}, err
	}

	resume, err := s.extractor.Extract(ctx, text)
	if err == nil {
		return resume, nil
	}
	if errors.Is(err, parser.ErrLLMUnavailable) || errors.Is(err, context.Canceled) {
		return types.ParsedResume{}, err
	}

	until := s.gate.trip()
	tracing.RecordError(span, err, tracing.ErrorTypeExternal)
	s.logger.Warn().Err(err).Time("cooling_until", until).Msg("外部结构化抽取失败，进入冷却期")
	return types.ParsedResume{}, NewExtractError(err.Error())
}

// ParseDocument 把上传的文档转为文本后解析。转换失败时按 UTF-8 文本处理（去掉非法字节与控制字符），
// 两者都得不到内容时返回空结果。
func (s *ResumeService) ParseDocument(ctx context.Context, data []byte, filename string) types.ParsedResume {
	ctx, span := tracer.Start(ctx, "ResumeService.ParseDocument",
		trace.WithAttributes(
			attribute.String("document.name", filename),
			attribute.Int("document.size", len(data)),
		))
	defer span.End()

	text, err := s.documentText(ctx, data, filename)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDocument)
		tracing.RecordFallback(span, "document", "plain_text", err.Error())
		s.logger.Warn().Err(err).Str("file", filename).Msg("文档转换失败，按纯文本处理")
		text = plainText(data)
	}
	if strings.TrimSpace(text) == "" {
		return types.EmptyParsedResume("")
	}
	return s.Parse(ctx, text)
}

func (s *ResumeService) documentText(ctx context.Context, data []byte, filename string) (string, error) {
	if s.documents == nil {
		return "", NewConvertError("未配置文档转换组件")
	}
	text, err := s.documents.ExtractText(ctx, data, filename)
	if err != nil {
		return "", NewConvertError(err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return "", NewConvertError(fmt.Sprintf("%s 中没有可提取的文本", filename))
	}
	return text, nil
}

// plainText 去掉非法 UTF-8 序列和除换行、制表符以外的控制字符
func plainText(data []byte) string {
	valid := strings.ToValidUTF8(string(data), "")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, valid)
}

// Match 计算简历与岗位的匹配结果，weights 为 nil 时使用评分器的默认权重
func (s *ResumeService) Match(ctx context.Context, resume types.ParsedResume, job types.JobRequirement, weights *matcher.Weights) types.MatchResult {
	return s.matcher.Match(ctx, resume, job, weights)
}

// Rank 并发计算多份简历的匹配结果，按分数从高到低排序，同分时保持输入顺序。
// 只有 ctx 被取消时返回错误。
func (s *ResumeService) Rank(ctx context.Context, resumes []types.ParsedResume, job types.JobRequirement, weights *matcher.Weights) ([]types.RankedCandidate, error) {
	ctx, span := tracer.Start(ctx, "ResumeService.Rank",
		trace.WithAttributes(attribute.Int("rank.candidates", len(resumes))))
	defer span.End()

	ranked := make([]types.RankedCandidate, len(resumes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.rankConcurrency)
	for i := range resumes {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ranked[i] = types.RankedCandidate{Index: i, Result: s.Match(gctx, resumes[i], job, weights)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, NewRankError(err.Error())
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Result.Score > ranked[b].Result.Score
	})
	return ranked, nil
}

// Status 返回服务的能力状态
func (s *ResumeService) Status() Status {
	return Status{
		ExtractorConfigured: s.extractor != nil,
		DocumentConversion:  s.documents != nil,
		CoolingUntil:        s.gate.coolingUntil(),
	}
}

// Close 释放服务持有的外部资源
func (s *ResumeService) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
