package matcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"resume-match-go/internal/tracing"
	"resume-match-go/internal/types"
)

const tracerName = "resume-match-go/internal/matcher"

// QualitativeAnalyzer 外部定性分析，parser.LLMJobEvaluator 实现了该接口
type QualitativeAnalyzer interface {
	EvaluateMatch(ctx context.Context, jobDescription string, resumeText string) (*types.JobMatchEvaluation, error)
}

// Scorer 计算简历与岗位的加权匹配分。Match 从不返回错误：
// 权重非法或计算过程 panic 时返回全零的完整结果并在 Explanation 中说明原因。
type Scorer struct {
	weights  Weights
	analyzer QualitativeAnalyzer
	now      func() time.Time
	tracer   trace.Tracer
	logger   *log.Logger
}

// Option 配置 Scorer
type Option func(*Scorer)

// WithWeights 设置默认权重
func WithWeights(w Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithAnalyzer 设置外部定性分析
func WithAnalyzer(a QualitativeAnalyzer) Option {
	return func(s *Scorer) {
		s.analyzer = a
	}
}

// WithClock 注入时钟，影响"至今"经历的时长
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *log.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer 创建评分器，默认使用 FullWeights
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights: FullWeights,
		now:     time.Now,
		tracer:  otel.Tracer(tracerName),
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weights 返回默认权重
func (s *Scorer) Weights() Weights { return s.weights }

// Match 计算匹配结果。weights 为 nil 时使用默认权重。
// 未配置外部分析时 LLM 权重按比例分摊到其余维度；已配置但调用失败时该项记 0 分。
func (s *Scorer) Match(ctx context.Context, resume types.ParsedResume, job types.JobRequirement, weights *Weights) (result types.MatchResult) {
	w := s.weights
	if weights != nil {
		w = *weights
	}

	ctx, span := s.tracer.Start(ctx, "matcher.Match", trace.WithAttributes(
		attribute.String("job.title", job.Title),
		attribute.Int("resume.skills", len(resume.Skills)),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("match scorer panic: %v", r)
			s.logger.Printf("评分过程异常，返回零分结果: %v", err)
			tracing.RecordError(span, err, tracing.ErrorTypeInternal)
			result = s.zeroResult(w, fmt.Sprintf("Scoring failed: %v", r))
		}
	}()

	if err := w.Validate(); err != nil {
		s.logger.Printf("权重非法，返回零分结果: %v", err)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return s.zeroResult(w, fmt.Sprintf("Scoring failed: %v", err))
	}
	if s.analyzer == nil {
		w = w.withoutLLM()
	}

	now := s.now()
	required, reqMatched, reqTotal := skillOverlap(job.RequiredSkills, resume.Skills)
	preferred, _, _ := skillOverlap(job.PreferredSkills, resume.Skills)
	skills := blendedSkills(required, preferred)
	experience, years := experienceScore(resume.Experience, job.Experience, job.Title, now)
	education := educationScore(resume.Education, job.Education)
	projects := projectScore(resume.Projects, append(append([]string(nil), job.RequiredSkills...), job.PreferredSkills...))

	insights := types.LLMInsights{Highlights: []string{}, Gaps: []string{}}
	if w.LLM > 0 && s.analyzer != nil {
		insights = s.analyze(ctx, span, resume, job)
	}

	composite := w.Skills*clamp01(skills) +
		w.RequiredSkills*clamp01(required) +
		w.PreferredSkills*clamp01(preferred) +
		w.Experience*clamp01(experience) +
		w.Education*clamp01(education) +
		w.Projects*clamp01(projects) +
		w.LLM*clamp01(float64(insights.Score)/100)
	score := clampScore(int(math.Round(composite * 100)))

	span.SetAttributes(attribute.Int("match.score", score), attribute.Bool("match.llm_available", insights.Available))
	return types.MatchResult{
		Score: score,
		Breakdown: types.MatchBreakdown{
			SkillMatch:      percent(skills),
			RequiredSkills:  percent(required),
			PreferredSkills: percent(preferred),
			ExperienceMatch: percent(experience),
			EducationMatch:  percent(education),
			ProjectMatch:    percent(projects),
			LLMInsights:     insights,
		},
		Explanation:  explain(score, reqMatched, reqTotal, years, job.Experience.MinYears, insights),
		Weights:      w.Map(),
		EvaluationID: uuid.NewString(),
		EvaluatedAt:  now.Unix(),
	}
}

// analyze 调用外部定性分析；失败时返回 Available=false、Score=0 的结果
func (s *Scorer) analyze(ctx context.Context, span trace.Span, resume types.ParsedResume, job types.JobRequirement) types.LLMInsights {
	insights := types.LLMInsights{Highlights: []string{}, Gaps: []string{}}
	eval, err := s.analyzer.EvaluateMatch(ctx, JobDescriptionText(job), ResumeText(resume))
	if err != nil {
		s.logger.Printf("外部定性分析失败，该项记0分: %v", err)
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return insights
	}
	if eval == nil {
		return insights
	}
	insights.Score = clampScore(eval.MatchScore)
	insights.Summary = eval.ResumeSummaryForJD
	insights.Available = true
	if eval.MatchHighlights != nil {
		insights.Highlights = eval.MatchHighlights
	}
	if eval.PotentialGaps != nil {
		insights.Gaps = eval.PotentialGaps
	}
	return insights
}

func (s *Scorer) zeroResult(w Weights, explanation string) types.MatchResult {
	return types.MatchResult{
		Breakdown: types.MatchBreakdown{
			LLMInsights: types.LLMInsights{Highlights: []string{}, Gaps: []string{}},
		},
		Explanation:  explanation,
		Weights:      w.Map(),
		EvaluationID: uuid.NewString(),
		EvaluatedAt:  s.now().Unix(),
	}
}

func explain(score, reqMatched, reqTotal int, years, minYears float64, insights types.LLMInsights) string {
	var b strings.Builder
	switch {
	case score >= 80:
		b.WriteString("Strong match")
	case score >= 60:
		b.WriteString("Good match")
	case score >= 40:
		b.WriteString("Partial match")
	default:
		b.WriteString("Weak match")
	}
	fmt.Fprintf(&b, " (%d/100).", score)
	if reqTotal > 0 {
		fmt.Fprintf(&b, " Required skills matched: %d/%d.", reqMatched, reqTotal)
	}
	if minYears > 0 {
		fmt.Fprintf(&b, " Experience: %.1f of %.1f required years.", years, minYears)
	} else {
		fmt.Fprintf(&b, " Experience: %.1f years.", years)
	}
	if insights.Available && insights.Summary != "" {
		b.WriteString(" ")
		b.WriteString(insights.Summary)
	}
	return b.String()
}

// JobDescriptionText 岗位原始描述；没有描述时由结构化要求拼出
func JobDescriptionText(job types.JobRequirement) string {
	if strings.TrimSpace(job.Description) != "" {
		return job.Description
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", job.Title)
	if len(job.RequiredSkills) > 0 {
		fmt.Fprintf(&b, "Required skills: %s\n", strings.Join(job.RequiredSkills, ", "))
	}
	if len(job.PreferredSkills) > 0 {
		fmt.Fprintf(&b, "Preferred skills: %s\n", strings.Join(job.PreferredSkills, ", "))
	}
	if job.Experience.MinYears > 0 {
		fmt.Fprintf(&b, "Experience: %.1f+ years %s\n", job.Experience.MinYears, job.Experience.Field)
	}
	if job.Education.RequiredDegree != "" || job.Education.PreferredField != "" {
		fmt.Fprintf(&b, "Education: %s %s\n", job.Education.RequiredDegree, job.Education.PreferredField)
	}
	return strings.TrimSpace(b.String())
}

// ResumeText 简历原文；没有原文时由结构化结果拼出
func ResumeText(resume types.ParsedResume) string {
	if strings.TrimSpace(resume.RawText) != "" {
		return resume.RawText
	}
	var b strings.Builder
	if len(resume.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(resume.Skills, ", "))
	}
	for _, e := range resume.Experience {
		fmt.Fprintf(&b, "Experience: %s at %s (%s - %s) %s\n", e.Title, e.Company, e.StartDate, e.EndDate, e.Description)
	}
	for _, p := range resume.Projects {
		fmt.Fprintf(&b, "Project: %s [%s] %s\n", p.Name, strings.Join(p.Technologies, ", "), p.Description)
	}
	for _, e := range resume.Education {
		fmt.Fprintf(&b, "Education: %s\n", e.Name)
	}
	return strings.TrimSpace(b.String())
}

func percent(v float64) int {
	return clampScore(int(math.Round(clamp01(v) * 100)))
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
