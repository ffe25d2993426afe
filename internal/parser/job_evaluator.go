package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"

	"resume-match-go/internal/cache"
	"resume-match-go/internal/retry"
	"resume-match-go/internal/types"
)

const opEvaluateMatch = "evaluate_match"

// 摘要超过该长度时截断
const maxSummaryRunes = 400

// ErrInvalidEvaluation 评估结果缺少分数或分数越界
var ErrInvalidEvaluation = errors.New("invalid evaluation result")

// LLMJobMatchEvaluation 定义LLM评估结果的结构体
type LLMJobMatchEvaluation struct {
	MatchScore         int      `json:"match_score"`
	MatchHighlights    []string `json:"match_highlights"`
	PotentialGaps      []string `json:"potential_gaps"`
	ResumeSummaryForJD string   `json:"resume_summary_for_jd"`
}

// LLMJobEvaluator 岗位-简历定性匹配评估
type LLMJobEvaluator struct {
	caller          *llmCaller
	promptTemplate  string // 两个 %s：岗位描述、简历
	fewShotExamples string
	logger          *log.Logger
}

// LLMJobEvaluatorOption 是LLM评估器的配置选项
type LLMJobEvaluatorOption func(*LLMJobEvaluator)

// WithCustomPromptTemplate 设置自定义提示词模板
func WithCustomPromptTemplate(template string) LLMJobEvaluatorOption {
	return func(e *LLMJobEvaluator) {
		e.promptTemplate = template
	}
}

// WithFewShotExamples 设置少样本示例
func WithFewShotExamples(examples string) LLMJobEvaluatorOption {
	return func(e *LLMJobEvaluator) {
		e.fewShotExamples = examples
	}
}

// WithEvaluatorMemoizer 设置结果缓存
func WithEvaluatorMemoizer(m *cache.Memoizer) LLMJobEvaluatorOption {
	return func(e *LLMJobEvaluator) {
		e.caller.memo = m
	}
}

// WithEvaluatorRetryPolicy 设置重试策略
func WithEvaluatorRetryPolicy(p *retry.Policy) LLMJobEvaluatorOption {
	return func(e *LLMJobEvaluator) {
		if p != nil {
			e.caller.policy = p
		}
	}
}

// WithEvaluatorModelOptions 设置每次调用附带的模型选项
func WithEvaluatorModelOptions(opts ...model.Option) LLMJobEvaluatorOption {
	return func(e *LLMJobEvaluator) {
		e.caller.opts = append(e.caller.opts, opts...)
	}
}

// NewLLMJobEvaluator 创建一个新的评估器实例
func NewLLMJobEvaluator(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...LLMJobEvaluatorOption) *LLMJobEvaluator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	evaluator := &LLMJobEvaluator{
		caller:          newLLMCaller(llmModel),
		promptTemplate:  evaluatorPromptTemplate,
		fewShotExamples: evaluatorFewShotExamples,
		logger:          logger,
	}
	evaluator.caller.logger = logger

	for _, opt := range options {
		opt(evaluator)
	}
	return evaluator
}

const evaluatorSystemPrompt = "You are a senior technical recruiter who evaluates how well a candidate's resume fits a job description."

const evaluatorPromptTemplate = `Compare the JOB DESCRIPTION with the CANDIDATE RESUME and return ONLY a JSON object with these fields:
1. "match_score": integer 0-100 reflecting the overall fit.
2. "match_highlights": 1-5 strings, each a concrete point where the candidate clearly meets or exceeds the job's needs.
3. "potential_gaps": 0-3 strings, each a concrete shortfall or something to verify in an interview.
4. "resume_summary_for_jd": one or two sentences (under 60 words) summarising the candidate for this job.

JSON rules: double quotes for every key and string, escape inner double quotes as \", no markdown, no text outside the object.

Scoring guidance:
- Hard requirements (mandatory degree, must-have skills, minimum years) that are clearly missing keep the score below 40.
- Core skill overlap, directly relevant experience and responsibilities carry the most weight.
- "Nice to have" skills, domain background and soft skills carry medium weight.
- Certifications, awards and notable employers are small bonuses once the core is met.
Bands: 90-100 outstanding, 75-89 strong, 60-74 reasonable, 40-59 partial, 0-39 poor fit.

JOB DESCRIPTION:
"""
%s
"""

CANDIDATE RESUME:
"""
%s
"""`

const evaluatorFewShotExamples = `Examples of the expected judgement and output format:

Example 1 (a hard requirement is missing)
JOB DESCRIPTION: "Data Analyst, new graduates of 2026 only. Python and SQL required."
CANDIDATE RESUME: "Graduated 2023, two years as a data analyst using Python, SQL and Tableau."
Output:
{"match_score": 35, "match_highlights": ["Daily use of Python and SQL for analysis matches the core tool set."], "potential_gaps": ["Graduated in 2023, which does not meet the \"2026 graduates only\" requirement."], "resume_summary_for_jd": "Capable analyst with the right tools, but the graduation year rules the candidate out for this new-graduate role."}

Example 2 (strong fit with a minor gap)
JOB DESCRIPTION: "Senior Frontend Engineer, 5+ years, expert React, TypeScript, large SPA experience, performance tuning."
CANDIDATE RESUME: "7 years frontend. Led 3 large React/TypeScript SPAs, cut first paint from 4.2s to 1.8s, runs internal tech talks."
Output:
{"match_score": 92, "match_highlights": ["7 years of frontend work exceeds the 5-year requirement.", "Led three large React and TypeScript SPAs.", "Measured performance wins (first paint 4.2s to 1.8s)."], "potential_gaps": ["No mention of CI/CD or automated testing practice."], "resume_summary_for_jd": "Seasoned React and TypeScript engineer with large SPA leadership and proven performance work; a very strong fit."}
`

// Evaluate 函数执行JD与简历的匹配评估
func (e *LLMJobEvaluator) Evaluate(ctx context.Context, jobDescriptionText, resumeText string) (*LLMJobMatchEvaluation, error) {
	if e == nil || e.caller.model == nil {
		return nil, ErrLLMUnavailable
	}
	if e.promptTemplate == "" {
		return nil, fmt.Errorf("LLMJobEvaluator: promptTemplate is not initialized")
	}

	userMsg := fmt.Sprintf(e.promptTemplate,
		truncateRunes(jobDescriptionText, maxPromptRunes/2), truncateRunes(resumeText, maxPromptRunes))
	systemMsg := evaluatorSystemPrompt
	if e.fewShotExamples != "" {
		systemMsg = e.fewShotExamples + "\n\n" + evaluatorSystemPrompt
	}

	e.logger.Printf("[LLMJobEvaluator] 岗位描述前300字符: %.300s", jobDescriptionText)
	content, err := e.caller.call(ctx, opEvaluateMatch, systemMsg, userMsg)
	if err != nil {
		return nil, fmt.Errorf("LLMJobEvaluator: %w", err)
	}

	result, err := decodeEvaluation(content)
	if err != nil {
		e.logger.Printf("[LLMJobEvaluator] 无法解析评估结果: %v, 原始响应: %.500s", err, content)
		return nil, fmt.Errorf("LLMJobEvaluator: %w", err)
	}
	return result, nil
}

// EvaluateMatch 评估简历与岗位的匹配度，返回通用评估结果
func (e *LLMJobEvaluator) EvaluateMatch(ctx context.Context, jobDescription string, resumeText string) (*types.JobMatchEvaluation, error) {
	result, err := e.Evaluate(ctx, jobDescription, resumeText)
	if err != nil {
		return nil, err
	}
	return &types.JobMatchEvaluation{
		MatchScore:         result.MatchScore,
		MatchHighlights:    result.MatchHighlights,
		PotentialGaps:      result.PotentialGaps,
		ResumeSummaryForJD: result.ResumeSummaryForJD,
		EvaluatedAt:        time.Now().Unix(),
	}, nil
}

// decodeEvaluation 先按 JSON 解码，失败时逐字段用正则提取；分数缺失视为无效结果
func decodeEvaluation(content string) (*LLMJobMatchEvaluation, error) {
	result := &LLMJobMatchEvaluation{}
	score := math.NaN()

	var payload map[string]any
	if err := DecodeBestEffort(content, &payload); err == nil {
		score = coerceFloat(field(payload, "match_score", "score"))
		result.MatchHighlights = coerceStringList(field(payload, "match_highlights", "highlights"))
		result.PotentialGaps = coerceStringList(field(payload, "potential_gaps", "gaps"))
		result.ResumeSummaryForJD = coerceString(field(payload, "resume_summary_for_jd", "summary"))
	} else {
		if v, ok := ExtractNumber(content, "match_score"); ok {
			score = v
		}
		result.MatchHighlights = ExtractStringList(content, "match_highlights")
		result.PotentialGaps = ExtractStringList(content, "potential_gaps")
		result.ResumeSummaryForJD = ExtractString(content, "resume_summary_for_jd")
	}

	if math.IsNaN(score) {
		return nil, fmt.Errorf("%w: match_score missing", ErrInvalidEvaluation)
	}
	result.MatchScore = int(math.Round(score))
	if result.MatchHighlights == nil {
		result.MatchHighlights = []string{}
	}
	if result.PotentialGaps == nil {
		result.PotentialGaps = []string{}
	}
	if err := validateEvaluationResult(result); err != nil {
		return nil, err
	}
	return result, nil
}

// validateEvaluationResult 验证评估结果是否符合要求，过长的摘要会被截断
func validateEvaluationResult(result *LLMJobMatchEvaluation) error {
	if result.MatchScore < 0 || result.MatchScore > 100 {
		return fmt.Errorf("%w: match_score must be between 0 and 100, got %d", ErrInvalidEvaluation, result.MatchScore)
	}
	result.ResumeSummaryForJD = strings.TrimSpace(result.ResumeSummaryForJD)
	if n := len([]rune(result.ResumeSummaryForJD)); n > maxSummaryRunes {
		result.ResumeSummaryForJD = truncateRunes(result.ResumeSummaryForJD, maxSummaryRunes)
	}
	return nil
}
