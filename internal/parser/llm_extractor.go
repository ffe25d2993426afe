package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"golang.org/x/sync/errgroup"

	"resume-match-go/internal/cache"
	"resume-match-go/internal/retry"
	"resume-match-go/internal/types"
)

// SourceLLM 模型抽取结果来源标记
const SourceLLM = "llm"

// 送入模型的简历文本上限（按字符计）
const maxPromptRunes = 12000

const (
	opExtractSkills     = "extract_skills"
	opExtractExperience = "extract_experience"
	opExtractProjects   = "extract_projects"
)

const extractorSystemPrompt = `You are a precise resume parser. Read the resume the user provides and return ONLY a JSON object, with no markdown and no commentary. Use double quotes for every key and string value and escape inner double quotes. Never invent information that is not in the resume; use an empty string or an empty array when something is missing.`

const skillsPromptTemplate = `Extract the candidate's technical and professional skills.
Return: {"skills": ["skill", ...]}
Rules: each skill is 1-3 words as written in the resume (keep original casing); no section titles, no soft sentences, no duplicates.

Resume:
"""
%s
"""`

const experiencePromptTemplate = `Extract the candidate's work experience, including internships.
Return: {"experience": [{"title": "", "company": "", "location": "", "start_date": "", "end_date": "", "description": ""}]}
Rules: dates use "YYYY-MM" or "YYYY"; end_date is "" when the role is current; description summarizes the responsibilities in one or two sentences.

Resume:
"""
%s
"""`

const projectsPromptTemplate = `Extract the candidate's projects (personal, academic or open source).
Return: {"projects": [{"name": "", "description": "", "technologies": ["", ...], "url": ""}]}
Rules: technologies lists only tools, languages and frameworks named for that project; url is "" when absent.

Resume:
"""
%s
"""`

// LLMStructuredExtractor 用三个独立 prompt 并行抽取技能、工作经历和项目。
// 单个字段的响应无法解析时该字段降级为空列表；只有模型调用本身失败才返回错误。
type LLMStructuredExtractor struct {
	caller *llmCaller
	logger *log.Logger
}

// LLMExtractorOption 配置 LLMStructuredExtractor
type LLMExtractorOption func(*LLMStructuredExtractor)

// WithExtractorLogger 设置日志记录器
func WithExtractorLogger(logger *log.Logger) LLMExtractorOption {
	return func(e *LLMStructuredExtractor) {
		if logger != nil {
			e.logger = logger
			e.caller.logger = logger
		}
	}
}

// WithExtractorMemoizer 设置结果缓存
func WithExtractorMemoizer(m *cache.Memoizer) LLMExtractorOption {
	return func(e *LLMStructuredExtractor) {
		e.caller.memo = m
	}
}

// WithExtractorRetryPolicy 设置重试策略
func WithExtractorRetryPolicy(p *retry.Policy) LLMExtractorOption {
	return func(e *LLMStructuredExtractor) {
		if p != nil {
			e.caller.policy = p
		}
	}
}

// WithExtractorModelOptions 设置每次调用附带的模型选项（温度、节流提示等）
func WithExtractorModelOptions(opts ...model.Option) LLMExtractorOption {
	return func(e *LLMStructuredExtractor) {
		e.caller.opts = append(e.caller.opts, opts...)
	}
}

// NewLLMStructuredExtractor 创建模型抽取器
func NewLLMStructuredExtractor(llmModel model.ToolCallingChatModel, opts ...LLMExtractorOption) *LLMStructuredExtractor {
	e := &LLMStructuredExtractor{
		caller: newLLMCaller(llmModel),
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract 抽取结构化简历。教育经历不走模型，仍由 ExtractEducation 从全文抽取。
// 返回的错误由各字段的调用失败合并而成；出错时结果中对应字段为空列表。
func (e *LLMStructuredExtractor) Extract(ctx context.Context, text string) (types.ParsedResume, error) {
	resume := types.EmptyParsedResume(text)
	resume.Source = SourceLLM
	if strings.TrimSpace(text) == "" {
		return resume, nil
	}
	if e == nil || e.caller.model == nil {
		return resume, ErrLLMUnavailable
	}

	prompt := truncateRunes(strings.ToValidUTF8(text, ""), maxPromptRunes)
	var skillsErr, experienceErr, projectsErr error
	var eg errgroup.Group
	eg.Go(func() error {
		resume.Skills, skillsErr = extractField(ctx, e, opExtractSkills, fmt.Sprintf(skillsPromptTemplate, prompt), decodeSkills)
		return nil
	})
	eg.Go(func() error {
		resume.Experience, experienceErr = extractField(ctx, e, opExtractExperience, fmt.Sprintf(experiencePromptTemplate, prompt), decodeExperience)
		return nil
	})
	eg.Go(func() error {
		resume.Projects, projectsErr = extractField(ctx, e, opExtractProjects, fmt.Sprintf(projectsPromptTemplate, prompt), decodeProjects)
		return nil
	})
	_ = eg.Wait()

	resume.Education = ExtractEducation(text)
	e.logger.Printf("模型抽取完成: skills=%d experience=%d projects=%d",
		len(resume.Skills), len(resume.Experience), len(resume.Projects))
	return resume, errors.Join(skillsErr, experienceErr, projectsErr)
}

// extractField 调用模型并解码单个字段；空响应和解码过程中的任何异常只影响该字段，不算调用失败
func extractField[T any](ctx context.Context, e *LLMStructuredExtractor, op, prompt string, decode func(string) []T) (out []T, err error) {
	resp, err := e.caller.call(ctx, op, extractorSystemPrompt, prompt)
	if errors.Is(err, ErrEmptyResponse) {
		e.logger.Printf("[%s] 模型返回空内容，字段置空", op)
		return []T{}, nil
	}
	if err != nil {
		e.logger.Printf("[%s] 模型调用失败，字段置空: %v", op, err)
		return []T{}, err
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Printf("[%s] 解码响应异常，字段置空: %v", op, r)
			out = []T{}
		}
	}()
	out = decode(resp)
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func decodeSkills(resp string) []string {
	var raw []string
	if v := decodedField(resp, "skills", "technical_skills"); v != nil {
		raw = coerceStringList(v)
	} else {
		raw = ExtractStringList(resp, "skills")
	}
	return NormalizeSkills(raw)
}

func decodeExperience(resp string) []types.ExperienceEntry {
	var items []map[string]any
	if v := decodedField(resp, "experience", "work_experience", "experiences"); v != nil {
		items = coerceObjects(v)
	} else {
		items = stringMapToAny(ExtractObjects(resp, "experience"))
	}

	entries := make([]types.ExperienceEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, types.ExperienceEntry{
			Title:       coerceString(field(it, "title", "position", "role")),
			Company:     coerceString(field(it, "company", "organization", "employer")),
			Location:    coerceString(field(it, "location")),
			StartDate:   normalizeDate(coerceString(field(it, "start_date", "startDate", "from"))),
			EndDate:     normalizeDate(coerceString(field(it, "end_date", "endDate", "to"))),
			Description: coerceString(field(it, "description", "summary", "responsibilities")),
		})
	}
	return finalizeExperience(entries)
}

func decodeProjects(resp string) []types.ProjectEntry {
	var items []map[string]any
	if v := decodedField(resp, "projects", "project"); v != nil {
		items = coerceObjects(v)
	} else {
		items = stringMapToAny(ExtractObjects(resp, "projects"))
	}

	entries := make([]types.ProjectEntry, 0, len(items))
	for _, it := range items {
		p := types.ProjectEntry{
			Name:         coerceString(field(it, "name", "title")),
			Description:  coerceString(field(it, "description", "summary")),
			Technologies: NormalizeSkills(coerceStringList(field(it, "technologies", "tech_stack", "tech", "stack"))),
			URL:          coerceString(field(it, "url", "link", "repository")),
		}
		if len(p.Technologies) == 0 {
			p.Technologies = findTechnologies(p.Name + "\n" + p.Description)
		}
		entries = append(entries, p)
	}
	return finalizeProjects(entries)
}

// decodedField 解码响应并取出字段；响应无法解码或缺少该字段时返回 nil，由调用方走正则兜底
func decodedField(resp string, keys ...string) any {
	var payload map[string]any
	if err := DecodeBestEffort(resp, &payload); err != nil {
		return nil
	}
	return field(payload, keys...)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
