package parser

import (
	"io"
	"log"

	"resume-match-go/internal/types"
)

// SourceHeuristic 启发式解析结果来源标记
const SourceHeuristic = "heuristic"

// ParseReport 记录一次启发式解析的中间结果，便于调试和测试
type ParseReport struct {
	Lines      []types.Line
	Anchors    []types.SectionAnchor
	Classified bool
	Sections   []types.Section
	// Strategies 各字段命中的抽取策略名
	Strategies map[types.SectionType]string
}

// HeuristicParser 基于规则的简历解析器。无状态，可被多个 goroutine 并发使用。
type HeuristicParser struct {
	logger *log.Logger
}

// HeuristicOption 配置 HeuristicParser
type HeuristicOption func(*HeuristicParser)

// WithHeuristicLogger 设置日志记录器
func WithHeuristicLogger(logger *log.Logger) HeuristicOption {
	return func(p *HeuristicParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewHeuristicParser 创建启发式解析器
func NewHeuristicParser(opts ...HeuristicOption) *HeuristicParser {
	p := &HeuristicParser{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse 解析简历文本。输入为空或无法识别时返回各字段为空的结果，从不失败。
func (p *HeuristicParser) Parse(text string) types.ParsedResume {
	resume, _ := p.ParseWithReport(text)
	return resume
}

// ParseWithReport 解析简历文本并返回中间结果
func (p *HeuristicParser) ParseWithReport(text string) (types.ParsedResume, ParseReport) {
	resume := types.EmptyParsedResume(text)
	resume.Source = SourceHeuristic
	report := ParseReport{Strategies: make(map[types.SectionType]string)}

	lines := NormalizeLines(text)
	report.Lines = lines
	if len(lines) == 0 {
		return resume, report
	}

	anchors := DetectSectionAnchors(lines)
	if !hasExtractableAnchor(anchors) {
		anchors = classifiedAnchors(lines, ClassifyLines(lines))
		report.Classified = true
		p.logger.Printf("未发现章节标题，使用内容分类器，共 %d 行", len(lines))
	}
	report.Anchors = anchors

	sections := AssembleSections(lines, anchors)
	report.Sections = sections
	in := extractionInput{All: lines}

	in.Section = sectionLines(sections, types.SectionSkills)
	skills, strategy := runStrategies(skillStrategies, in)
	resume.Skills = skills
	report.Strategies[types.SectionSkills] = strategy

	in.Section = sectionLines(sections, types.SectionExperience)
	experience, strategy := runStrategies(experienceStrategies, in)
	resume.Experience = experience
	report.Strategies[types.SectionExperience] = strategy

	in.Section = sectionLines(sections, types.SectionProjects)
	projects, strategy := runStrategies(projectStrategies, in)
	resume.Projects = projects
	report.Strategies[types.SectionProjects] = strategy

	resume.Education = ExtractEducation(text)

	p.logger.Printf("启发式解析完成: skills=%d experience=%d projects=%d education=%d",
		len(resume.Skills), len(resume.Experience), len(resume.Projects), len(resume.Education))
	return resume, report
}
