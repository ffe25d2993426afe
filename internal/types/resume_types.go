package types

// SectionType 表示简历章节类型
type SectionType string

const (
	// SectionSkills 技能章节
	SectionSkills SectionType = "SKILLS"
	// SectionExperience 工作/实习经历章节
	SectionExperience SectionType = "EXPERIENCE"
	// SectionProjects 项目经历章节
	SectionProjects SectionType = "PROJECTS"
	// SectionEducation 教育经历章节
	SectionEducation SectionType = "EDUCATION"
	// SectionOther 不参与抽取的其它标题（兴趣爱好、证书等），只用于截断上一章节
	SectionOther SectionType = "OTHER"
	// SectionUnknown 未分类内容
	SectionUnknown SectionType = "UNKNOWN"
)

// ExtractableSections 参与字段抽取的章节类型，顺序即分类器投票时的优先顺序
var ExtractableSections = []SectionType{SectionSkills, SectionExperience, SectionProjects, SectionEducation}

// Line 归一化后的一行文本，Index 为其在行序列中的位置
// BlankBefore 表示原文中该行之前存在空行，子段落切分以此作为边界
type Line struct {
	Index       int
	Text        string
	BlankBefore bool
}

// SectionAnchor 章节标题锚点
// Inline 为标题行自身携带的内容，例如 "Skills: Go, Docker" 中冒号后的部分
type SectionAnchor struct {
	Index  int
	Type   SectionType
	Inline string
}

// Section 一个章节及其内容行（不含标题行）
type Section struct {
	Type  SectionType
	Lines []Line
}

// ExperienceEntry 工作经历条目
// StartDate/EndDate 格式为 "YYYY" 或 "YYYY-MM"，EndDate 为空表示至今
type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description"`
}

// IsEmpty 所有字段均为空
func (e ExperienceEntry) IsEmpty() bool {
	return e.Title == "" && e.Company == "" && e.Location == "" &&
		e.StartDate == "" && e.EndDate == "" && e.Description == ""
}

// ProjectEntry 项目经历条目
type ProjectEntry struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	URL          string   `json:"url,omitempty"`
}

// EducationEntry 教育经历条目
type EducationEntry struct {
	Name        string `json:"name"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	GPA         string `json:"gpa,omitempty"`
}

// ParsedResume 一次解析的结构化结果，返回后不再修改
type ParsedResume struct {
	Skills     []string          `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	Projects   []ProjectEntry    `json:"projects"`
	Education  []EducationEntry  `json:"education"`
	RawText    string            `json:"raw_text"`
	// Source 标记结果来源: "llm" 或 "heuristic"
	Source string `json:"source,omitempty"`
}

// EmptyParsedResume 返回各字段为非nil空切片的结果
func EmptyParsedResume(rawText string) ParsedResume {
	return ParsedResume{
		Skills:     []string{},
		Experience: []ExperienceEntry{},
		Projects:   []ProjectEntry{},
		Education:  []EducationEntry{},
		RawText:    rawText,
	}
}

// ExperienceRequirement 岗位经验要求
type ExperienceRequirement struct {
	MinYears float64 `json:"min_years" yaml:"min_years"`
	Field    string  `json:"field" yaml:"field"`
}

// EducationRequirement 岗位学历要求
type EducationRequirement struct {
	RequiredDegree string `json:"required_degree" yaml:"required_degree"`
	PreferredField string `json:"preferred_field" yaml:"preferred_field"`
}

// JobRequirement 岗位要求
type JobRequirement struct {
	Title           string                `json:"title" yaml:"title"`
	Description     string                `json:"description" yaml:"description"`
	RequiredSkills  []string              `json:"required_skills" yaml:"required_skills"`
	PreferredSkills []string              `json:"preferred_skills" yaml:"preferred_skills"`
	Experience      ExperienceRequirement `json:"experience" yaml:"experience"`
	Education       EducationRequirement  `json:"education" yaml:"education"`
}

// LLMInsights 外部定性分析结果
type LLMInsights struct {
	Score      int      `json:"score"`
	Highlights []string `json:"highlights"`
	Gaps       []string `json:"gaps"`
	Summary    string   `json:"summary"`
	Available  bool     `json:"available"`
}

// MatchBreakdown 各维度子分数 (0-100)
type MatchBreakdown struct {
	SkillMatch      int         `json:"skill_match"`
	RequiredSkills  int         `json:"required_skills"`
	PreferredSkills int         `json:"preferred_skills"`
	ExperienceMatch int         `json:"experience_match"`
	EducationMatch  int         `json:"education_match"`
	ProjectMatch    int         `json:"project_match"`
	LLMInsights     LLMInsights `json:"llm_insights"`
}

// MatchResult 简历与岗位的匹配结果
type MatchResult struct {
	Score        int                `json:"score"`
	Breakdown    MatchBreakdown     `json:"breakdown"`
	Explanation  string             `json:"explanation"`
	Weights      map[string]float64 `json:"weights,omitempty"`
	EvaluationID string             `json:"evaluation_id,omitempty"`
	EvaluatedAt  int64              `json:"evaluated_at"`
}

// JobMatchEvaluation 岗位匹配评估结果（外部定性分析的原始形态）
type JobMatchEvaluation struct {
	// 匹配分数 (0-100)
	MatchScore int `json:"match_score"`

	// 匹配亮点
	MatchHighlights []string `json:"match_highlights"`

	// 潜在不足
	PotentialGaps []string `json:"potential_gaps"`

	// 针对岗位的简历摘要
	ResumeSummaryForJD string `json:"resume_summary_for_jd"`

	// 评估时间
	EvaluatedAt int64 `json:"evaluated_at"`
}

// RankedCandidate 排序结果中的一项
type RankedCandidate struct {
	Index  int         `json:"index"`
	Result MatchResult `json:"result"`
}
