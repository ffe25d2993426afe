package matcher

import (
	"math"
	"regexp"
	"strings"
	"time"

	"resume-match-go/internal/types"
)

// 经验分中年限与职位相关度的混合比例
const (
	experienceYearsShare = 0.7
	experienceTitleShare = 0.3
)

// 学历分档
const (
	educationFull       = 1.0
	educationDegreeOnly = 0.7
	educationMismatch   = 0.3
)

// skillOverlap 返回 jobSkills 中被简历技能覆盖的比例；两者互相包含（忽略大小写）即视为匹配。
// 岗位未列出技能时为 1。
func skillOverlap(jobSkills, resumeSkills []string) (float64, int, int) {
	required := cleanList(jobSkills)
	if len(required) == 0 {
		return 1, 0, 0
	}
	have := cleanList(resumeSkills)
	matched := 0
	for _, js := range required {
		for _, rs := range have {
			if containsEither(js, rs) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(required)), matched, len(required)
}

// blendedSkills 按默认权重中必需/加分技能 0.35:0.15 的比例混合
func blendedSkills(required, preferred float64) float64 {
	return (required*FullWeights.RequiredSkills + preferred*FullWeights.PreferredSkills) /
		(FullWeights.RequiredSkills + FullWeights.PreferredSkills)
}

// experienceScore 年限满足度与职位相关度按 70/30 混合
func experienceScore(entries []types.ExperienceEntry, req types.ExperienceRequirement, jobTitle string, now time.Time) (float64, float64) {
	years := TotalExperienceYears(entries, now)
	ratio := 1.0
	if req.MinYears > 0 {
		ratio = math.Min(years/req.MinYears, 1)
	}
	return experienceYearsShare*ratio + experienceTitleShare*titleRelevance(jobTitle, entries), years
}

// titleRelevance 岗位名称与某段经历职位互相包含为 1；有工作经历但职位都不相关为 0.5；没有经历为 0。
// 岗位未给出名称时为 1。
func titleRelevance(jobTitle string, entries []types.ExperienceEntry) float64 {
	if strings.TrimSpace(jobTitle) == "" {
		return 1
	}
	if len(entries) == 0 {
		return 0
	}
	for _, e := range entries {
		if containsEither(jobTitle, e.Title) {
			return 1
		}
	}
	return 0.5
}

// TotalExperienceYears 累加各段经历的时长（按月计，折算为年）。
// 结束日期为空表示至今；开始日期无法解析或结束早于开始的条目跳过。只有年份的日期按该年一月计。
func TotalExperienceYears(entries []types.ExperienceEntry, now time.Time) float64 {
	months := 0
	for _, e := range entries {
		sy, sm, ok := types.ParseYearMonth(e.StartDate)
		if !ok {
			continue
		}
		ey, em := now.Year(), int(now.Month())
		if strings.TrimSpace(e.EndDate) != "" {
			if ey, em, ok = types.ParseYearMonth(e.EndDate); !ok {
				continue
			}
		}
		d := monthIndex(ey, em) - monthIndex(sy, sm)
		if d < 0 {
			continue
		}
		months += d
	}
	return float64(months) / 12
}

func monthIndex(year, month int) int {
	if month <= 0 {
		month = 1
	}
	return year*12 + month - 1
}

var degreeLevels = []struct {
	re    *regexp.Regexp
	level int
}{
	{regexp.MustCompile(`(?i)\b(?:ph\.?\s?d|doctor)`), 4},
	{regexp.MustCompile(`(?i)\b(?:master|mba|m\.?\s?sc|m\.?\s?tech|m\.s\.?|m\.a\.)`), 3},
	{regexp.MustCompile(`(?i)\b(?:bachelor|b\.?\s?sc|b\.?\s?tech|b\.s\.?|b\.a\.|b\.e\.|undergraduate)`), 2},
	{regexp.MustCompile(`(?i)\b(?:associate|diploma)`), 1},
}

func degreeLevel(s string) int {
	for _, d := range degreeLevels {
		if d.re.MatchString(s) {
			return d.level
		}
	}
	return 0
}

// educationScore 取各条教育经历的最高分；无要求时为 1，有要求但没有教育经历时为 0
func educationScore(entries []types.EducationEntry, req types.EducationRequirement) float64 {
	degree, field := strings.TrimSpace(req.RequiredDegree), strings.TrimSpace(req.PreferredField)
	if degree == "" && field == "" {
		return 1
	}
	best := 0.0
	for _, e := range entries {
		score := educationMismatch
		if degreeSatisfied(e, degree) {
			score = educationDegreeOnly
			if field == "" || containsEither(e.Field, field) || containsEither(e.Degree, field) {
				score = educationFull
			}
		}
		best = math.Max(best, score)
	}
	return best
}

// degreeSatisfied 学位文字互相包含，或学位等级不低于要求
func degreeSatisfied(e types.EducationEntry, required string) bool {
	if required == "" {
		return true
	}
	if containsEither(e.Degree, required) {
		return true
	}
	want := degreeLevel(required)
	return want > 0 && degreeLevel(e.Degree) >= want
}

// projectScore 技术栈与岗位技能有交集的项目占比；没有项目时为 0，岗位未列技能时每个项目都算相关
func projectScore(projects []types.ProjectEntry, jobSkills []string) float64 {
	if len(projects) == 0 {
		return 0
	}
	skills := cleanList(jobSkills)
	if len(skills) == 0 {
		return 1
	}
	relevant := 0
	for _, p := range projects {
		if overlapsAny(p.Technologies, skills) {
			relevant++
		}
	}
	return float64(relevant) / float64(len(projects))
}

func overlapsAny(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if containsEither(x, y) {
				return true
			}
		}
	}
	return false
}

// containsEither 忽略大小写，任一方包含另一方；空串不匹配
func containsEither(a, b string) bool {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
