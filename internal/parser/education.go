package parser

import (
	"regexp"
	"strings"

	"resume-match-go/internal/types"
)

// 未遇到下一个标题时，教育窗口最多包含的行数
const educationWindowMax = 15

type degreePattern struct {
	re   *regexp.Regexp
	name string
}

// degreePatterns 学位写法到规范名称；name 为空时使用 bachelorMasterRe 的展开结果
var degreePatterns = []degreePattern{
	{regexp.MustCompile(`(?i)\bph\.?\s?d\b\.?|\bdoctor(?:ate| of philosophy)\b`), "PhD"},
	{regexp.MustCompile(`\bM\.?B\.?A\b\.?`), "MBA"},
	{regexp.MustCompile(`(?i)\b(?:bachelor|master)(?:'s|s)?(?:\s+(?:of|in)\s+(?:science|arts|engineering|technology|business administration|computer applications|fine arts))?`), ""},
	{regexp.MustCompile(`\bB\.?\s?Sc\b\.?|\bB\.S\.?|\bBS\b`), "Bachelor of Science"},
	{regexp.MustCompile(`\bB\.A\.|\bBA\b`), "Bachelor of Arts"},
	{regexp.MustCompile(`(?i)\bB\.?\s?Tech\b\.?`), "Bachelor of Technology"},
	{regexp.MustCompile(`\bB\.E\.|\bBE\b`), "Bachelor of Engineering"},
	{regexp.MustCompile(`\bM\.?\s?Sc\b\.?|\bM\.S\.?`), "Master of Science"},
	{regexp.MustCompile(`\bM\.A\.`), "Master of Arts"},
	{regexp.MustCompile(`(?i)\bM\.?\s?Tech\b\.?`), "Master of Technology"},
	{regexp.MustCompile(`(?i)\bassociate(?:'s)?\s+(?:degree|of\s+(?:science|arts|applied science))\b`), "Associate"},
	{regexp.MustCompile(`(?i)\bdiploma\b`), "Diploma"},
}

var (
	fieldAfterRe = regexp.MustCompile(`^[\s,]*(?:in|of|[-–:])\s+([A-Z][A-Za-z&]*(?:\s+(?:and\s+|&\s+)?[A-Z][A-Za-z&]*){0,4})`)
	knownFields  = []string{
		"Computer Science", "Software Engineering", "Computer Engineering", "Information Technology",
		"Information Systems", "Electrical Engineering", "Electronics", "Mechanical Engineering",
		"Civil Engineering", "Data Science", "Artificial Intelligence", "Mathematics", "Statistics",
		"Physics", "Chemistry", "Biology", "Economics", "Finance", "Business Administration",
		"Business", "Accounting", "Marketing", "Psychology", "Design",
	}
	institutionNameRe = regexp.MustCompile(`(?:[A-Z][A-Za-z.&'-]*\s+){0,4}(?:University|College|Institute|School|Academy|Polytechnic)(?:\s+(?:of|for)\s+[A-Z][A-Za-z.&'-]*(?:\s+(?:and\s+)?[A-Z][A-Za-z.&'-]*){0,3})?`)
	gpaRe             = regexp.MustCompile(`(?i)\b(?:c?gpa|grade point average)\s*[:\-]?\s*(\d(?:\.\d{1,2})?)(?:\s*/\s*(\d{1,2}(?:\.\d{1,2})?))?`)
	bachelorMasterRe  = regexp.MustCompile(`(?i)^(bachelor|master)(?:'s|s)?(?:\s+(of|in)\s+(.+))?$`)
)

// ExtractEducation 与章节切分无关：在全文中重新定位教育标题窗口并抽取学历。
// 找不到教育标题时扫描全文中含学位或院校的行。
func ExtractEducation(raw string) []types.EducationEntry {
	lines := NormalizeLines(raw)
	window := educationWindow(lines)

	var entries []types.EducationEntry
	var cur *types.EducationEntry
	flush := func() {
		if cur != nil {
			entries = append(entries, *cur)
			cur = nil
		}
	}

	for _, text := range window {
		text = stripBullet(text)
		degree, degreeEnd := findDegree(text)
		institution := findInstitution(text, degreeEnd)
		if cur != nil && ((degree != "" && cur.Degree != "") || (institution != "" && cur.Institution != "")) {
			flush()
		}
		if cur == nil {
			cur = &types.EducationEntry{}
		}
		if degree != "" {
			cur.Degree = degree
			if field := findField(text, degreeEnd); field != "" {
				cur.Field = field
			}
		}
		if cur.Field == "" {
			cur.Field = findKnownField(text)
		}
		if institution != "" {
			cur.Institution = institution
		}
		if start, end, _, ok := findDateRange(text); ok {
			cur.StartDate, cur.EndDate = start, end
		} else if dates := findSingleDates(text); len(dates) > 0 && cur.EndDate == "" {
			if len(dates) > 1 {
				cur.StartDate = dates[0]
			}
			cur.EndDate = dates[len(dates)-1]
		}
		if m := gpaRe.FindStringSubmatch(text); m != nil {
			cur.GPA = m[1]
			if m[2] != "" {
				cur.GPA += "/" + m[2]
			}
		}
	}
	flush()
	return finalizeEducation(entries)
}

// educationWindow 返回教育标题之后、下一个标题之前的行（最多 educationWindowMax 行）
func educationWindow(lines []types.Line) []string {
	for i, l := range lines {
		section, inline, ok := matchHeader(l.Text)
		if !ok {
			section, ok = matchLooseHeader(l.Text)
		}
		if !ok || section != types.SectionEducation {
			continue
		}
		var window []string
		if inline != "" {
			window = append(window, inline)
		}
		for _, next := range lines[i+1:] {
			if _, nextInline, isHeader := matchHeader(next.Text); isHeader && nextInline == "" {
				break
			}
			if len(window) >= educationWindowMax {
				break
			}
			window = append(window, next.Text)
		}
		return window
	}

	// 无教育标题：学位词还需伴随年份、专业或GPA，避免把 "Scrum Master" 之类当作学历
	var window []string
	for _, l := range lines {
		if institutionNameRe.MatchString(l.Text) || (hasDegree(l.Text) && hasAcademicContext(l.Text)) {
			window = append(window, l.Text)
		}
	}
	return window
}

func hasDegree(text string) bool {
	d, _ := findDegree(text)
	return d != ""
}

func hasAcademicContext(text string) bool {
	return yearRe.MatchString(text) || findKnownField(text) != "" || gpaRe.MatchString(text)
}

// findDegree 返回规范化的学位名以及匹配结束位置
func findDegree(text string) (string, int) {
	bestStart, bestEnd, name := -1, 0, ""
	for _, p := range degreePatterns {
		loc := p.re.FindStringIndex(text)
		if loc == nil || (bestStart >= 0 && loc[0] >= bestStart) {
			continue
		}
		bestStart, bestEnd = loc[0], loc[1]
		name = p.name
		if name == "" {
			name = expandBachelorMaster(text[loc[0]:loc[1]])
		}
	}
	return name, bestEnd
}

func expandBachelorMaster(s string) string {
	m := bachelorMasterRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return strings.TrimSpace(s)
	}
	level := strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:])
	if m[3] == "" {
		return level
	}
	return level + " of " + titleWords(m[3])
}

func titleWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if isConnector(w) {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func findField(text string, degreeEnd int) string {
	if degreeEnd <= 0 || degreeEnd > len(text) {
		return ""
	}
	if m := fieldAfterRe.FindStringSubmatch(text[degreeEnd:]); m != nil {
		field := strings.TrimSpace(m[1])
		// 字段后紧跟院校名时截断，例如 "Computer Science Stanford University"
		if loc := institutionNameRe.FindStringIndex(field); loc != nil {
			field = strings.TrimSpace(field[:loc[0]])
		}
		if field != "" {
			return field
		}
	}
	return findKnownField(text[degreeEnd:])
}

func findKnownField(text string) string {
	lower := strings.ToLower(text)
	best, bestPos := "", -1
	for _, f := range knownFields {
		if pos := strings.Index(lower, strings.ToLower(f)); pos >= 0 && (bestPos < 0 || pos < bestPos || (pos == bestPos && len(f) > len(best))) {
			best, bestPos = f, pos
		}
	}
	return best
}

// findInstitution 返回院校名；若匹配与学位/专业部分重叠，只保留其后的文字
func findInstitution(text string, consumed int) string {
	for _, loc := range institutionNameRe.FindAllStringIndex(text, -1) {
		start := loc[0]
		if start < consumed {
			if loc[1] <= consumed {
				continue
			}
			start = consumed
		}
		name := strings.Trim(text[start:loc[1]], fieldTrimSet)
		name = trimLeadingFieldWords(name)
		if name != "" {
			return name
		}
	}
	return ""
}

// trimLeadingFieldWords 去掉院校名前误吞的专业词，例如 "Science Stanford University"
func trimLeadingFieldWords(name string) string {
	lower := strings.ToLower(name)
	for _, f := range knownFields {
		lf := strings.ToLower(f)
		if strings.HasPrefix(lower, lf+" ") {
			rest := strings.TrimSpace(name[len(f):])
			if institutionNameRe.MatchString(rest) {
				return trimLeadingFieldWords(rest)
			}
		}
	}
	for _, w := range []string{"Science", "Arts", "Engineering", "Technology"} {
		if rest, ok := strings.CutPrefix(name, w+" "); ok && institutionNameRe.MatchString(rest) {
			return trimLeadingFieldWords(rest)
		}
	}
	return name
}

func finalizeEducation(entries []types.EducationEntry) []types.EducationEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]types.EducationEntry, 0, len(entries))
	for _, e := range entries {
		if e.Institution == "" && e.Degree == "" {
			continue
		}
		e.Name = educationName(e)
		key := strings.ToLower(e.Name + "|" + e.StartDate + "|" + e.EndDate)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

func educationName(e types.EducationEntry) string {
	var b strings.Builder
	b.WriteString(e.Degree)
	if e.Field != "" {
		if b.Len() > 0 {
			b.WriteString(" in ")
		}
		b.WriteString(e.Field)
	}
	if e.Institution != "" {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Institution)
	}
	return b.String()
}
