package parser

import (
	"regexp"
	"sort"
	"strings"

	"resume-match-go/internal/types"
)

// headerSynonyms 章节标题同义词表（大写）
var headerSynonyms = map[types.SectionType][]string{
	types.SectionSkills: {
		"SKILLS", "SKILL SET", "SKILLSET", "TECHNICAL SKILLS", "TECH SKILLS", "KEY SKILLS",
		"CORE SKILLS", "CORE COMPETENCIES", "COMPETENCIES", "TECHNOLOGIES", "TECHNICAL PROFICIENCIES",
		"PROFESSIONAL SKILLS", "TOOLS AND TECHNOLOGIES", "TOOLS & TECHNOLOGIES", "TECH STACK", "STACK",
		"EXPERTISE", "AREAS OF EXPERTISE", "TECHNICAL EXPERTISE", "PROGRAMMING LANGUAGES",
	},
	types.SectionExperience: {
		"EXPERIENCE", "WORK EXPERIENCE", "PROFESSIONAL EXPERIENCE", "EMPLOYMENT", "EMPLOYMENT HISTORY",
		"WORK HISTORY", "CAREER HISTORY", "RELEVANT EXPERIENCE", "INTERNSHIPS", "INTERNSHIP",
		"INTERNSHIP EXPERIENCE", "PROFESSIONAL BACKGROUND", "CAREER", "POSITIONS HELD",
	},
	types.SectionProjects: {
		"PROJECTS", "PROJECT", "PERSONAL PROJECTS", "ACADEMIC PROJECTS", "KEY PROJECTS",
		"PROJECT EXPERIENCE", "SIDE PROJECTS", "RELEVANT PROJECTS", "SELECTED PROJECTS",
		"OPEN SOURCE", "OPEN SOURCE CONTRIBUTIONS", "PORTFOLIO",
	},
	types.SectionEducation: {
		"EDUCATION", "EDUCATIONAL BACKGROUND", "ACADEMIC BACKGROUND", "ACADEMICS",
		"ACADEMIC QUALIFICATIONS", "QUALIFICATIONS", "EDUCATION AND TRAINING", "EDUCATION & TRAINING",
	},
	types.SectionOther: {
		"SUMMARY", "PROFESSIONAL SUMMARY", "PROFILE", "OBJECTIVE", "CAREER OBJECTIVE", "ABOUT ME",
		"CERTIFICATIONS", "CERTIFICATES", "LICENSES", "AWARDS", "HONORS", "HONORS AND AWARDS",
		"ACHIEVEMENTS", "PUBLICATIONS", "HOBBIES", "INTERESTS", "HOBBIES AND INTERESTS",
		"REFERENCES", "CONTACT", "CONTACT INFORMATION", "PERSONAL DETAILS", "VOLUNTEER EXPERIENCE",
		"VOLUNTEERING", "ACTIVITIES", "EXTRACURRICULAR ACTIVITIES", "LEADERSHIP",
	},
}

type headerEntry struct {
	text    string
	section types.SectionType
}

// 按长度降序，保证 "WORK EXPERIENCE" 先于 "EXPERIENCE" 被匹配
var headerTable = buildHeaderTable()

func buildHeaderTable() []headerEntry {
	var table []headerEntry
	for section, words := range headerSynonyms {
		for _, w := range words {
			table = append(table, headerEntry{text: w, section: section})
		}
	}
	sort.Slice(table, func(i, j int) bool {
		if len(table[i].text) != len(table[j].text) {
			return len(table[i].text) > len(table[j].text)
		}
		return table[i].text < table[j].text
	})
	return table
}

// looseHeaderKeywords 宽松模式下标题中可能出现的关键词
var looseHeaderKeywords = []struct {
	keyword string
	section types.SectionType
}{
	{"SKILL", types.SectionSkills},
	{"COMPETENC", types.SectionSkills},
	{"TECHNOLOG", types.SectionSkills},
	{"EXPERIENCE", types.SectionExperience},
	{"EMPLOYMENT", types.SectionExperience},
	{"WORK", types.SectionExperience},
	{"PROJECT", types.SectionProjects},
	{"EDUCATION", types.SectionEducation},
	{"ACADEMIC", types.SectionEducation},
	{"QUALIFICATION", types.SectionEducation},
}

// rescueKeywords 无标题文本中提示章节的强主题词
var rescueKeywords = []struct {
	re      *regexp.Regexp
	section types.SectionType
}{
	{regexp.MustCompile(`(?i)\bprojects?\b`), types.SectionProjects},
	{regexp.MustCompile(`(?i)\binternships?\b`), types.SectionExperience},
	{regexp.MustCompile(`(?i)\btraining\b`), types.SectionExperience},
}

const (
	looseHeaderMaxLen  = 50
	rescueLineMaxLen   = 80
	headerMaxWords     = 5
	headerDecorChars   = "#*=_-~:|•·> \t"
	rescueSentenceEnds = ".!?"
)

// DetectSectionAnchors 扫描行序列，返回按位置排序且去重的章节锚点。
// 先只做精确匹配；全文无命中时再做宽松匹配和无标题章节补救。
// 独立标题行打开的章节内，类型不同的 "Xxx: ..." 行视为该章节的内容
// （例如项目中的 "Technologies: Go, React"）。
func DetectSectionAnchors(lines []types.Line) []types.SectionAnchor {
	var anchors []types.SectionAnchor
	var block types.SectionType
	for _, l := range lines {
		section, inline, ok := matchHeader(l.Text)
		if !ok {
			continue
		}
		if inline == "" {
			block = section
		} else if block != "" && block != section {
			continue
		}
		anchors = append(anchors, types.SectionAnchor{Index: l.Index, Type: section, Inline: inline})
	}
	if len(anchors) == 0 {
		for _, l := range lines {
			if section, ok := matchLooseHeader(l.Text); ok {
				anchors = append(anchors, types.SectionAnchor{Index: l.Index, Type: section})
				continue
			}
			if section, ok := matchRescueLine(l.Text); ok {
				anchors = append(anchors, types.SectionAnchor{Index: l.Index, Type: section, Inline: l.Text})
			}
		}
	}
	return normalizeAnchors(anchors)
}

// hasExtractableAnchor 是否至少有一个参与抽取的章节
func hasExtractableAnchor(anchors []types.SectionAnchor) bool {
	for _, a := range anchors {
		switch a.Type {
		case types.SectionSkills, types.SectionExperience, types.SectionProjects, types.SectionEducation:
			return true
		}
	}
	return false
}

// matchHeader 精确匹配：整行等于同义词，或同义词后紧跟冒号/空格。
// 冒号后的内容作为 inline 返回；空格前缀只接受形似标题的短行。
func matchHeader(text string) (types.SectionType, string, bool) {
	trimmed := strings.Trim(stripBullet(text), headerDecorChars)
	if trimmed == "" {
		return "", "", false
	}
	upper := strings.ToUpper(trimmed)

	for _, h := range headerTable {
		if upper == h.text {
			return h.section, "", true
		}
		if !strings.HasPrefix(upper, h.text) || len(upper) == len(h.text) {
			continue
		}
		rest := upper[len(h.text):]
		if len(trimmed) == len(upper) {
			rest = trimmed[len(h.text):]
		}
		switch {
		case strings.HasPrefix(rest, ":"):
			return h.section, strings.TrimSpace(rest[1:]), true
		case strings.HasPrefix(rest, " ") && looksLikeHeader(trimmed):
			tail := strings.TrimSpace(rest)
			if strings.HasPrefix(tail, ":") || strings.HasPrefix(tail, "-") || strings.HasPrefix(tail, "–") {
				return h.section, strings.TrimSpace(tail[1:]), true
			}
			return h.section, "", true
		}
	}
	return "", "", false
}

// looksLikeHeader 短、无句末标点，且全大写或首字母大写
func looksLikeHeader(s string) bool {
	if wordCount(s) > headerMaxWords || strings.ContainsAny(s[len(s)-1:], rescueSentenceEnds) {
		return false
	}
	if isAllCaps(s) {
		return true
	}
	for _, w := range strings.Fields(s) {
		r := []rune(w)[0]
		if r >= 'a' && r <= 'z' && !isConnector(w) {
			return false
		}
	}
	return true
}

func isConnector(w string) bool {
	switch strings.ToLower(w) {
	case "and", "&", "of", "the", "in", "for", "/":
		return true
	}
	return false
}

// matchLooseHeader 宽松匹配：<50 字符的全大写行包含标题关键词
func matchLooseHeader(text string) (types.SectionType, bool) {
	trimmed := strings.Trim(text, headerDecorChars)
	if len(trimmed) == 0 || len(trimmed) >= looseHeaderMaxLen || !isAllCaps(trimmed) {
		return "", false
	}
	for _, k := range looseHeaderKeywords {
		if strings.Contains(trimmed, k.keyword) {
			return k.section, true
		}
	}
	return "", false
}

// matchRescueLine 在非标题形态的行中寻找强主题词
func matchRescueLine(text string) (types.SectionType, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || len(trimmed) > rescueLineMaxLen || strings.ContainsAny(trimmed[len(trimmed)-1:], rescueSentenceEnds) {
		return "", false
	}
	for _, k := range rescueKeywords {
		if k.re.MatchString(trimmed) {
			return k.section, true
		}
	}
	return "", false
}

// normalizeAnchors 按位置排序，同一行只保留第一个锚点
func normalizeAnchors(anchors []types.SectionAnchor) []types.SectionAnchor {
	sort.SliceStable(anchors, func(i, j int) bool { return anchors[i].Index < anchors[j].Index })
	out := anchors[:0]
	for i, a := range anchors {
		if i > 0 && a.Index == out[len(out)-1].Index {
			continue
		}
		out = append(out, a)
	}
	return out
}
