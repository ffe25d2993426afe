package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-match-go/internal/types"
)

const (
	skillMinLen   = 2
	skillMaxLen   = 30
	skillMaxWords = 3
)

var (
	categoryColonRe  = regexp.MustCompile(`^([A-Za-z][\w &/+.()-]{0,40}?)\s*:\s*(.+)$`)
	parentheticalRe  = regexp.MustCompile(`\s*\([^)]*\)?\s*$`)
	leadingFillerRe  = regexp.MustCompile(`(?i)^(?:and|or|also|including|etc\.?)\s+`)
	trailingFillerRe = regexp.MustCompile(`(?i)\s+(?:etc\.?|and more)$`)
	headerKeywordRe  = regexp.MustCompile(`(?i)\b(?:skills?|experience|projects?|education|summary|competenc\w*|qualifications?|technologies)\b`)
)

var skillStrategies = []Strategy[string]{
	{Name: "section-lines", Run: skillsFromSection},
	{Name: "vocabulary-scan", Run: skillsFromVocabulary},
}

// ExtractSkills 从技能章节抽取技能；章节中找不到时扫描全文的已知技术名词
func ExtractSkills(section, all []types.Line) []string {
	out, _ := runStrategies(skillStrategies, extractionInput{Section: section, All: all})
	return out
}

// skillsFromSection 按行格式分支：分类冒号列表、逗号列表、单个短语
func skillsFromSection(in extractionInput) ([]string, bool) {
	var tokens []string
	for _, l := range in.Section {
		text := stripBullet(l.Text)
		switch {
		case categoryColonRe.MatchString(text):
			m := categoryColonRe.FindStringSubmatch(text)
			tokens = append(tokens, splitList(m[2])...)
		case strings.ContainsAny(text, ",;|•·"):
			tokens = append(tokens, splitList(text)...)
		case wordCount(text) <= skillMaxWords:
			tokens = append(tokens, text)
		}
	}
	out := NormalizeSkills(tokens)
	return out, len(out) > 0
}

// skillsFromVocabulary 逐行寻找已知技术名词，命中的行按分隔符切分，保留含技术名词的片段；
// 切不出合格片段时直接使用识别到的技术名词
func skillsFromVocabulary(in extractionInput) ([]string, bool) {
	var tokens []string
	for _, l := range in.All {
		techs := findTechnologies(l.Text)
		if len(techs) == 0 {
			continue
		}
		text := stripBullet(l.Text)
		if m := categoryColonRe.FindStringSubmatch(text); m != nil {
			text = m[2]
		}
		found := false
		for _, part := range splitList(text) {
			c := cleanSkillToken(part)
			if validSkill(c) && mentionsTechnology(c) {
				tokens = append(tokens, c)
				found = true
			}
		}
		if !found {
			tokens = append(tokens, techs...)
		}
	}
	out := NormalizeSkills(tokens)
	return out, len(out) > 0
}

// NormalizeSkills 清洗、过滤并去重技能：每项 2-30 个字符、不超过 3 个词，
// 且不是标题词或明显的非技能词。大小写保持首次出现的写法。
func NormalizeSkills(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if c := cleanSkillToken(t); validSkill(c) {
			out = append(out, c)
		}
	}
	return dedupeFold(out)
}

func cleanSkillToken(t string) string {
	t = strings.TrimSpace(stripBullet(t))
	t = leadingFillerRe.ReplaceAllString(t, "")
	t = trailingFillerRe.ReplaceAllString(t, "")
	if strings.Contains(t, "(") && !strings.HasPrefix(t, "(") {
		t = parentheticalRe.ReplaceAllString(t, "")
	}
	t = strings.Trim(t, " \t:-–—*\"'`")
	t = strings.TrimRight(t, ".")
	return strings.Join(strings.Fields(t), " ")
}

func validSkill(t string) bool {
	n := utf8.RuneCountInString(t)
	if n < skillMinLen || n > skillMaxLen || wordCount(t) > skillMaxWords {
		return false
	}
	if strings.Contains(t, "://") || strings.HasPrefix(t, "/") || strings.HasPrefix(t, "www.") {
		return false
	}
	if !strings.ContainsFunc(t, unicode.IsLetter) {
		return false
	}
	if yearRe.MatchString(t) && dateTokenRe.FindString(t) == strings.TrimSpace(t) {
		return false
	}
	return !isNonSkillWord(t) && !isHeaderLike(t)
}

// isHeaderLike 与标题表完全一致，或是包含标题关键词的多词全大写短语
func isHeaderLike(t string) bool {
	upper := strings.ToUpper(strings.TrimSpace(t))
	for _, h := range headerTable {
		if upper == h.text {
			return true
		}
	}
	return isAllCaps(t) && wordCount(t) >= 2 && headerKeywordRe.MatchString(t)
}
