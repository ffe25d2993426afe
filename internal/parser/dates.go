package parser

import (
	"regexp"
	"strconv"
	"strings"

	"resume-match-go/internal/types"
)

const (
	dateTokenPattern = `(?:` + monthPattern + `,?\s+(?:19|20)\d{2}` +
		`|(?:19|20)\d{2}[./-](?:0?[1-9]|1[0-2])\b` +
		`|(?:0?[1-9]|1[0-2])[./](?:19|20)\d{2}` +
		`|(?:19|20)\d{2})`
	presentPattern = `present|current|now|ongoing|till date|to date|today`
)

var (
	dateRangeRe = regexp.MustCompile(`(?i)(` + dateTokenPattern + `)\s*(?:-|–|—|~|to|until)\s*(` + dateTokenPattern + `|` + presentPattern + `)`)
	dateTokenRe = regexp.MustCompile(`(?i)` + dateTokenPattern)
	presentRe   = regexp.MustCompile(`(?i)^(?:` + presentPattern + `)$`)
	monthNames  = map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}
	digitsRe = regexp.MustCompile(`\d+`)
)

// findDateRange 查找文本中的日期区间，返回规范化的起止日期（结束为空表示至今）
// 以及去掉区间后的剩余文本
func findDateRange(text string) (start, end, rest string, ok bool) {
	loc := dateRangeRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", "", text, false
	}
	start = normalizeDate(text[loc[2]:loc[3]])
	end = normalizeDate(text[loc[4]:loc[5]])
	rest = strings.TrimSpace(text[:loc[0]] + " " + text[loc[1]:])
	return start, end, rest, start != ""
}

// normalizeDate 把 "Jan 2020"、"2020/01"、"01/2020"、"2020" 等写法转成 "YYYY" 或 "YYYY-MM"；
// "present" 一类返回空字符串
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || presentRe.MatchString(s) {
		return ""
	}
	if y, m, ok := types.ParseYearMonth(s); ok {
		return types.FormatYearMonth(y, m)
	}

	lower := strings.ToLower(s)
	month := 0
	if len(lower) >= 3 {
		month = monthNames[lower[:3]]
	}
	nums := digitsRe.FindAllString(s, -1)
	year := 0
	for _, n := range nums {
		v, _ := strconv.Atoi(n)
		if len(n) == 4 && v >= 1900 && v <= 2100 {
			year = v
		} else if month == 0 && v >= 1 && v <= 12 {
			month = v
		}
	}
	if year == 0 {
		return ""
	}
	return types.FormatYearMonth(year, month)
}

// findSingleDates 返回文本中所有独立日期（规范化后）
func findSingleDates(text string) []string {
	var out []string
	for _, tok := range dateTokenRe.FindAllString(text, -1) {
		if d := normalizeDate(tok); d != "" {
			out = append(out, d)
		}
	}
	return out
}
