package parser

import (
	"regexp"
	"strings"

	"resume-match-go/internal/types"
)

const (
	// 超过该长度的命中行直接作为条目，否则拼接下一行作为描述
	longLineThreshold = 40
	minEntrySummary   = 5
)

var (
	roleSignalRe = regexp.MustCompile(`(?i)\b(?:internships?|intern|experience|contributor|trainee|apprentice(?:ship)?)\b`)
	atSplitRe    = regexp.MustCompile(`(?i)\s+(?:at|@)\s+`)
	fieldSepRe   = regexp.MustCompile(`\s*(?:\||,|\s[-–—]\s|\t)\s*`)
	emptyParenRe = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	fieldTrimSet = " \t|,-–—:;"
)

var experienceStrategies = []Strategy[types.ExperienceEntry]{
	{Name: "role-signal-lines", Run: experienceFromRoleSignals},
	{Name: "subsections", Run: experienceFromSubsections},
	{Name: "date-or-title-lines", Run: experienceFromDatedLines},
}

// ExtractExperience 从经历章节抽取工作经历
func ExtractExperience(section []types.Line) []types.ExperienceEntry {
	out, _ := runStrategies(experienceStrategies, extractionInput{Section: section})
	return out
}

func experienceFromRoleSignals(in extractionInput) ([]types.ExperienceEntry, bool) {
	var entries []types.ExperienceEntry
	for i := 0; i < len(in.Section); i++ {
		text := stripBullet(in.Section[i].Text)
		if !roleSignalRe.MatchString(text) {
			continue
		}
		e := parseRoleLine(text)
		if len(text) >= longLineThreshold {
			e.Description = text
		} else if i+1 < len(in.Section) {
			e.Description = stripBullet(in.Section[i+1].Text)
			i++
		}
		entries = append(entries, e)
	}
	entries = finalizeExperience(entries)
	return entries, len(entries) > 0
}

func experienceFromSubsections(in extractionInput) ([]types.ExperienceEntry, bool) {
	var entries []types.ExperienceEntry
	for _, sub := range DivideSubsections(in.Section) {
		e := parseRoleLine(sub.Title)
		desc := sub.Lines
		// 日期或公司常出现在标题的下一行，例如 "Acme Corp | 2019 - 2021"
		if len(desc) > 0 && !isBullet(desc[0]) {
			if start, end, rest, ok := findDateRange(desc[0]); ok && e.StartDate == "" {
				e.StartDate, e.EndDate = start, end
				if rest = strings.Trim(emptyParenRe.ReplaceAllString(rest, ""), fieldTrimSet); e.Company == "" && rest != "" {
					e.Company, e.Location = splitCompanyLocation(rest)
				}
				desc = desc[1:]
			}
		}
		e.Description = Subsection{Lines: desc}.Description()
		entries = append(entries, e)
	}
	entries = finalizeExperience(entries)
	return entries, len(entries) > 0
}

func experienceFromDatedLines(in extractionInput) ([]types.ExperienceEntry, bool) {
	var entries []types.ExperienceEntry
	for _, l := range in.Section {
		text := stripBullet(l.Text)
		if !monthYearRe.MatchString(text) && !dateRangeRe.MatchString(text) && !jobTitleRe.MatchString(text) {
			continue
		}
		e := parseRoleLine(text)
		e.Description = text
		entries = append(entries, e)
	}
	entries = finalizeExperience(entries)
	return entries, len(entries) > 0
}

// parseRoleLine 从一行中解析职位、公司、地点和起止日期
func parseRoleLine(text string) types.ExperienceEntry {
	var e types.ExperienceEntry
	rest := stripBullet(text)
	if start, end, remaining, ok := findDateRange(rest); ok {
		e.StartDate, e.EndDate = start, end
		rest = emptyParenRe.ReplaceAllString(remaining, "")
	}
	rest = strings.Trim(rest, fieldTrimSet)
	if rest == "" {
		return e
	}

	if parts := atSplitRe.Split(rest, 2); len(parts) == 2 {
		e.Title = strings.Trim(parts[0], fieldTrimSet)
		e.Company, e.Location = splitCompanyLocation(parts[1])
		return e
	}

	parts := splitFields(rest)
	titleIdx := 0
	for i, p := range parts {
		if jobTitleRe.MatchString(p) {
			titleIdx = i
			break
		}
	}
	e.Title = parts[titleIdx]
	others := append(append([]string(nil), parts[:titleIdx]...), parts[titleIdx+1:]...)
	if len(others) > 0 {
		e.Company = others[0]
	}
	if len(others) > 1 {
		e.Location = strings.Join(others[1:], ", ")
	}
	return e
}

func splitCompanyLocation(s string) (company, location string) {
	parts := splitFields(s)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], ", ")
}

func splitFields(s string) []string {
	var out []string
	for _, p := range fieldSepRe.Split(s, -1) {
		if p = strings.Trim(p, fieldTrimSet); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// finalizeExperience 去重并丢弃内容过短的条目
func finalizeExperience(entries []types.ExperienceEntry) []types.ExperienceEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]types.ExperienceEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsEmpty() {
			continue
		}
		summary := strings.TrimSpace(e.Title + e.Company + e.Description)
		if len(summary) < minEntrySummary {
			continue
		}
		key := strings.ToLower(strings.Join([]string{e.Title, e.Company, e.StartDate, e.Description}, "|"))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}
