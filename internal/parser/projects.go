package parser

import (
	"regexp"
	"strings"

	"resume-match-go/internal/types"
)

const (
	lastResortMinLen   = 10
	lastResortMaxItems = 3
	projectNameMaxLen  = 60
	projectNameWords   = 6
)

var (
	techListRe = regexp.MustCompile(`(?i)\b(?:tech(?:nologies)?|tech stack|stack|tools|built with|using)\s*[:\-–]\s*(.+)$`)
	nameSepRe  = regexp.MustCompile(`\s*(?::|\||\s[-–—]\s)\s*`)
)

var projectStrategies = []Strategy[types.ProjectEntry]{
	{Name: "build-verb-lines", Run: projectsFromTriggerLines},
	{Name: "subsections", Run: projectsFromSubsections},
	{Name: "bullet-or-repo-lines", Run: projectsFromBulletLines},
	{Name: "first-lines", Run: projectsFromFirstLines},
}

// ExtractProjects 从项目章节抽取项目
func ExtractProjects(section []types.Line) []types.ProjectEntry {
	out, _ := runStrategies(projectStrategies, extractionInput{Section: section})
	return out
}

func projectsFromTriggerLines(in extractionInput) ([]types.ProjectEntry, bool) {
	var entries []types.ProjectEntry
	for i := 0; i < len(in.Section); i++ {
		text := stripBullet(in.Section[i].Text)
		if !buildVerbRe.MatchString(text) && !projectNoun.MatchString(text) {
			continue
		}
		var p types.ProjectEntry
		if len(text) >= longLineThreshold {
			p = types.ProjectEntry{Name: projectName(text), Description: text}
		} else {
			p = types.ProjectEntry{Name: text}
			if i+1 < len(in.Section) {
				p.Description = stripBullet(in.Section[i+1].Text)
				i++
			}
		}
		entries = append(entries, enrichProject(p))
	}
	entries = finalizeProjects(entries)
	return entries, len(entries) > 0
}

func projectsFromSubsections(in extractionInput) ([]types.ProjectEntry, bool) {
	var entries []types.ProjectEntry
	for _, sub := range DivideSubsections(in.Section) {
		name := sub.Title
		var techs []string
		// "Resume Parser | Go, Docker" 标题中竖线后为技术栈
		if before, after, ok := strings.Cut(name, "|"); ok {
			name = strings.TrimSpace(before)
			techs = splitList(after)
		}
		p := types.ProjectEntry{Name: name, Description: sub.Description(), Technologies: techs}
		entries = append(entries, enrichProject(p))
	}
	entries = finalizeProjects(entries)
	return entries, len(entries) > 0
}

func projectsFromBulletLines(in extractionInput) ([]types.ProjectEntry, bool) {
	var entries []types.ProjectEntry
	for _, l := range in.Section {
		if !isBullet(l.Text) && !githubRefRe.MatchString(l.Text) && urlRe.FindString(l.Text) == "" {
			continue
		}
		text := stripBullet(l.Text)
		entries = append(entries, enrichProject(types.ProjectEntry{Name: projectName(text), Description: text}))
	}
	entries = finalizeProjects(entries)
	return entries, len(entries) > 0
}

func projectsFromFirstLines(in extractionInput) ([]types.ProjectEntry, bool) {
	var entries []types.ProjectEntry
	for _, l := range in.Section {
		text := stripBullet(l.Text)
		if len(text) <= lastResortMinLen {
			continue
		}
		entries = append(entries, enrichProject(types.ProjectEntry{Name: projectName(text), Description: text}))
		if len(entries) == lastResortMaxItems {
			break
		}
	}
	entries = finalizeProjects(entries)
	return entries, len(entries) > 0
}

// projectName 从描述行推断项目名：冒号、竖线或破折号前的部分，否则取前几个词
func projectName(text string) string {
	if parts := nameSepRe.Split(text, 2); len(parts) == 2 && len(parts[0]) > 0 && len(parts[0]) <= projectNameMaxLen {
		return strings.TrimSpace(parts[0])
	}
	words := strings.Fields(text)
	if len(words) > projectNameWords {
		words = words[:projectNameWords]
	}
	return strings.TrimRight(strings.Join(words, " "), ".,;")
}

// enrichProject 补充技术栈和链接
func enrichProject(p types.ProjectEntry) types.ProjectEntry {
	combined := p.Name + "\n" + p.Description
	var techs []string
	techs = append(techs, p.Technologies...)
	for _, line := range strings.Split(combined, "\n") {
		if m := techListRe.FindStringSubmatch(line); m != nil {
			techs = append(techs, splitList(m[1])...)
		}
	}
	techs = append(techs, findTechnologies(combined)...)
	p.Technologies = NormalizeSkills(techs)
	if p.URL == "" {
		p.URL = firstURL(combined)
	}
	return p
}

func finalizeProjects(entries []types.ProjectEntry) []types.ProjectEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]types.ProjectEntry, 0, len(entries))
	for _, p := range entries {
		p.Name = strings.TrimSpace(p.Name)
		p.Description = strings.TrimSpace(p.Description)
		if len(p.Name+p.Description) < minEntrySummary {
			continue
		}
		key := strings.ToLower(p.Name + "|" + p.Description)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if p.Technologies == nil {
			p.Technologies = []string{}
		}
		out = append(out, p)
	}
	return out
}
