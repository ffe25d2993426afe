package parser

import (
	"regexp"

	"resume-match-go/internal/types"
)

// FeatureRule 内容分类规则，命中时为对应章节类型累加 Weight
type FeatureRule struct {
	Name    string
	Pattern *regexp.Regexp
	Weight  int
}

func rule(name string, weight int, pattern string) FeatureRule {
	return FeatureRule{Name: name, Pattern: regexp.MustCompile(pattern), Weight: weight}
}

const monthPattern = `(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?`

var (
	monthYearRe  = regexp.MustCompile(`(?i)\b` + monthPattern + `,?\s+(?:19|20)\d{2}\b`)
	yearRe       = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	commaListRe  = regexp.MustCompile(`^[^,;]{1,30}(?:[,;]\s*[^,;]{1,30}){2,}$`)
	colonListRe  = regexp.MustCompile(`^[A-Za-z][\w &/+.-]{1,30}:\s*\S.*[,;]`)
	buildVerbRe  = regexp.MustCompile(`(?i)\b(?:developed|built|implemented|created|designed|engineered|launched|prototyped|deployed)\b`)
	projectNoun  = regexp.MustCompile(`(?i)\b(?:project|portfolio|application|app|website|platform|tool|dashboard|bot|library|plugin|extension|game)s?\b`)
	degreeWordRe = regexp.MustCompile(`(?i)\b(?:bachelor|master|ph\.?\s?d|doctorate|associate(?:'s)? degree|mba|b\.?\s?sc|m\.?\s?sc|b\.?\s?tech|m\.?\s?tech|b\.\s?s\.|m\.\s?s\.|b\.\s?a\.|m\.\s?a\.|b\.\s?e\.|diploma)`)
	institutionRe = regexp.MustCompile(`(?i)\b(?:university|college|institute|school|academy|polytechnic)\b`)
)

// featureRules 每种章节类型一组规则；权重可为负以压制误判
var featureRules = map[types.SectionType][]FeatureRule{
	types.SectionSkills: {
		rule("languages", 1, `(?i)\b(?:python|java|javascript|typescript|golang|rust|c\+\+|c#|ruby|php|kotlin|swift|scala|sql|html|css)\b`),
		rule("frameworks", 1, `(?i)\b(?:react|angular|vue|django|flask|spring|node\.?js|express|rails|laravel|tensorflow|pytorch|pandas|numpy)\b`),
		rule("tools", 1, `(?i)\b(?:docker|kubernetes|aws|azure|gcp|git|linux|jenkins|terraform|redis|postgres(?:ql)?|mysql|mongodb|kafka)\b`),
		{Name: "comma-list", Pattern: commaListRe, Weight: 1},
		{Name: "category-colon-list", Pattern: colonListRe, Weight: 1},
		rule("proficiency", 1, `(?i)\b(?:proficient|familiar with|expert in|skilled in|knowledge of|fluent)\b`),
		{Name: "has-year", Pattern: yearRe, Weight: -1},
		{Name: "build-verb", Pattern: buildVerbRe, Weight: -1},
	},
	types.SectionExperience: {
		rule("date-range", 1, `(?i)\b(?:19|20)\d{2}\s*(?:-|–|—|to)\s*(?:(?:19|20)\d{2}|present|current|now)\b`),
		{Name: "month-year", Pattern: monthYearRe, Weight: 1},
		{Name: "job-title", Pattern: jobTitleRe, Weight: 1},
		rule("company-marker", 1, `(?i)\b(?:inc|llc|ltd|corp|corporation|company|technologies|solutions|gmbh|co\.)(?:\b|\.)`),
		rule("responsibility-verb", 1, `(?i)^\s*(?:[-*•]\s*)?(?:led|managed|responsible|collaborated|worked|maintained|improved|reduced|increased|mentored|coordinated|supervised|owned)\b`),
		rule("employment-words", 1, `(?i)\b(?:internship|employment|full[- ]time|part[- ]time|contract|remote)\b`),
		{Name: "degree", Pattern: degreeWordRe, Weight: -1},
	},
	types.SectionProjects: {
		{Name: "build-verb", Pattern: buildVerbRe, Weight: 1},
		{Name: "project-noun", Pattern: projectNoun, Weight: 1},
		rule("repo-link", 1, `(?i)(?:github\.com|gitlab\.com|bitbucket\.org|https?://)`),
		rule("tech-stack", 1, `(?i)\b(?:tech(?:nologies)?|stack|built with|using)\s*[:\-]`),
		rule("open-source", 1, `(?i)\b(?:open[- ]source|hackathon|capstone|side project)\b`),
		{Name: "job-title", Pattern: jobTitleRe, Weight: -1},
	},
	types.SectionEducation: {
		{Name: "degree", Pattern: degreeWordRe, Weight: 1},
		{Name: "institution", Pattern: institutionRe, Weight: 1},
		rule("gpa", 1, `(?i)\b(?:c?gpa|grade point)\b`),
		rule("academic-words", 1, `(?i)\b(?:graduated|graduation|coursework|major|minor|thesis|honors|dean'?s list|cum laude|semester)\b`),
		rule("field-of-study", 1, `(?i)\b(?:computer science|software engineering|information technology|electrical engineering|mathematics|physics|data science)\b`),
	},
}

// scoreLine 计算一行在各章节类型上的得分
func scoreLine(text string) map[types.SectionType]int {
	scores := make(map[types.SectionType]int, len(featureRules))
	for section, rules := range featureRules {
		for _, r := range rules {
			if r.Pattern.MatchString(text) {
				scores[section] += r.Weight
			}
		}
	}
	return scores
}
