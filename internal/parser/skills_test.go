package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestExtractSkills_SectionFormats(t *testing.T) {
	tests := []struct {
		name    string
		section []string
		want    []string
	}{
		{
			name:    "分类冒号列表",
			section: []string{"Languages: Python, Go", "Frameworks: React; Django", "Docker"},
			want:    []string{"Python", "Go", "React", "Django", "Docker"},
		},
		{
			name:    "项目符号与逗号列表",
			section: []string{"• Kubernetes, Terraform | AWS", "- PostgreSQL (advanced)"},
			want:    []string{"Kubernetes", "Terraform", "AWS", "PostgreSQL"},
		},
		{
			name:    "拒绝非技能词和过长短语",
			section: []string{"Python, Training, Internship", "Kubernetes Cluster Administration And Monitoring"},
			want:    []string{"Python"},
		},
		{
			name:    "忽略大小写去重并保留首次写法",
			section: []string{"python, Python, PYTHON, Go"},
			want:    []string{"python", "Go"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSkills(mkLines(tt.section...), nil))
		})
	}
}

func TestExtractSkills_VocabularyFallback(t *testing.T) {
	all := mkLines(
		"Jane Roe",
		"Built services in Go and Python",
		"Deployed with Docker on AWS",
	)

	got := ExtractSkills(nil, all)

	assert.Equal(t, []string{"Go", "Python", "Docker", "AWS"}, got)
}

func TestExtractSkills_EmptyEverywhere(t *testing.T) {
	got := ExtractSkills(nil, mkLines("Jane Roe", "Loves hiking"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNormalizeSkills_Bounds(t *testing.T) {
	got := NormalizeSkills([]string{
		"C", "Go", "TECHNICAL SKILLS", "Hobbies", "https://example.com",
		"A Very Long Skill Name That Exceeds Limits", "Machine Learning Ops",
		"and Redis", "Kafka etc.", "2020",
	})
	assert.Equal(t, []string{"Go", "Machine Learning Ops", "Redis", "Kafka"}, got)
}

func TestParse_SkillsWithinTechnicalSkillsHeader(t *testing.T) {
	p := NewHeuristicParser()

	resume := p.Parse("TECHNICAL SKILLS\nSkills: Python, Go, Docker")

	assert.Equal(t, []string{"Python", "Go", "Docker"}, resume.Skills)
}

func TestParse_SkillBoundsHoldForMessyInput(t *testing.T) {
	inputs := []string{
		sampleResume,
		"SKILLS\nI am proficient in many things, including distributed systems design and large scale data engineering pipelines, Go\nC, R, Go",
		"Python Go Docker Kubernetes AWS GCP Terraform Ansible Jenkins",
		"skills: , , ;; | • \nEXPERIENCE\nintern",
	}
	p := NewHeuristicParser()
	for _, in := range inputs {
		for _, s := range p.Parse(in).Skills {
			n := utf8.RuneCountInString(s)
			assert.GreaterOrEqual(t, n, 2, "技能过短: %q", s)
			assert.LessOrEqual(t, n, 30, "技能过长: %q", s)
			assert.LessOrEqual(t, len(strings.Fields(s)), 3, "技能词数过多: %q", s)
		}
	}
}
