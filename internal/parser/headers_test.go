package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func TestMatchHeader(t *testing.T) {
	tests := []struct {
		line       string
		wantOK     bool
		wantType   types.SectionType
		wantInline string
	}{
		{"TECHNICAL SKILLS", true, types.SectionSkills, ""},
		{"Work Experience:", true, types.SectionExperience, ""},
		{"## Projects", true, types.SectionProjects, ""},
		{"Education", true, types.SectionEducation, ""},
		{"Core Competencies", true, types.SectionSkills, ""},
		{"Stack", true, types.SectionSkills, ""},
		{"Hobbies", true, types.SectionOther, ""},
		{"Skills: Python, Go", true, types.SectionSkills, "Python, Go"},
		{"Professional Experience 2015 - 2024", true, types.SectionExperience, ""},
		{"Experience with distributed systems", false, "", ""},
		{"Built a project for fun", false, "", ""},
		{"Python, Go, Docker", false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			section, inline, ok := matchHeader(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantType, section)
				assert.Equal(t, tt.wantInline, inline)
			}
		})
	}
}

func TestDetectSectionAnchors_ExactPass(t *testing.T) {
	lines := mkLines(
		"John Doe",
		"TECHNICAL SKILLS",
		"Skills: Python, Go, Docker",
		"EXPERIENCE",
		"Engineer at Acme 2019 - 2021",
		"PROJECTS",
		"Technologies: React, Node.js",
	)

	anchors := DetectSectionAnchors(lines)

	require.Len(t, anchors, 4, "项目章节内的 Technologies 行应作为内容而非新标题")
	assert.Equal(t, types.SectionAnchor{Index: 1, Type: types.SectionSkills}, anchors[0])
	assert.Equal(t, types.SectionAnchor{Index: 2, Type: types.SectionSkills, Inline: "Python, Go, Docker"}, anchors[1])
	assert.Equal(t, types.SectionAnchor{Index: 3, Type: types.SectionExperience}, anchors[2])
	assert.Equal(t, types.SectionAnchor{Index: 5, Type: types.SectionProjects}, anchors[3])
}

func TestDetectSectionAnchors_LoosePass(t *testing.T) {
	lines := mkLines(
		"Jane Roe",
		"WHAT I KNOW - SKILL AREAS",
		"Go, Python",
		"WHERE I WORKED",
		"Acme 2019-2021",
	)

	anchors := DetectSectionAnchors(lines)

	require.Len(t, anchors, 2)
	assert.Equal(t, 1, anchors[0].Index)
	assert.Equal(t, types.SectionSkills, anchors[0].Type)
	assert.Equal(t, 3, anchors[1].Index)
	assert.Equal(t, types.SectionExperience, anchors[1].Type)
}

func TestDetectSectionAnchors_RescuePassKeepsLineAsContent(t *testing.T) {
	lines := mkLines(
		"Jane Roe",
		"Summer internship at Google",
		"Worked on search ranking",
		"Personal project: chess engine in Rust",
	)

	anchors := DetectSectionAnchors(lines)

	require.Len(t, anchors, 2)
	assert.Equal(t, types.SectionExperience, anchors[0].Type)
	assert.Equal(t, "Summer internship at Google", anchors[0].Inline)
	assert.Equal(t, types.SectionProjects, anchors[1].Type)
	assert.Equal(t, 3, anchors[1].Index)
}

func TestDetectSectionAnchors_NoneFound(t *testing.T) {
	lines := mkLines("Jane Roe", "Python, Go, Docker", "Software Engineer at Acme Inc")
	assert.Empty(t, DetectSectionAnchors(lines))
}

func TestAssembleSections_MergesDuplicatesAndDropsOther(t *testing.T) {
	lines := mkLines(
		"SKILLS",      // 0
		"Go, Python",  // 1
		"HOBBIES",     // 2
		"Chess",       // 3
		"EXPERIENCE",  // 4
		"Acme 2020",   // 5
		"SKILLS",      // 6
		"Docker",      // 7
	)
	anchors := []types.SectionAnchor{
		{Index: 6, Type: types.SectionSkills},
		{Index: 0, Type: types.SectionSkills},
		{Index: 2, Type: types.SectionOther},
		{Index: 4, Type: types.SectionExperience},
	}

	sections := AssembleSections(lines, anchors)

	require.Len(t, sections, 2)
	assert.Equal(t, types.SectionSkills, sections[0].Type)
	assert.Equal(t, []string{"Go, Python", "Docker"}, lineTexts(sections[0].Lines), "重复章节应按顺序合并")
	assert.Equal(t, types.SectionExperience, sections[1].Type)
	assert.Equal(t, []string{"Acme 2020"}, lineTexts(sections[1].Lines))
}
