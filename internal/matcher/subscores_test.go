package matcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func TestTotalExperienceYears(t *testing.T) {
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		entries []types.ExperienceEntry
		want    float64
	}{
		{"两年整", []types.ExperienceEntry{{StartDate: "2020-01", EndDate: "2022-01"}}, 2.0},
		{"至今", []types.ExperienceEntry{{StartDate: "2023-07"}}, 1.0},
		{"只有年份", []types.ExperienceEntry{{StartDate: "2018", EndDate: "2020"}}, 2.0},
		{"跳过无法解析与倒序", []types.ExperienceEntry{{StartDate: "sometime"}, {StartDate: "2022-01", EndDate: "2021-01"}, {StartDate: "2021-01", EndDate: "2021-07"}}, 0.5},
		{"结束日期无法解析", []types.ExperienceEntry{{StartDate: "2021-01", EndDate: "soon"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TotalExperienceYears(tt.entries, now), 0.01)
		})
	}
}

func TestSkillOverlap(t *testing.T) {
	score, matched, total := skillOverlap([]string{"Python", "Go"}, []string{"python", "java"})
	assert.Equal(t, 0.5, score)
	assert.Equal(t, 1, matched)
	assert.Equal(t, 2, total)

	// 互相包含即算匹配
	score, _, _ = skillOverlap([]string{"React", "AWS Lambda"}, []string{"React Native", "AWS"})
	assert.Equal(t, 1.0, score)

	score, _, _ = skillOverlap(nil, []string{"Go"})
	assert.Equal(t, 1.0, score)
	score, _, _ = skillOverlap([]string{"Go"}, nil)
	assert.Equal(t, 0.0, score)
}

func TestTitleRelevance(t *testing.T) {
	entries := []types.ExperienceEntry{{Title: "Senior Backend Engineer"}, {Title: "Data Analyst"}}
	assert.Equal(t, 1.0, titleRelevance("Backend Engineer", entries))
	assert.Equal(t, 0.5, titleRelevance("Platform Engineer", entries))
	assert.Equal(t, 0.5, titleRelevance("Backend Engineer", []types.ExperienceEntry{{Title: "Barista"}}), "有经历但职位无关")
	assert.Equal(t, 0.0, titleRelevance("Product Designer", nil), "没有工作经历")
	assert.Equal(t, 1.0, titleRelevance("", entries))
}

func TestEducationScore(t *testing.T) {
	bsCS := types.EducationEntry{Degree: "Bachelor of Science", Field: "Computer Science"}
	msMath := types.EducationEntry{Degree: "Master of Science", Field: "Mathematics"}

	tests := []struct {
		name    string
		entries []types.EducationEntry
		req     types.EducationRequirement
		want    float64
	}{
		{"无要求", nil, types.EducationRequirement{}, 1},
		{"有要求无经历", nil, types.EducationRequirement{RequiredDegree: "Bachelor"}, 0},
		{"学位与专业均匹配", []types.EducationEntry{bsCS}, types.EducationRequirement{RequiredDegree: "Bachelor", PreferredField: "Computer Science"}, 1},
		{"只有学位匹配", []types.EducationEntry{msMath}, types.EducationRequirement{RequiredDegree: "Master", PreferredField: "Computer Science"}, 0.7},
		{"更高学位满足要求", []types.EducationEntry{msMath}, types.EducationRequirement{RequiredDegree: "Bachelor's degree"}, 1},
		{"学位不足", []types.EducationEntry{bsCS}, types.EducationRequirement{RequiredDegree: "PhD"}, 0.3},
		{"取最高分", []types.EducationEntry{msMath, bsCS}, types.EducationRequirement{RequiredDegree: "Bachelor", PreferredField: "Computer Science"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, educationScore(tt.entries, tt.req))
		})
	}
}

func TestProjectScore(t *testing.T) {
	projects := []types.ProjectEntry{{Technologies: []string{"Go", "Redis"}}, {Technologies: []string{"Figma"}}, {}}
	assert.InDelta(t, 1.0/3, projectScore(projects, []string{"redis"}), 1e-9)
	assert.Equal(t, 0.0, projectScore(nil, []string{"Go"}))
	assert.Equal(t, 1.0, projectScore(projects, nil))
}

func TestWeights(t *testing.T) {
	require.NoError(t, FullWeights.Validate())
	require.NoError(t, SimpleWeights.Validate())

	w, err := Preset("SIMPLE")
	require.NoError(t, err)
	assert.Equal(t, SimpleWeights, w)
	_, err = Preset("fancy")
	assert.ErrorIs(t, err, ErrInvalidWeights)

	w, err = WeightsFromMap(map[string]float64{"skills": 0.5, "experience": 0.5})
	require.NoError(t, err)
	assert.Equal(t, Weights{Skills: 0.5, Experience: 0.5}, w)

	_, err = WeightsFromMap(map[string]float64{"skills": 0.5})
	assert.ErrorIs(t, err, ErrInvalidWeights)
	_, err = WeightsFromMap(map[string]float64{"skills": 1.2, "projects": -0.2})
	assert.ErrorIs(t, err, ErrInvalidWeights)
	_, err = WeightsFromMap(map[string]float64{"charisma": 1})
	assert.ErrorIs(t, err, ErrInvalidWeights)
}
