package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func TestExtractExperience_Subsections(t *testing.T) {
	lines := mkLines(
		"Senior Software Engineer | Acme Corp | San Francisco | Jan 2020 - Present",
		"- Built APIs",
		"- Led team",
		"Software Engineer, Beta LLC, 2018 - 2019",
		"- Wrote tests",
	)

	got := ExtractExperience(lines)

	require.Len(t, got, 2)
	assert.Equal(t, types.ExperienceEntry{
		Title:       "Senior Software Engineer",
		Company:     "Acme Corp",
		Location:    "San Francisco",
		StartDate:   "2020-01",
		EndDate:     "",
		Description: "Built APIs\nLed team",
	}, got[0])
	assert.Equal(t, "Software Engineer", got[1].Title)
	assert.Equal(t, "Beta LLC", got[1].Company)
	assert.Equal(t, "2018", got[1].StartDate)
	assert.Equal(t, "2019", got[1].EndDate)
	assert.Equal(t, "Wrote tests", got[1].Description)
}

func TestExtractExperience_RoleSignalLines(t *testing.T) {
	lines := mkLines(
		"Summer Intern at Google",
		"Worked on search ranking",
	)

	got := ExtractExperience(lines)

	require.Len(t, got, 1)
	assert.Equal(t, "Summer Intern", got[0].Title)
	assert.Equal(t, "Google", got[0].Company)
	assert.Equal(t, "Worked on search ranking", got[0].Description)
}

func TestExtractExperience_DatesOnFollowingLine(t *testing.T) {
	lines := mkLines(
		"Backend Developer",
		"Globex, Berlin (03/2017 - 12/2018)",
		"- Maintained billing jobs",
	)

	got := ExtractExperience(lines)

	require.Len(t, got, 1)
	assert.Equal(t, "Backend Developer", got[0].Title)
	assert.Equal(t, "Globex", got[0].Company)
	assert.Equal(t, "Berlin", got[0].Location)
	assert.Equal(t, "2017-03", got[0].StartDate)
	assert.Equal(t, "2018-12", got[0].EndDate)
	assert.Equal(t, "Maintained billing jobs", got[0].Description)
}

func TestExperienceFromDatedLines(t *testing.T) {
	got, ok := experienceFromDatedLines(extractionInput{Section: mkLines(
		"Data Analyst 2017 - 2018",
		"random text without signals",
	)})

	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "Data Analyst", got[0].Title)
	assert.Equal(t, "2017", got[0].StartDate)
	assert.Equal(t, "2018", got[0].EndDate)
	assert.Equal(t, "Data Analyst 2017 - 2018", got[0].Description)
}

func TestFinalizeExperience_DropsShortAndDuplicate(t *testing.T) {
	got := finalizeExperience([]types.ExperienceEntry{
		{Title: "Dev"},
		{},
		{Title: "Engineer", Company: "Acme"},
		{Title: "engineer", Company: "ACME"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "Engineer", got[0].Title)
}

func TestExtractExperience_Empty(t *testing.T) {
	got := ExtractExperience(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
