package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

func TestExtractEducation_HeaderWindow(t *testing.T) {
	text := `EDUCATION
Bachelor of Science in Computer Science, Stanford University, 2016 - 2020, GPA: 3.8/4.0
Master of Science in Data Science, MIT, 2020 - 2022
EXPERIENCE
Engineer at Foo`

	got := ExtractEducation(text)

	require.Len(t, got, 2)
	assert.Equal(t, types.EducationEntry{
		Name:        "Bachelor of Science in Computer Science, Stanford University",
		Institution: "Stanford University",
		Degree:      "Bachelor of Science",
		Field:       "Computer Science",
		StartDate:   "2016",
		EndDate:     "2020",
		GPA:         "3.8/4.0",
	}, got[0])
	assert.Equal(t, "Master of Science", got[1].Degree)
	assert.Equal(t, "Data Science", got[1].Field)
	assert.Equal(t, "2020", got[1].StartDate)
	assert.Equal(t, "2022", got[1].EndDate)
}

func TestExtractEducation_NoHeader(t *testing.T) {
	text := `Jane Doe
jane@example.com
B.S. in Computer Science, University of Washington, 2019
Software Engineer at Foo
Built things`

	got := ExtractEducation(text)

	require.Len(t, got, 1)
	assert.Equal(t, "Bachelor of Science", got[0].Degree)
	assert.Equal(t, "Computer Science", got[0].Field)
	assert.Equal(t, "University of Washington", got[0].Institution)
	assert.Equal(t, "2019", got[0].EndDate)
}

func TestExtractEducation_DiscardsEntriesWithoutDegreeOrInstitution(t *testing.T) {
	got := ExtractEducation("EDUCATION\nRelevant coursework: Algorithms, Databases")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractEducation_IgnoresRoleNamesOutsideHeader(t *testing.T) {
	got := ExtractEducation("Certified Scrum Master\nTeam lead for payments\nLikes chess\nPlays piano")
	assert.Empty(t, got)
}

func TestFindDegree(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"PhD in Physics", "PhD"},
		{"MBA, Wharton School", "MBA"},
		{"Masters in Economics", "Master"},
		{"bachelor of engineering", "Bachelor of Engineering"},
		{"B.Tech Mechanical Engineering", "Bachelor of Technology"},
		{"M.Sc. Mathematics", "Master of Science"},
		{"Associate degree in Nursing", "Associate"},
		{"Software developer", ""},
	}
	for _, tt := range tests {
		got, _ := findDegree(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
