package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivideSubsections_BulletListStartsNewEntry(t *testing.T) {
	lines := mkLines(
		"Software Engineer, Acme",
		"- Built APIs",
		"- Led team",
		"Data Analyst, Beta",
		"- Wrote reports",
	)

	subs := DivideSubsections(lines)

	require.Len(t, subs, 2)
	assert.Equal(t, "Software Engineer, Acme", subs[0].Title)
	assert.Equal(t, "Built APIs\nLed team", subs[0].Description())
	assert.Equal(t, "Data Analyst, Beta", subs[1].Title)
	assert.Equal(t, "Wrote reports", subs[1].Description())
}

func TestDivideSubsections_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		lines  []string
		titles []string
	}{
		{
			name:   "全大写短行",
			lines:  []string{"ACME CORP", "did stuff", "BETA LLC", "more stuff"},
			titles: []string{"ACME CORP", "BETA LLC"},
		},
		{
			name:   "年份区间",
			lines:  []string{"Acme Corp", "2019 - 2021", "did stuff"},
			titles: []string{"Acme Corp", "2019 - 2021"},
		},
		{
			name:   "全大写技术列表不是边界",
			lines:  []string{"Backend work", "AWS, GCP, SQL"},
			titles: []string{"Backend work"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := DivideSubsections(mkLines(tt.lines...))
			var titles []string
			for _, s := range subs {
				titles = append(titles, s.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}

func TestDivideSubsections_BlankLineMarker(t *testing.T) {
	lines := NormalizeLines("Alpha project\nDid things\n\nBeta project\nOther things")

	subs := DivideSubsections(lines)

	require.Len(t, subs, 2)
	assert.Equal(t, "Alpha project", subs[0].Title)
	assert.Equal(t, []string{"Did things"}, subs[0].Lines)
	assert.Equal(t, "Beta project", subs[1].Title)
}

func TestDivideSubsections_Empty(t *testing.T) {
	assert.Empty(t, DivideSubsections(nil))
}
