package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/types"
)

// mkLines 按顺序构造行序列
func mkLines(texts ...string) []types.Line {
	lines := make([]types.Line, len(texts))
	for i, t := range texts {
		lines[i] = types.Line{Index: i, Text: t}
	}
	return lines
}

func TestNormalizeLines_SplitsAndTrims(t *testing.T) {
	lines := NormalizeLines("Line one\r\n\n   Line two  \n\nLine three\nLine four")

	require.Len(t, lines, 4)
	assert.Equal(t, []string{"Line one", "Line two", "Line three", "Line four"}, lineTexts(lines))
	for i, l := range lines {
		assert.Equal(t, i, l.Index, "行号应连续")
	}
	assert.False(t, lines[0].BlankBefore)
	assert.True(t, lines[1].BlankBefore, "空行之后的行应带有空行标记")
	assert.True(t, lines[2].BlankBefore)
	assert.False(t, lines[3].BlankBefore)
}

func TestNormalizeLines_DegradedInputIsResplit(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "句号切分",
			raw:  "John Doe. Software engineer at Acme. Skills: Go, Python",
			want: []string{"John Doe.", "Software engineer at Acme.", "Skills: Go, Python"},
		},
		{
			name: "项目符号切分",
			raw:  "Skills • Go • Python",
			want: []string{"Skills", "• Go", "• Python"},
		},
		{
			name: "长空白切分",
			raw:  "Jane Roe     jane@example.com     555-0100",
			want: []string{"Jane Roe", "jane@example.com", "555-0100"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lineTexts(NormalizeLines(tt.raw)))
		})
	}
}

func TestNormalizeLines_EnoughLinesAreKept(t *testing.T) {
	lines := NormalizeLines("a. b\nc\nd\ne")
	assert.Equal(t, []string{"a. b", "c", "d", "e"}, lineTexts(lines), "超过阈值时不应二次切分")
}

func TestNormalizeLines_EmptyInput(t *testing.T) {
	assert.Empty(t, NormalizeLines(""))
	assert.Empty(t, NormalizeLines(" \n\t\n  "))
	assert.Empty(t, NormalizeLines("\xff\xfe"), "非法UTF-8字节应被丢弃")
}
