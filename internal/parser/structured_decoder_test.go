package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"纯对象", `{"a":1}`, `{"a":1}`},
		{"前后有说明文字", "Sure! Here you go: {\"a\": {\"b\": 2}} hope it helps", `{"a": {"b": 2}}`},
		{"代码块", "```json\n{\"skills\": [\"Go\"]}\n```", `{"skills": ["Go"]}`},
		{"字符串中的括号", `{"s": "a } b { c"} trailing }`, `{"s": "a } b { c"}`},
		{"带BOM", "\uFEFF{\"x\": true}", `{"x": true}`},
		{"第一个对象不完整时尝试下一个", `{ broken { "ok": 1 }`, `{ "ok": 1 }`},
		{"没有对象", "no json here", ""},
		{"未闭合", `{"a": 1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}

func TestDecodeBestEffort(t *testing.T) {
	var out struct {
		Skills  []string `json:"skills"`
		Summary string   `json:"summary"`
	}

	err := DecodeBestEffort(`Result: {"skills": ["Go", "SQL"], "summary": "ok"}`, &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, out.Skills)
	assert.Equal(t, "ok", out.Summary)
}

func TestDecodeBestEffort_RepairsInnerQuotes(t *testing.T) {
	var out struct {
		Summary string `json:"summary"`
	}

	err := DecodeBestEffort(`{"summary": "led the "payments" team"}`, &out)

	require.NoError(t, err)
	assert.Equal(t, `led the "payments" team`, out.Summary)
}

func TestDecodeBestEffort_Errors(t *testing.T) {
	var out map[string]any
	assert.ErrorIs(t, DecodeBestEffort("nothing", &out), ErrNoJSON)

	err := DecodeBestEffort(`{"a": [1, 2,, 3]}`, &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoJSON)
}

func TestRegexFallbacks(t *testing.T) {
	// 尾随逗号让 JSON 解码失败，正则兜底仍可用
	text := `{"skills": ["Go", "Docker",], "score": "87", "summary": "Strong \"backend\" fit",
	"experience": [{"title": "Engineer", "company": "Acme", "years": 2}, {"title": "Intern", "company": "Beta"},]}`

	assert.Equal(t, []string{"Go", "Docker"}, ExtractStringList(text, "skills"))
	assert.Nil(t, ExtractStringList(text, "missing"))

	score, ok := ExtractNumber(text, "score")
	assert.True(t, ok)
	assert.InDelta(t, 87, score, 0.001)
	_, ok = ExtractNumber(text, "missing")
	assert.False(t, ok)

	assert.Equal(t, `Strong "backend" fit`, ExtractString(text, "summary"))

	objs := ExtractObjects(text, "experience")
	require.Len(t, objs, 2)
	assert.Equal(t, map[string]string{"title": "Engineer", "company": "Acme", "years": "2"}, objs[0])
	assert.Equal(t, "Beta", objs[1]["company"])
}

func TestSanitizeJSON_KeepsValidInput(t *testing.T) {
	valid := `{"a": "x \"y\" z", "b": ["c", "d"]}`
	assert.Equal(t, valid, sanitizeJSON(valid))
}
