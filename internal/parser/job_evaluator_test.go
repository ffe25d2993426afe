package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/agent"
	"resume-match-go/internal/retry"
)

const testJobDescription = "Backend Engineer. Required: Go, PostgreSQL. 3+ years."

func TestLLMJobEvaluator_EvaluateMatch(t *testing.T) {
	mock := agent.NewMockChatClient("Here is my assessment:\n```json\n"+
		`{"match_score": 82, "match_highlights": ["Four years of Go"], "potential_gaps": [], "resume_summary_for_jd": "Solid Go backend engineer."}`+
		"\n```", nil)
	evaluator := NewLLMJobEvaluator(mock, nil)

	got, err := evaluator.EvaluateMatch(context.Background(), testJobDescription, sampleResume)
	require.NoError(t, err)
	assert.Equal(t, 82, got.MatchScore)
	assert.Equal(t, []string{"Four years of Go"}, got.MatchHighlights)
	assert.Equal(t, []string{}, got.PotentialGaps)
	assert.Equal(t, "Solid Go backend engineer.", got.ResumeSummaryForJD)
	assert.NotZero(t, got.EvaluatedAt)

	msgs := mock.ReceivedMessages()
	require.Len(t, msgs, 1)
	assert.True(t, strings.HasPrefix(msgs[0][0].Content, "Examples of the expected judgement"))
	assert.Contains(t, msgs[0][1].Content, testJobDescription)
}

func TestLLMJobEvaluator_CustomPrompt(t *testing.T) {
	mock := agent.NewMockChatClient(`{"match_score": 40, "match_highlights": [], "potential_gaps": ["No SQL"], "resume_summary_for_jd": "junior"}`, nil)
	evaluator := NewLLMJobEvaluator(mock, nil,
		WithCustomPromptTemplate("JOB:\n%s\nCANDIDATE:\n%s"),
		WithFewShotExamples(""))

	got, err := evaluator.EvaluateMatch(context.Background(), testJobDescription, sampleResume)
	require.NoError(t, err)
	assert.Equal(t, 40, got.MatchScore)

	msgs := mock.ReceivedMessages()
	require.Len(t, msgs, 1)
	assert.False(t, strings.HasPrefix(msgs[0][0].Content, "Examples of the expected judgement"))
	assert.True(t, strings.HasPrefix(msgs[0][1].Content, "JOB:\n"+testJobDescription))

	_, err = NewLLMJobEvaluator(mock, nil, WithCustomPromptTemplate("")).EvaluateMatch(context.Background(), testJobDescription, sampleResume)
	assert.Error(t, err)
}

func TestLLMJobEvaluator_LenientDecoding(t *testing.T) {
	tests := []struct {
		name     string
		response string
		score    int
		gaps     []string
	}{
		{
			name:     "字符串分数",
			response: `{"match_score": "67", "match_highlights": "Go, SQL", "potential_gaps": ["No Kafka"], "resume_summary_for_jd": "ok"}`,
			score:    67,
			gaps:     []string{"No Kafka"},
		},
		{
			name:     "未转义引号",
			response: `{"match_score": 55, "match_highlights": [], "potential_gaps": ["Lacks "cloud" exposure"], "resume_summary_for_jd": "ok"}`,
			score:    55,
			gaps:     []string{`Lacks "cloud" exposure`},
		},
		{
			name:     "尾逗号走正则兜底",
			response: `{"match_score": 71, "potential_gaps": ["Short tenure",], "resume_summary_for_jd": "ok",}`,
			score:    71,
			gaps:     []string{"Short tenure"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluator := NewLLMJobEvaluator(agent.NewMockChatClient(tt.response, nil), nil)
			got, err := evaluator.Evaluate(context.Background(), testJobDescription, sampleResume)
			require.NoError(t, err)
			assert.Equal(t, tt.score, got.MatchScore)
			assert.Equal(t, tt.gaps, got.PotentialGaps)
		})
	}
}

func TestLLMJobEvaluator_Errors(t *testing.T) {
	t.Run("未配置模型", func(t *testing.T) {
		_, err := NewLLMJobEvaluator(nil, nil).EvaluateMatch(context.Background(), testJobDescription, sampleResume)
		assert.ErrorIs(t, err, ErrLLMUnavailable)
	})

	t.Run("分数缺失或越界", func(t *testing.T) {
		for _, resp := range []string{`{"resume_summary_for_jd": "no score"}`, `{"match_score": 140}`, "no json at all"} {
			_, err := NewLLMJobEvaluator(agent.NewMockChatClient(resp, nil), nil).
				Evaluate(context.Background(), testJobDescription, sampleResume)
			assert.ErrorIs(t, err, ErrInvalidEvaluation, resp)
		}
	})

	t.Run("模型持续失败", func(t *testing.T) {
		boom := errors.New("service unavailable")
		mock := agent.NewMockChatClient("", boom)
		evaluator := NewLLMJobEvaluator(mock, nil, WithEvaluatorRetryPolicy(noSleepPolicy()))
		_, err := evaluator.Evaluate(context.Background(), testJobDescription, sampleResume)
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, retry.ErrExhausted)
		assert.Equal(t, 3, mock.Calls())
	})
}
