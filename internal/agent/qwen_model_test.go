package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQwenChatModel_Generate(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"message":{"role":"assistant","content":"{\"skills\":[\"Go\"]}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":5}}`))
	}))
	defer srv.Close()

	m, err := NewQwenChatModel("test-key", WithAPIURL(srv.URL), WithModelName("qwen-turbo"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	msg, err := m.Generate(context.Background(),
		[]*schema.Message{schema.SystemMessage("sys"), schema.UserMessage("hello")},
		model.WithTemperature(0.1), model.WithModel("qwen-max"))

	require.NoError(t, err)
	assert.Equal(t, `{"skills":["Go"]}`, msg.Content)
	assert.Equal(t, schema.Assistant, msg.Role)
	require.NotNil(t, msg.ResponseMeta)
	assert.Equal(t, 15, msg.ResponseMeta.Usage.TotalTokens)

	assert.Equal(t, "qwen-max", got.Model)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.1, *got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
}

func TestQwenChatModel_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	m, err := NewQwenChatModel("k", WithAPIURL(srv.URL))
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.True(t, se.Temporary())
}

func TestQwenChatModel_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	m, _ := NewQwenChatModel("k", WithAPIURL(srv.URL))
	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("x")})
	assert.ErrorIs(t, err, ErrEmptyChoices)
}

func TestNewQwenChatModel_RequiresKey(t *testing.T) {
	_, err := NewQwenChatModel("  ")
	assert.Error(t, err)
}

func TestDelayBefore(t *testing.T) {
	interval := 100 * time.Millisecond
	tests := []struct {
		name  string
		opts  []model.Option
		since time.Duration
		want  time.Duration
	}{
		{"间隔不足时补齐", nil, 30 * time.Millisecond, 70 * time.Millisecond},
		{"间隔已足够", nil, time.Second, 0},
		{"跳过节流", []model.Option{WithSkipDelay()}, 0, 0},
		{"强制等待完整间隔", []model.Option{WithForcedDelay()}, time.Second, interval},
		{"自定义延迟优先", []model.Option{WithSkipDelay(), WithCustomDelayMs(250)}, 0, 250 * time.Millisecond},
		{"按配置组合", PacingOptions(false, true, 0), time.Second, interval},
		{"配置为空", PacingOptions(false, false, 0), 30 * time.Millisecond, 70 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := model.GetImplSpecificOptions(&timingOptions{}, tt.opts...)
			assert.Equal(t, tt.want, delayBefore(opts, interval, tt.since))
		})
	}
}

func TestQwenChatModel_PaceHonorsContext(t *testing.T) {
	m, _ := NewQwenChatModel("k", WithAPIURL("http://127.0.0.1:1"), WithMinInterval(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, []*schema.Message{schema.UserMessage("x")}, WithForcedDelay())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockChatClient_Sequential(t *testing.T) {
	m := NewMockChatClientSequential([]MockResponse{{Content: "a"}, {Error: errors.New("boom")}})

	msg, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("1")})
	require.NoError(t, err)
	assert.Equal(t, "a", msg.Content)

	_, err = m.Generate(context.Background(), nil)
	assert.EqualError(t, err, "boom")

	_, err = m.Generate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrMockExhausted)
	assert.Equal(t, 3, m.Calls())
	assert.Len(t, m.ReceivedMessages(), 3)
}
