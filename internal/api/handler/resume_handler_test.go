package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/types"
)

type fakeService struct {
	mu          sync.Mutex
	parsedTexts []string
	documents   []string
	lastWeights *matcher.Weights
	rankErr     error
	// 设置后，解析 blockText 会等待另一份简历开始解析
	blockText string
	started   chan struct{}
	startOnce sync.Once
	blocked   bool
}

func (f *fakeService) Parse(_ context.Context, text string) types.ParsedResume {
	if f.blockText != "" {
		if text == f.blockText {
			select {
			case <-f.started:
			case <-time.After(2 * time.Second):
				f.mu.Lock()
				f.blocked = true
				f.mu.Unlock()
			}
		} else {
			f.startOnce.Do(func() { close(f.started) })
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parsedTexts = append(f.parsedTexts, text)
	r := types.EmptyParsedResume(text)
	r.Skills = []string{"Go"}
	r.Source = "heuristic"
	return r
}

func (f *fakeService) ParseDocument(_ context.Context, data []byte, filename string) types.ParsedResume {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = append(f.documents, filename)
	return types.EmptyParsedResume(string(data))
}

func (f *fakeService) Match(_ context.Context, resume types.ParsedResume, _ types.JobRequirement, weights *matcher.Weights) types.MatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastWeights = weights
	return types.MatchResult{Score: 10 * len(resume.Skills), Explanation: "fake"}
}

func (f *fakeService) Rank(ctx context.Context, resumes []types.ParsedResume, job types.JobRequirement, weights *matcher.Weights) ([]types.RankedCandidate, error) {
	if f.rankErr != nil {
		return nil, f.rankErr
	}
	out := make([]types.RankedCandidate, len(resumes))
	for i, r := range resumes {
		out[i] = types.RankedCandidate{Index: i, Result: f.Match(ctx, r, job, weights)}
	}
	return out, nil
}

func (f *fakeService) Status() processor.Status {
	return processor.Status{ExtractorConfigured: true}
}

func newTestEngine(svc handler.ResumeService, maxUploadMB int) *server.Hertz {
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	rh := handler.NewResumeHandler(svc, maxUploadMB)
	h.GET("/health", rh.HandleHealth)
	h.POST("/parse", rh.HandleParse)
	h.POST("/match", rh.HandleMatch)
	h.POST("/rank", rh.HandleRank)
	return h
}

func postJSON(h *server.Hertz, path string, payload any) *ut.ResponseRecorder {
	body, _ := json.Marshal(payload)
	return ut.PerformRequest(h.Engine, "POST", path,
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
}

func TestHandleParse_JSON(t *testing.T) {
	svc := &fakeService{}
	h := newTestEngine(svc, 0)

	resp := postJSON(h, "/parse", handler.ParseRequest{Text: "SKILLS\nGo"})

	require.Equal(t, http.StatusOK, resp.Code)
	var got types.ParsedResume
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, []string{"Go"}, got.Skills)
	assert.Equal(t, []string{"SKILLS\nGo"}, svc.parsedTexts)
}

func TestHandleParse_Upload(t *testing.T) {
	svc := &fakeService{}
	h := newTestEngine(svc, 1)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", "cv.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("SKILLS\nGo, Docker"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp := ut.PerformRequest(h.Engine, "POST", "/parse",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: w.FormDataContentType()},
	)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"cv.txt"}, svc.documents)
	var got types.ParsedResume
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "SKILLS\nGo, Docker", got.RawText)
}

func TestHandleParse_UploadMissingFile(t *testing.T) {
	h := newTestEngine(&fakeService{}, 1)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("note", "no file"))
	require.NoError(t, w.Close())

	resp := ut.PerformRequest(h.Engine, "POST", "/parse",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: w.FormDataContentType()},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandleMatch(t *testing.T) {
	t.Run("结构化简历", func(t *testing.T) {
		svc := &fakeService{}
		h := newTestEngine(svc, 0)
		resume := types.ParsedResume{Skills: []string{"Go", "SQL"}}

		resp := postJSON(h, "/match", handler.MatchRequest{Resume: &resume})

		require.Equal(t, http.StatusOK, resp.Code)
		var got types.MatchResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, 20, got.Score)
		assert.Nil(t, svc.lastWeights)
		assert.Empty(t, svc.parsedTexts)
	})

	t.Run("简历文本与自定义权重", func(t *testing.T) {
		svc := &fakeService{}
		h := newTestEngine(svc, 0)

		resp := postJSON(h, "/match", handler.MatchRequest{
			ResumeText: "Go developer",
			Weights:    matcher.SimpleWeights.Map(),
		})

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, []string{"Go developer"}, svc.parsedTexts)
		require.NotNil(t, svc.lastWeights)
		assert.Equal(t, matcher.SimpleWeights, *svc.lastWeights)
	})

	t.Run("非法权重", func(t *testing.T) {
		h := newTestEngine(&fakeService{}, 0)
		resp := postJSON(h, "/match", handler.MatchRequest{
			ResumeText: "Go developer",
			Weights:    map[string]float64{"skills": 0.9},
		})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("缺少简历", func(t *testing.T) {
		h := newTestEngine(&fakeService{}, 0)
		resp := postJSON(h, "/match", handler.MatchRequest{})
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestHandleRank(t *testing.T) {
	svc := &fakeService{}
	h := newTestEngine(svc, 0)

	resp := postJSON(h, "/rank", handler.RankRequest{
		Resumes:     []types.ParsedResume{{Skills: []string{"a", "b"}}},
		ResumeTexts: []string{"text resume"},
	})

	require.Equal(t, http.StatusOK, resp.Code)
	var got handler.RankResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Candidates[1].Index)
	assert.Equal(t, []string{"text resume"}, svc.parsedTexts)
}

func TestHandleRank_ParsesTextsConcurrently(t *testing.T) {
	svc := &fakeService{blockText: "slow resume", started: make(chan struct{})}
	h := newTestEngine(svc, 0)

	resp := postJSON(h, "/rank", handler.RankRequest{
		Resumes:     []types.ParsedResume{{Skills: []string{"a", "b", "c"}}},
		ResumeTexts: []string{"slow resume", "fast resume"},
	})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, svc.blocked, "慢简历不应阻塞后面的简历")
	var got handler.RankResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got.Candidates, 3)
	assert.ElementsMatch(t, []string{"slow resume", "fast resume"}, svc.parsedTexts)
	assert.Equal(t, 1, got.Candidates[1].Index)
}

func TestHandleRank_Errors(t *testing.T) {
	h := newTestEngine(&fakeService{}, 0)
	assert.Equal(t, http.StatusBadRequest, postJSON(h, "/rank", handler.RankRequest{}).Code)

	failing := newTestEngine(&fakeService{rankErr: errors.New("canceled")}, 0)
	resp := postJSON(failing, "/rank", handler.RankRequest{ResumeTexts: []string{"x"}})
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestHandleHealth(t *testing.T) {
	h := newTestEngine(&fakeService{}, 0)

	resp := ut.PerformRequest(h.Engine, "GET", "/health", nil)

	require.Equal(t, http.StatusOK, resp.Code)
	var got handler.HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.True(t, got.Service.ExtractorConfigured)
}
