package router

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/processor"
)

func newEngine(apiKeys []string) *server.Hertz {
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	RegisterRoutes(h, handler.NewResumeHandler(processor.NewResumeService(), 1), apiKeys)
	return h
}

func parseRequest(h *server.Hertz, headers ...ut.Header) *ut.ResponseRecorder {
	body := []byte(`{"text": "SKILLS\nGo, Docker"}`)
	headers = append(headers, ut.Header{Key: "Content-Type", Value: "application/json"})
	return ut.PerformRequest(h.Engine, "POST", "/api/v1/resume/parse",
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)}, headers...)
}

func TestRoutes_NoAuth(t *testing.T) {
	h := newEngine(nil)

	assert.Equal(t, http.StatusOK, parseRequest(h).Code)
	assert.Equal(t, http.StatusOK, ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil).Code)
}

func TestRoutes_APIKey(t *testing.T) {
	h := newEngine([]string{"secret-1", "secret-2"})

	assert.Equal(t, http.StatusUnauthorized, parseRequest(h).Code)
	assert.Equal(t, http.StatusUnauthorized, parseRequest(h, ut.Header{Key: APIKeyHeader, Value: "wrong"}).Code)
	assert.Equal(t, http.StatusOK, parseRequest(h, ut.Header{Key: APIKeyHeader, Value: "secret-2"}).Code)

	// 健康检查不需要鉴权
	assert.Equal(t, http.StatusOK, ut.PerformRequest(h.Engine, "GET", "/api/v1/health", nil).Code)
}
