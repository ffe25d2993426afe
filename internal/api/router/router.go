package router

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/constants"
)

// APIKeyHeader 携带 API key 的请求头
const APIKeyHeader = "X-API-Key"

// RegisterRoutes 注册 API 路由。apiKeys 非空时简历接口需要在 X-API-Key 头中携带其中之一，
// 健康检查始终开放。
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, apiKeys []string) {
	h.Use(accessLog())

	api := h.Group(constants.APIPrefix)
	api.GET(constants.RouteHealth, resumeHandler.HandleHealth)

	resume := api.Group("")
	if len(apiKeys) > 0 {
		resume.Use(apiKeyAuth(apiKeys))
	}
	resume.POST(constants.RouteResumeParse, resumeHandler.HandleParse)
	resume.POST(constants.RouteResumeMatch, resumeHandler.HandleMatch)
	resume.POST(constants.RouteResumeRank, resumeHandler.HandleRank)
}

func accessLog() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		start := time.Now()
		ctx.Next(c)
		glog.CtxInfof(c, "%s %s status=%d elapsed=%s",
			string(ctx.Method()), string(ctx.Path()), ctx.Response.StatusCode(), time.Since(start))
	}
}

func apiKeyAuth(apiKeys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+APIKeyHeader, ""),
		keyauth.WithContextKey(constants.ContextKeyAPIKey),
		keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
			for _, k := range apiKeys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, nil
		}),
		keyauth.WithErrorHandler(func(c context.Context, ctx *app.RequestContext, err error) {
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "未授权访问"})
		}),
	)
}
