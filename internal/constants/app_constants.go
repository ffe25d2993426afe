package constants

const (
	// ServiceName 服务名，用于链路追踪与日志
	ServiceName = "resume-match"
	// Version 服务版本
	Version = "1.0.0"

	// APIPrefix HTTP 接口统一前缀
	APIPrefix = "/api/v1"

	// 路由路径（相对于 APIPrefix）
	RouteHealth      = "/health"
	RouteResumeParse = "/resume/parse"
	RouteResumeMatch = "/resume/match"
	RouteResumeRank  = "/resume/rank"

	// UploadFormField 上传文档使用的表单字段
	UploadFormField = "file"
	// DefaultMaxUploadMB 上传文档的默认大小上限
	DefaultMaxUploadMB = 10
	// MaxRankCandidates 单次排序请求的候选人上限
	MaxRankCandidates = 200
	// RankParseConcurrency 排序请求中并行解析简历文本的上限
	RankParseConcurrency = 4

	// ContextKeyAPIKey 鉴权通过后 API key 在请求上下文中的键
	ContextKeyAPIKey = "api_key"
)
