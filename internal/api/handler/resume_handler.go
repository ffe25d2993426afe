package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"golang.org/x/sync/errgroup"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/types"
)

// ResumeService 处理器依赖的服务能力，processor.ResumeService 实现了该接口
type ResumeService interface {
	Parse(ctx context.Context, text string) types.ParsedResume
	ParseDocument(ctx context.Context, data []byte, filename string) types.ParsedResume
	Match(ctx context.Context, resume types.ParsedResume, job types.JobRequirement, weights *matcher.Weights) types.MatchResult
	Rank(ctx context.Context, resumes []types.ParsedResume, job types.JobRequirement, weights *matcher.Weights) ([]types.RankedCandidate, error)
	Status() processor.Status
}

// ResumeHandler 简历解析与匹配接口
type ResumeHandler struct {
	service        ResumeService
	maxUploadBytes int64
}

// NewResumeHandler 创建处理器，maxUploadMB<=0 时使用默认上限
func NewResumeHandler(service ResumeService, maxUploadMB int) *ResumeHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = constants.DefaultMaxUploadMB
	}
	return &ResumeHandler{
		service:        service,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// ParseRequest 文本解析请求
type ParseRequest struct {
	Text string `json:"text"`
}

// MatchRequest 匹配请求。Resume 与 ResumeText 二选一，Resume 优先。
type MatchRequest struct {
	Resume     *types.ParsedResume  `json:"resume,omitempty"`
	ResumeText string               `json:"resume_text,omitempty"`
	Job        types.JobRequirement `json:"job"`
	Weights    map[string]float64   `json:"weights,omitempty"`
}

// RankRequest 排序请求，Resumes 与 ResumeTexts 合并后按顺序编号
type RankRequest struct {
	Resumes     []types.ParsedResume `json:"resumes,omitempty"`
	ResumeTexts []string             `json:"resume_texts,omitempty"`
	Job         types.JobRequirement `json:"job"`
	Weights     map[string]float64   `json:"weights,omitempty"`
}

// RankResponse 排序结果
type RankResponse struct {
	Total      int                     `json:"total"`
	Candidates []types.RankedCandidate `json:"candidates"`
}

// HealthResponse 健康检查结果
type HealthResponse struct {
	Status  string           `json:"status"`
	Version string           `json:"version"`
	Service processor.Status `json:"service"`
}

// HandleParse 解析简历：JSON 请求体 {"text": "..."}，或 multipart 表单中的 file 字段
func (h *ResumeHandler) HandleParse(ctx context.Context, c *app.RequestContext) {
	if strings.HasPrefix(string(c.ContentType()), "multipart/form-data") {
		h.handleParseUpload(ctx, c)
		return
	}

	var req ParseRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("请求体格式错误: %w", err))
		return
	}
	c.JSON(consts.StatusOK, h.service.Parse(ctx, req.Text))
}

func (h *ResumeHandler) handleParseUpload(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile(constants.UploadFormField)
	if err != nil {
		badRequest(c, errors.New("文件未找到"))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		c.JSON(consts.StatusRequestEntityTooLarge, utils.H{
			"error": fmt.Sprintf("文件大小超过上限 %d MB", h.maxUploadBytes>>20),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes))
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("读取上传文件失败")
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "读取文件失败"})
		return
	}

	start := time.Now()
	resume := h.service.ParseDocument(ctx, data, fileHeader.Filename)
	logger.Info().
		Str("filename", fileHeader.Filename).
		Int("size", len(data)).
		Str("source", resume.Source).
		Dur("elapsed", time.Since(start)).
		Msg("上传文档解析完成")
	c.JSON(consts.StatusOK, resume)
}

// HandleMatch 计算单份简历与岗位的匹配结果
func (h *ResumeHandler) HandleMatch(ctx context.Context, c *app.RequestContext) {
	var req MatchRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("请求体格式错误: %w", err))
		return
	}
	weights, err := requestWeights(req.Weights)
	if err != nil {
		badRequest(c, err)
		return
	}

	var resume types.ParsedResume
	switch {
	case req.Resume != nil:
		resume = *req.Resume
	case strings.TrimSpace(req.ResumeText) != "":
		resume = h.service.Parse(ctx, req.ResumeText)
	default:
		badRequest(c, errors.New("resume 或 resume_text 必须提供一个"))
		return
	}

	c.JSON(consts.StatusOK, h.service.Match(ctx, resume, req.Job, weights))
}

// HandleRank 对多份简历排序
func (h *ResumeHandler) HandleRank(ctx context.Context, c *app.RequestContext) {
	var req RankRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, fmt.Errorf("请求体格式错误: %w", err))
		return
	}
	weights, err := requestWeights(req.Weights)
	if err != nil {
		badRequest(c, err)
		return
	}

	total := len(req.Resumes) + len(req.ResumeTexts)
	if total == 0 {
		badRequest(c, errors.New("没有候选人"))
		return
	}
	if total > constants.MaxRankCandidates {
		badRequest(c, fmt.Errorf("候选人数量 %d 超过上限 %d", total, constants.MaxRankCandidates))
		return
	}

	resumes := make([]types.ParsedResume, total)
	copy(resumes, req.Resumes)
	offset := len(req.Resumes)
	// 每份文本都可能触发外部抽取，并行解析，避免一份慢简历拖住后面的候选人
	var eg errgroup.Group
	eg.SetLimit(constants.RankParseConcurrency)
	for i, text := range req.ResumeTexts {
		i, text := i, text
		eg.Go(func() error {
			resumes[offset+i] = h.service.Parse(ctx, text)
			return nil
		})
	}
	_ = eg.Wait()

	ranked, err := h.service.Rank(ctx, resumes, req.Job, weights)
	if err != nil {
		logger.Warn().Err(err).Int("candidates", total).Msg("排序失败")
		c.JSON(consts.StatusServiceUnavailable, utils.H{"error": err.Error()})
		return
	}
	c.JSON(consts.StatusOK, RankResponse{Total: len(ranked), Candidates: ranked})
}

// HandleHealth 健康检查
func (h *ResumeHandler) HandleHealth(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, HealthResponse{
		Status:  "ok",
		Version: constants.Version,
		Service: h.service.Status(),
	})
}

// requestWeights 请求未带权重时返回 nil，由评分器使用默认权重
func requestWeights(m map[string]float64) (*matcher.Weights, error) {
	if len(m) == 0 {
		return nil, nil
	}
	w, err := matcher.WeightsFromMap(m)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func badRequest(c *app.RequestContext, err error) {
	c.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
}
