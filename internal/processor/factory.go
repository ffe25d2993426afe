package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog"

	"resume-match-go/internal/agent"
	"resume-match-go/internal/cache"
	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/parser"
	"resume-match-go/internal/ratelimit"
	"resume-match-go/internal/retry"
	"resume-match-go/internal/storage"
)

// 任务名，对应 llm.task_models 中的键
const (
	TaskExtract  = "extract"
	TaskEvaluate = "evaluate"
)

// NewResumeServiceFromConfig 按配置组装所有组件。
// 没有 API 密钥时不创建模型，服务只使用启发式解析和算法子分数；
// Redis 或 PDF 组件初始化失败只记录警告，对应能力降级。
func NewResumeServiceFromConfig(ctx context.Context, cfg *config.Config, zl *zerolog.Logger) (*ResumeService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if zl == nil {
		nop := zerolog.Nop()
		zl = &nop
	}

	weights, err := cfg.MatcherWeights()
	if err != nil {
		return nil, fmt.Errorf("invalid matcher weights: %w", err)
	}

	opts := []Option{
		WithLogger(zl),
		WithCooldown(config.GetDuration(cfg.Extractor.Cooldown, defaultCooldown)),
		WithRankConcurrency(cfg.Matcher.RankConcurrency),
		WithHeuristicParser(parser.NewHeuristicParser(
			parser.WithHeuristicLogger(logger.StdLogger(*zl, "heuristic", zerolog.DebugLevel)))),
	}
	var closers []func() error

	docs, err := parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(logger.StdLogger(*zl, "pdf", zerolog.DebugLevel)))
	if err != nil {
		zl.Warn().Err(err).Msg("PDF 提取器初始化失败，上传的文档将按纯文本处理")
	} else {
		opts = append(opts, WithDocumentExtractor(docs))
	}

	scorerOpts := []matcher.Option{
		matcher.WithWeights(weights),
		matcher.WithLogger(logger.StdLogger(*zl, "matcher", zerolog.ErrorLevel)),
	}

	if cfg.LLM.APIKey == "" {
		zl.Warn().Msg("未配置 llm.api_key，仅使用启发式解析与算法评分")
		opts = append(opts, WithMatcher(matcher.NewScorer(scorerOpts...)))
		return NewResumeService(opts...), nil
	}

	memo, closeStore := newMemoizer(cfg, zl)
	if closeStore != nil {
		closers = append(closers, closeStore)
	}
	policy := newRetryPolicy(cfg, zl)
	modelOpts := []model.Option{model.WithTemperature(float32(cfg.LLM.Temperature))}

	if cfg.Extractor.Enabled {
		extractModel, err := newChatModel(cfg, TaskExtract, zl)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithExtractor(parser.NewLLMStructuredExtractor(extractModel,
			parser.WithExtractorLogger(logger.StdLogger(*zl, "llm-extractor", zerolog.DebugLevel)),
			parser.WithExtractorMemoizer(memo),
			parser.WithExtractorRetryPolicy(policy),
			parser.WithExtractorModelOptions(taskModelOptions(cfg, TaskExtract, modelOpts)...),
		)))
	}

	if cfg.Matcher.UseLLMAnalysis {
		evalModel, err := newChatModel(cfg, TaskEvaluate, zl)
		if err != nil {
			return nil, err
		}
		evaluator := parser.NewLLMJobEvaluator(evalModel,
			logger.StdLogger(*zl, "llm-evaluator", zerolog.DebugLevel),
			parser.WithEvaluatorMemoizer(memo),
			parser.WithEvaluatorRetryPolicy(policy),
			parser.WithEvaluatorModelOptions(taskModelOptions(cfg, TaskEvaluate, modelOpts)...),
		)
		scorerOpts = append(scorerOpts, matcher.WithAnalyzer(evaluator))
	}
	opts = append(opts, WithMatcher(matcher.NewScorer(scorerOpts...)))

	s := NewResumeService(opts...)
	s.closers = closers
	return s, nil
}

// taskModelOptions 在公共模型选项后追加 llm.task_pacing 中该任务的节流提示
func taskModelOptions(cfg *config.Config, task string, base []model.Option) []model.Option {
	opts := append([]model.Option{}, base...)
	if p, ok := cfg.LLM.TaskPacing[task]; ok {
		opts = append(opts, agent.PacingOptions(p.SkipDelay, p.ForcedDelay, p.CustomDelayMs)...)
	}
	return opts
}

// newChatModel 创建任务对应的模型客户端并套上 QPM 限流
func newChatModel(cfg *config.Config, task string, zl *zerolog.Logger) (model.ToolCallingChatModel, error) {
	name := cfg.GetModelForTask(task)
	qwen, err := agent.NewQwenChatModel(cfg.LLM.APIKey,
		agent.WithAPIURL(cfg.LLM.APIURL),
		agent.WithModelName(name),
		agent.WithTimeout(config.GetDuration(cfg.LLM.Timeout, 60*time.Second)),
		agent.WithMinInterval(config.GetDuration(cfg.LLM.MinInterval, 0)),
		agent.WithLogger(logger.StdLogger(*zl, "llm-client", zerolog.DebugLevel)),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", task, err)
	}
	return ratelimit.NewLLMWithRateLimit(qwen, name, cfg.LLM.ModelQPMLimits, cfg.LLM.QPM), nil
}

func newRetryPolicy(cfg *config.Config, zl *zerolog.Logger) *retry.Policy {
	jitter := retry.NoJitter
	if cfg.Retry.Jitter {
		jitter = retry.HalfJitter
	}
	return retry.NewPolicy(
		retry.WithMaxAttempts(cfg.Retry.MaxAttempts),
		retry.WithBaseDelay(config.GetDuration(cfg.Retry.BaseDelay, 500*time.Millisecond)),
		retry.WithMaxDelay(config.GetDuration(cfg.Retry.MaxDelay, 8*time.Second)),
		retry.WithJitter(jitter),
		retry.WithLogger(logger.StdLogger(*zl, "retry", zerolog.InfoLevel)),
	)
}

// newMemoizer 本地缓存加可选的 Redis 二级缓存；返回的关闭函数可能为 nil
func newMemoizer(cfg *config.Config, zl *zerolog.Logger) (*cache.Memoizer, func() error) {
	ttl := config.GetDuration(cfg.Cache.TTL, 5*time.Minute)
	local := cache.New[string, string](cfg.Cache.Capacity, ttl)
	memoOpts := []cache.MemoizerOption{
		cache.WithMemoizerLogger(logger.StdLogger(*zl, "cache", zerolog.DebugLevel)),
	}

	var closeStore func() error
	if cfg.Cache.RedisEnabled {
		store, err := storage.NewRedisStore(&cfg.Redis, cfg.Cache.KeyPrefix)
		if err != nil {
			zl.Warn().Err(err).Msg("Redis 二级缓存不可用，仅使用本地缓存")
		} else {
			memoOpts = append(memoOpts, cache.WithRemoteStore(store))
			closeStore = store.Close
		}
	}
	return cache.NewMemoizer(local, ttl, memoOpts...), closeStore
}
