package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/matcher"
)

// RedisConfig holds configuration for Redis
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// 连接池设置
	PoolSize     int `yaml:"pool_size"`      // 连接池大小
	MinIdleConns int `yaml:"min_idle_conns"` // 最小空闲连接数
	// 超时设置
	DialTimeoutSeconds  int `yaml:"dial_timeout_seconds"`  // 连接超时(秒)
	ReadTimeoutSeconds  int `yaml:"read_timeout_seconds"`  // 读取超时(秒)
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"` // 写入超时(秒)
	// 重试设置
	MaxRetries        int `yaml:"max_retries"`          // 最大重试次数
	MinRetryBackoffMS int `yaml:"min_retry_backoff_ms"` // 最小重试间隔(毫秒)
	MaxRetryBackoffMS int `yaml:"max_retry_backoff_ms"` // 最大重试间隔(毫秒)
	// 连接生命周期
	ConnMaxLifetimeMinutes int `yaml:"conn_max_lifetime_minutes"`  // 连接最大生命周期(分钟)
	ConnMaxIdleTimeMinutes int `yaml:"conn_max_idle_time_minutes"` // 空闲连接最大生命周期(分钟)
}

// Config 应用程序配置
type Config struct {
	LLM       LLMConfig       `yaml:"llm"`
	Extractor ExtractorConfig `yaml:"extractor"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Cache     CacheConfig     `yaml:"cache"`
	Retry     RetryConfig     `yaml:"retry"`
	Redis     RedisConfig     `yaml:"redis"`
	Server    ServerConfig    `yaml:"server"`
	Logger    LoggerConfig    `yaml:"logger"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// LLMConfig 文本补全模型（DashScope OpenAI 兼容接口）
type LLMConfig struct {
	APIKey      string            `yaml:"api_key"`
	APIURL      string            `yaml:"api_url"`
	Model       string            `yaml:"model"`
	TaskModels  map[string]string `yaml:"task_models"` // 任务专用模型: extract / evaluate
	Timeout     string            `yaml:"timeout"`
	Temperature float64           `yaml:"temperature"`
	MinInterval string            `yaml:"min_interval"` // 两次请求之间的最小间隔
	// QPM 未在 ModelQPMLimits 中列出的模型使用的限额
	QPM            int            `yaml:"qpm"`
	ModelQPMLimits map[string]int `yaml:"model_qpm_limits"`
	// TaskPacing 按任务覆盖节流行为，键同 TaskModels
	TaskPacing map[string]PacingConfig `yaml:"task_pacing"`
}

// PacingConfig 单个任务的节流提示，CustomDelayMs 优先于其它两项
type PacingConfig struct {
	SkipDelay     bool `yaml:"skip_delay"`
	ForcedDelay   bool `yaml:"forced_delay"`
	CustomDelayMs int  `yaml:"custom_delay_ms"`
}

// ExtractorConfig 模型抽取器配置
type ExtractorConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Cooldown string `yaml:"cooldown"` // 模型调用失败后暂停使用的时长
}

// MatcherConfig 匹配评分配置。Weights 非空时优先于 Mode。
type MatcherConfig struct {
	Mode            string             `yaml:"mode"` // full | simple
	Weights         map[string]float64 `yaml:"weights"`
	UseLLMAnalysis  bool               `yaml:"use_llm_analysis"`
	RankConcurrency int                `yaml:"rank_concurrency"`
}

// CacheConfig 外部调用结果缓存
type CacheConfig struct {
	TTL          string `yaml:"ttl"`
	Capacity     int    `yaml:"capacity"`
	RedisEnabled bool   `yaml:"redis_enabled"`
	KeyPrefix    string `yaml:"key_prefix"`
}

// RetryConfig 外部调用重试策略
type RetryConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	BaseDelay   string `yaml:"base_delay"`
	MaxDelay    string `yaml:"max_delay"`
	Jitter      bool   `yaml:"jitter"`
}

// ServerConfig 定义服务器配置
type ServerConfig struct {
	Address     string   `yaml:"address"`  // 例如 ":8080" or "0.0.0.0:8080"
	APIKeys     []string `yaml:"api_keys"` // 为空时不启用鉴权
	MaxUploadMB int      `yaml:"max_upload_mb"`
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC 地址
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoadConfig 从文件加载配置。未指定路径时按常见位置查找，找不到则使用默认配置。
// 文件中未出现的字段保留默认值，随后应用环境变量覆盖并校验。
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = findConfigFile()
		if configPath == "" {
			config := createDefaultConfig()
			applyEnvOverrides(config)
			return config, nil
		}
	}

	if _, err := os.Stat(configPath); err != nil {
		return nil, fmt.Errorf("配置文件不存在: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := createDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func findConfigFile() string {
	searchPaths := []string{
		"config.yaml",
		"../config.yaml",
		"../../config.yaml",
		filepath.Join(os.Getenv("HOME"), ".resume-match", "config.yaml"),
	}
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		searchPaths = append(searchPaths,
			filepath.Join(execDir, "config.yaml"),
			filepath.Join(execDir, "..", "config.yaml"))
	}
	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// applyEnvOverrides 从环境变量覆盖配置（如果存在）
func applyEnvOverrides(config *Config) {
	if envKey := os.Getenv("LLM_API_KEY"); envKey != "" {
		config.LLM.APIKey = envKey
	}
	if envURL := os.Getenv("LLM_API_URL"); envURL != "" {
		config.LLM.APIURL = envURL
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		config.LLM.Model = envModel
	}
}

// Validate 检查配置的一致性
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.MatcherWeights(); err != nil {
		errs = append(errs, fmt.Errorf("matcher: %w", err))
	}
	if c.Cache.RedisEnabled && c.Redis.Address == "" {
		errs = append(errs, errors.New("cache.redis_enabled requires redis.address"))
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must not be negative, got %d", c.Retry.MaxAttempts))
	}
	return errors.Join(errs...)
}

// MatcherWeights 返回配置的评分权重：显式权重表优先，否则按模式选择预设
func (c *Config) MatcherWeights() (matcher.Weights, error) {
	if len(c.Matcher.Weights) > 0 {
		return matcher.WeightsFromMap(c.Matcher.Weights)
	}
	return matcher.Preset(c.Matcher.Mode)
}

// 创建默认配置
func createDefaultConfig() *Config {
	config := &Config{}

	config.LLM.APIURL = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	config.LLM.Model = "qwen-plus"
	config.LLM.Timeout = "60s"
	config.LLM.Temperature = 0.1
	config.LLM.MinInterval = "0s"
	config.LLM.QPM = 30
	config.LLM.ModelQPMLimits = map[string]int{
		"qwen-max":          1200,
		"qwen-max-latest":   1200,
		"qwen-plus":         15000,
		"qwen-plus-latest":  15000,
		"qwen-turbo":        1200,
		"qwen-turbo-latest": 1200,
	}

	config.Extractor.Enabled = true
	config.Extractor.Cooldown = "5m"

	config.Matcher.Mode = matcher.ModeFull
	config.Matcher.UseLLMAnalysis = true
	config.Matcher.RankConcurrency = 4

	config.Cache.TTL = "5m"
	config.Cache.Capacity = 1000
	config.Cache.KeyPrefix = constants.KeyLLMResultPrefix

	config.Retry.MaxAttempts = 3
	config.Retry.BaseDelay = "500ms"
	config.Retry.MaxDelay = "8s"
	config.Retry.Jitter = true

	// Redis默认配置
	config.Redis.Address = "localhost:6379"
	config.Redis.PoolSize = 10
	config.Redis.MinIdleConns = 2
	config.Redis.DialTimeoutSeconds = 5
	config.Redis.ReadTimeoutSeconds = 3
	config.Redis.WriteTimeoutSeconds = 3
	config.Redis.MaxRetries = 3
	config.Redis.MinRetryBackoffMS = 8
	config.Redis.MaxRetryBackoffMS = 512
	config.Redis.ConnMaxLifetimeMinutes = 60
	config.Redis.ConnMaxIdleTimeMinutes = 30

	config.Server.Address = ":8080"
	config.Server.MaxUploadMB = constants.DefaultMaxUploadMB

	// 日志默认配置
	config.Logger.Level = "info"
	config.Logger.Format = "pretty"
	config.Logger.TimeFormat = "2006-01-02 15:04:05"
	config.Logger.ReportCaller = true

	config.Tracing.ServiceName = constants.ServiceName
	config.Tracing.Endpoint = "localhost:4317"
	config.Tracing.SampleRatio = 1.0

	return config
}

// DefaultConfig 返回默认配置的副本
func DefaultConfig() *Config {
	return createDefaultConfig()
}

// CreateSampleConfig 创建一个示例配置文件
func CreateSampleConfig(filePath string) error {
	if _, err := os.Stat(filePath); err == nil {
		return fmt.Errorf("文件 '%s' 已存在，不会覆盖", filePath)
	}

	data, err := yaml.Marshal(createDefaultConfig())
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("写入示例配置文件 '%s' 失败: %w", filePath, err)
	}
	return nil
}

// GetModelForTask 根据任务名称获取合适的模型
// 如果任务专用模型存在则返回专用模型，否则返回默认模型
func (c *Config) GetModelForTask(taskName string) string {
	if model, ok := c.LLM.TaskModels[strings.ToLower(taskName)]; ok && model != "" {
		return model
	}
	return c.LLM.Model
}

// GetDuration utility to parse duration strings from config
func GetDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	if durationStr == "" {
		return defaultDuration
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil {
		return defaultDuration
	}
	return d
}
