package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"resume-match-go/internal/config"
	"resume-match-go/internal/logger"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/processor"
	"resume-match-go/internal/types"
)

const usage = `用法:
  resumecli parse -f <简历文件> [-c config.yaml]
  resumecli match -f <简历文件> -j <岗位.yaml> [--mode full|simple] [-c config.yaml]
  resumecli rank  -j <岗位.yaml> <简历文件>... [--mode full|simple] [-c config.yaml]

.pdf 文件先转换为文本，其它文件按 UTF-8 文本读取。结果以 JSON 输出到标准输出。`

// commonFlags 各子命令共享的参数
type commonFlags struct {
	configPath string
	mode       string
	verbose    bool
	timeout    time.Duration
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "parse":
		err = runParse(os.Args[2:], os.Stdout)
	case "match":
		err = runMatch(os.Args[2:], os.Stdout)
	case "rank":
		err = runRank(os.Args[2:], os.Stdout)
	case "-h", "--help", "help":
		fmt.Fprintln(os.Stdout, usage)
		return
	default:
		err = fmt.Errorf("未知命令 '%s'", os.Args[1])
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n\n%s\n", err, usage)
		os.Exit(1)
	}
}

func newFlagSet(name string, common *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringVarP(&common.configPath, "config", "c", "", "配置文件路径")
	fs.StringVar(&common.mode, "mode", "", "评分模式 full|simple，覆盖配置")
	fs.BoolVarP(&common.verbose, "verbose", "v", false, "输出调试日志到标准错误")
	fs.DurationVar(&common.timeout, "timeout", 2*time.Minute, "整体超时")
	return fs
}

func runParse(args []string, out io.Writer) error {
	var common commonFlags
	var file string
	fs := newFlagSet("parse", &common)
	fs.StringVarP(&file, "file", "f", "", "简历文件 (必填)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" {
		return fmt.Errorf("必须提供 -f")
	}

	ctx, cancel := context.WithTimeout(context.Background(), common.timeout)
	defer cancel()
	svc, err := newService(ctx, common)
	if err != nil {
		return err
	}
	defer svc.Close()

	resume, err := parseFile(ctx, svc, file)
	if err != nil {
		return err
	}
	return writeJSON(out, resume)
}

func runMatch(args []string, out io.Writer) error {
	var common commonFlags
	var file, jobFile string
	fs := newFlagSet("match", &common)
	fs.StringVarP(&file, "file", "f", "", "简历文件 (必填)")
	fs.StringVarP(&jobFile, "job", "j", "", "岗位要求 YAML 文件 (必填)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if file == "" || jobFile == "" {
		return fmt.Errorf("必须提供 -f 和 -j")
	}

	job, err := loadJob(jobFile)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), common.timeout)
	defer cancel()
	svc, err := newService(ctx, common)
	if err != nil {
		return err
	}
	defer svc.Close()

	resume, err := parseFile(ctx, svc, file)
	if err != nil {
		return err
	}
	return writeJSON(out, struct {
		Resume types.ParsedResume `json:"resume"`
		Match  types.MatchResult  `json:"match"`
	}{resume, svc.Match(ctx, resume, job, nil)})
}

func runRank(args []string, out io.Writer) error {
	var common commonFlags
	var jobFile string
	fs := newFlagSet("rank", &common)
	fs.StringVarP(&jobFile, "job", "j", "", "岗位要求 YAML 文件 (必填)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	files := fs.Args()
	if jobFile == "" || len(files) == 0 {
		return fmt.Errorf("必须提供 -j 和至少一个简历文件")
	}

	job, err := loadJob(jobFile)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), common.timeout)
	defer cancel()
	svc, err := newService(ctx, common)
	if err != nil {
		return err
	}
	defer svc.Close()

	resumes := make([]types.ParsedResume, 0, len(files))
	for _, f := range files {
		r, err := parseFile(ctx, svc, f)
		if err != nil {
			return err
		}
		resumes = append(resumes, r)
	}
	ranked, err := svc.Rank(ctx, resumes, job, nil)
	if err != nil {
		return err
	}

	type row struct {
		File   string            `json:"file"`
		Result types.MatchResult `json:"result"`
	}
	rows := make([]row, 0, len(ranked))
	for _, r := range ranked {
		rows = append(rows, row{File: files[r.Index], Result: r.Result})
	}
	return writeJSON(out, rows)
}

// newService 按配置创建服务；--mode 覆盖配置中的评分模式
func newService(ctx context.Context, common commonFlags) (*processor.ResumeService, error) {
	cfg, err := config.LoadConfig(common.configPath)
	if err != nil {
		return nil, err
	}
	if common.mode != "" {
		if _, err := matcher.Preset(common.mode); err != nil {
			return nil, err
		}
		cfg.Matcher.Mode = common.mode
		cfg.Matcher.Weights = nil
	}

	level := "warn"
	if common.verbose {
		level = "debug"
	}
	zl := logger.Init(logger.Config{Level: level, Format: "pretty", TimeFormat: "15:04:05", Output: os.Stderr})
	if !common.verbose {
		zl = zl.Level(zerolog.WarnLevel)
	}
	return processor.NewResumeServiceFromConfig(ctx, cfg, &zl)
}

func parseFile(ctx context.Context, svc *processor.ResumeService, path string) (types.ParsedResume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ParsedResume{}, fmt.Errorf("读取简历文件失败: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return svc.ParseDocument(ctx, data, filepath.Base(path)), nil
	}
	return svc.Parse(ctx, string(data)), nil
}

func loadJob(path string) (types.JobRequirement, error) {
	var job types.JobRequirement
	data, err := os.ReadFile(path)
	if err != nil {
		return job, fmt.Errorf("读取岗位文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, &job); err != nil {
		return job, fmt.Errorf("解析岗位文件失败: %w", err)
	}
	return job, nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
