package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// 单个文档的解析超时
const defaultPDFTimeout = 30 * time.Second

// EinoPDFTextExtractor 使用 Eino PDF Parser 把文档转换为纯文本
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	timeout time.Duration
	logger  *log.Logger
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger *log.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEinoTimeout 设置单个文档的解析超时
func WithEinoTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器。
// 不按页面分割，整个文档的文本作为一个字符串返回。
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		timeout: defaultPDFTimeout,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractText 从文档字节中提取文本，失败时返回包装了 ErrDocumentConversion 的错误
func (e *EinoPDFTextExtractor) ExtractText(ctx context.Context, data []byte, filename string) (string, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), filename)
}

// ExtractFromFile 从本地文件提取文本
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open document %s: %w", filePath, err)
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil {
		e.logger.Printf("文档大小: %.2f MB (%s)", float64(info.Size())/1024/1024, filePath)
	}
	return e.ExtractTextFromReader(ctx, file, filePath)
}

// ExtractTextFromReader 从 io.Reader 中提取文本，多个文档的内容以空行连接
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string) (string, error) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(map[string]any{
			"source":          uri,
			"extraction_time": startTime.Format(time.RFC3339),
		}),
	)
	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("文档解析失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", fmt.Errorf("%w: %s: %v", ErrDocumentConversion, uri, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: %s: parser returned no documents", ErrDocumentConversion, uri)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc != nil && strings.TrimSpace(doc.Content) != "" {
			parts = append(parts, doc.Content)
		}
	}
	text := strings.Join(parts, "\n\n")
	e.logger.Printf("文档解析完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), duration.Seconds())
	return text, nil
}
