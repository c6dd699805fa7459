package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// TikaTextExtractor 基于Apache Tika服务器的文本提取器
// Tika自行探测文档格式，因此PDF和DOCX共用同一条提取路径
type TikaTextExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 日志记录
	logger *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaTextExtractor)

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaTextExtractor) {
		e.logger = logger
	}
}

// WithTikaTimeout 配置HTTP客户端超时时间
func WithTikaTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaTextExtractor) {
		e.Client.Timeout = timeout
	}
}

// 确保TikaTextExtractor实现了TextExtractor接口
var _ TextExtractor = (*TikaTextExtractor)(nil)

// NewTikaTextExtractor 创建一个新的Tika文本提取器
func NewTikaTextExtractor(serverURL string, options ...TikaOption) *TikaTextExtractor {
	client := &http.Client{
		Timeout: 60 * time.Second,
	}

	extractor := &TikaTextExtractor{
		ServerURL: strings.TrimSuffix(serverURL, "/"),
		Client:    client,
		logger:    log.New(os.Stderr, "[Tika提取器] ", log.LstdFlags),
	}

	// 应用选项
	for _, option := range options {
		option(extractor)
	}

	return extractor
}

// ExtractText 通过Tika服务器提取纯文本
// PUT /tika，Accept: text/plain，由服务端自动识别文档类型
func (e *TikaTextExtractor) ExtractText(ctx context.Context, reader io.Reader, uri string) (string, error) {
	startTime := time.Now()
	e.logger.Printf("开始通过Tika提取文本 (URI: %s)", uri)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+"/tika", reader)
	if err != nil {
		return "", fmt.Errorf("创建Tika请求失败: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := e.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("调用Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取Tika响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Tika服务器返回错误, 状态码: %d, 响应: %.200s", resp.StatusCode, string(body))
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyExtraction
	}

	e.logger.Printf("Tika提取完成: %d 个字符 (用时 %.2f秒)", len(text), time.Since(startTime).Seconds())
	return text, nil
}
