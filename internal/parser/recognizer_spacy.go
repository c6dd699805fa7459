package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

// SpacyEntityRecognizer 通过HTTP调用spaCy sidecar服务的命名实体识别器
// sidecar加载 en_core_web_sm 模型并暴露 POST /ents 接口
type SpacyEntityRecognizer struct {
	// ServerURL sidecar服务地址，例如 http://localhost:8090
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 日志记录
	logger *log.Logger
}

// SpacyOption 定义配置选项函数
type SpacyOption func(*SpacyEntityRecognizer)

// WithSpacyLogger 配置自定义日志记录器
func WithSpacyLogger(logger *log.Logger) SpacyOption {
	return func(r *SpacyEntityRecognizer) {
		r.logger = logger
	}
}

// WithSpacyTimeout 配置HTTP客户端超时时间
func WithSpacyTimeout(timeout time.Duration) SpacyOption {
	return func(r *SpacyEntityRecognizer) {
		r.Client.Timeout = timeout
	}
}

// 确保SpacyEntityRecognizer实现了EntityRecognizer接口
var _ EntityRecognizer = (*SpacyEntityRecognizer)(nil)

// NewSpacyEntityRecognizer 创建spaCy sidecar识别器
func NewSpacyEntityRecognizer(serverURL string, options ...SpacyOption) *SpacyEntityRecognizer {
	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	recognizer := &SpacyEntityRecognizer{
		ServerURL: strings.TrimSuffix(serverURL, "/"),
		Client:    client,
		logger:    log.New(os.Stderr, "[spaCy识别器] ", log.LstdFlags),
	}

	// 应用选项
	for _, option := range options {
		option(recognizer)
	}

	return recognizer
}

// spacyEntsRequest sidecar请求结构
type spacyEntsRequest struct {
	Text string `json:"text"`
}

// spacyEntsResponse sidecar响应结构
type spacyEntsResponse struct {
	Ents []Entity `json:"ents"`
}

// Recognize 识别文本中的命名实体
func (r *SpacyEntityRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if text == "" {
		return []Entity{}, nil
	}

	jsonData, err := json.Marshal(spacyEntsRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("序列化NER请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.ServerURL+"/ents", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建NER请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("调用NER服务失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取NER响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NER服务返回错误, 状态码: %d, 响应: %.200s", resp.StatusCode, string(body))
	}

	var parsed spacyEntsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("解析NER响应失败: %w", err)
	}

	if parsed.Ents == nil {
		return []Entity{}, nil
	}
	return parsed.Ents, nil
}
