package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrEmptyExtraction 表示提取成功返回但没有任何文本内容
// 原实现用空字符串隐式表示失败，这里将其显式化为错误，便于上层判定和测试
var ErrEmptyExtraction = errors.New("提取结果为空文本")

// TextExtractor 文档文本提取接口
// 对提取失败显式返回error，调用方据此排除该文档而不是依赖空字符串约定
type TextExtractor interface {
	// ExtractText 从reader中提取纯文本
	// uri 为资源标识（通常是文件名），用于格式判断和日志
	ExtractText(ctx context.Context, reader io.Reader, uri string) (string, error)
}

// CompositeExtractor 按扩展名路由的提取器
// .txt 直接读取，其余格式（PDF/DOCX等）交给内部提取器处理
type CompositeExtractor struct {
	inner TextExtractor
}

// NewCompositeExtractor 创建格式路由提取器
func NewCompositeExtractor(inner TextExtractor) *CompositeExtractor {
	return &CompositeExtractor{inner: inner}
}

var _ TextExtractor = (*CompositeExtractor)(nil)

// ExtractText 实现 TextExtractor 接口
func (c *CompositeExtractor) ExtractText(ctx context.Context, reader io.Reader, uri string) (string, error) {
	ext := strings.ToLower(filepath.Ext(uri))
	if ext == ".txt" {
		data, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("读取文本文件失败: %w", err)
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			return "", ErrEmptyExtraction
		}
		return text, nil
	}

	if c.inner == nil {
		return "", fmt.Errorf("没有可处理 %s 格式的提取器", ext)
	}
	return c.inner.ExtractText(ctx, reader, uri)
}
