package parser

import (
	"context"
	"fmt"

	prose "github.com/jdkato/prose/v2"
)

// ProseEntityRecognizer 基于prose库的本地命名实体识别器
// 不依赖外部服务，作为未配置spaCy sidecar时的默认实现
// prose的NER类别覆盖面比spaCy窄，识别质量以sidecar为准
type ProseEntityRecognizer struct{}

// 确保ProseEntityRecognizer实现了EntityRecognizer接口
var _ EntityRecognizer = (*ProseEntityRecognizer)(nil)

// NewProseEntityRecognizer 创建本地识别器
func NewProseEntityRecognizer() *ProseEntityRecognizer {
	return &ProseEntityRecognizer{}
}

// Recognize 识别文本中的命名实体
func (r *ProseEntityRecognizer) Recognize(ctx context.Context, text string) ([]Entity, error) {
	if text == "" {
		return []Entity{}, nil
	}

	// prose不支持上下文取消，先检查一次避免无谓计算
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithTagging(true),
		prose.WithExtraction(true),
	)
	if err != nil {
		return nil, fmt.Errorf("prose文档分析失败: %w", err)
	}

	ents := doc.Entities()
	entities := make([]Entity, 0, len(ents))
	for _, ent := range ents {
		entities = append(entities, Entity{
			Text:  ent.Text,
			Label: EntityCategory(ent.Label),
		})
	}
	return entities, nil
}
