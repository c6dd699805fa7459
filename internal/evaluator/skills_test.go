package evaluator

import (
	"context"
	"errors"
	"testing"

	"resume-evaluator-go/internal/parser"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// errorRecognizer 总是失败的识别器替身
type errorRecognizer struct{}

func (e *errorRecognizer) Recognize(ctx context.Context, text string) ([]parser.Entity, error) {
	return nil, errors.New("识别服务不可用")
}

func TestExtractSkillsFiltersAndDedups(t *testing.T) {
	recognizer := &fakeRecognizer{
		entitiesFor: func(string) []parser.Entity {
			return []parser.Entity{
				{Text: "  Python  ", Label: parser.CategoryLANGUAGE}, // 应trim
				{Text: "Google", Label: parser.CategoryORG},
				{Text: "Go", Label: parser.CategoryPRODUCT},    // 长度不足，过滤
				{Text: "Alice", Label: parser.CategoryPERSON},  // 非技能类别，过滤
				{Text: "Google", Label: parser.CategoryORG},    // 重复，过滤
				{Text: "Berlin", Label: parser.CategoryGPE},    // GPE按技能代理保留
			}
		},
	}
	extractor := NewEntityExtractor(recognizer, zerolog.Nop())

	skills := extractor.ExtractSkills(context.Background(), "some resume text")

	assert.Equal(t, []string{"Python", "Google", "Berlin"}, skills, "应trim、过滤并按首次出现顺序去重")
}

func TestExtractSkillsEmptyText(t *testing.T) {
	extractor := NewEntityExtractor(&fakeRecognizer{}, zerolog.Nop())

	assert.Empty(t, extractor.ExtractSkills(context.Background(), ""), "空文本应返回空切片")
	assert.Empty(t, extractor.ExtractSkills(context.Background(), "  \n "), "纯空白文本应返回空切片")
}

func TestExtractSkillsRecognizerFailure(t *testing.T) {
	extractor := NewEntityExtractor(&errorRecognizer{}, zerolog.Nop())

	skills := extractor.ExtractSkills(context.Background(), "some resume text")
	assert.Empty(t, skills, "识别失败应降级为空技能集而非错误")
}
