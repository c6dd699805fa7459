package evaluator

import (
	"context"
	"strings"

	"resume-evaluator-go/internal/parser"

	"github.com/rs/zerolog"
)

// minSkillLength 技能字符串的长度下限，长度不超过2的一律丢弃
// "Go"、"AI"这类双字符技能也会被过滤，3字符起才保留
const minSkillLength = 2

// EntityExtractor 从文档中提取去重后的"技能"字符串集合
// 以 {ORG, PRODUCT, LANGUAGE, GPE} 四类命名实体作为技能/工具的启发式代理
type EntityExtractor struct {
	recognizer parser.EntityRecognizer
	logger     zerolog.Logger
}

// NewEntityExtractor 创建技能提取器
func NewEntityExtractor(recognizer parser.EntityRecognizer, logger zerolog.Logger) *EntityExtractor {
	return &EntityExtractor{
		recognizer: recognizer,
		logger:     logger,
	}
}

// ExtractSkills 提取文本中的候选技能
// 返回trim后的表面形式，大小写敏感去重，按首次出现顺序排列
// 识别器不可用或文本为空时返回空切片，从不返回错误——
// 技能缺失只是信号减弱，由解释生成器的词法回退兜底
func (e *EntityExtractor) ExtractSkills(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	entities, err := e.recognizer.Recognize(ctx, text)
	if err != nil {
		e.logger.Warn().Err(err).Msg("命名实体识别失败，按空技能集处理")
		return []string{}
	}

	seen := make(map[string]bool, len(entities))
	skills := make([]string, 0, len(entities))
	for _, ent := range entities {
		if !parser.SkillEntityCategories[ent.Label] {
			continue
		}
		surface := strings.TrimSpace(ent.Text)
		if len(surface) <= minSkillLength {
			continue
		}
		if seen[surface] {
			continue
		}
		seen[surface] = true
		skills = append(skills, surface)
	}

	return skills
}
