package parser

import (
	"context"
)

// EntityCategory 命名实体类别
type EntityCategory string

const (
	CategoryORG      EntityCategory = "ORG"      // 组织机构
	CategoryPRODUCT  EntityCategory = "PRODUCT"  // 产品
	CategoryLANGUAGE EntityCategory = "LANGUAGE" // 语言/技术
	CategoryGPE      EntityCategory = "GPE"      // 地缘政治实体
	CategoryPERSON   EntityCategory = "PERSON"   // 人名
)

// SkillEntityCategories 作为技能代理提取的实体类别
// 这是启发式策略而非精选技能词典，地名等误报是预期内的
var SkillEntityCategories = map[EntityCategory]bool{
	CategoryORG:      true,
	CategoryPRODUCT:  true,
	CategoryLANGUAGE: true,
	CategoryGPE:      true,
}

// Entity 识别出的单个命名实体
type Entity struct {
	// Text 实体的表面文本
	Text string `json:"text"`
	// Label 实体类别
	Label EntityCategory `json:"label"`
}

// EntityRecognizer 命名实体识别接口
// 实现方在文本为空或识别不到实体时返回空切片而非错误
type EntityRecognizer interface {
	// Recognize 识别文本中的全部命名实体，顺序与文本中出现的顺序一致
	Recognize(ctx context.Context, text string) ([]Entity, error)
}
