package evaluator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/bbalet/stopwords"
)

var (
	// 连续空白折叠为单个空格
	whitespaceRe = regexp.MustCompile(`\s+`)
	// 去除标点（保留字母数字下划线和空白）
	punctuationRe = regexp.MustCompile(`[^\w\s]`)
)

// TextNormalizer 将原始文本清洗为适合词法重叠比较的token流
// 处理顺序：折叠空白 → 去标点 → 小写 → 去停用词 → 词形还原 → 单空格拼接
// 构造完成后为只读，可被并发的评估请求共享
type TextNormalizer struct {
	lemmatizer *golem.Lemmatizer
}

// NewTextNormalizer 创建文本归一化器，加载英文词形还原词典
// 词典加载只在构造时发生一次，失败则整个评估器不可用
func NewTextNormalizer() (*TextNormalizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("加载词形还原词典失败: %w", err)
	}
	return &TextNormalizer{lemmatizer: lemmatizer}, nil
}

// Normalize 归一化文本
// 保证：输出为空格拼接的小写词元流；空输入返回空串；任何输入都不会panic
func (n *TextNormalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// 基础清洗
	cleaned := whitespaceRe.ReplaceAllString(text, " ")
	cleaned = punctuationRe.ReplaceAllString(cleaned, "")
	cleaned = strings.ToLower(cleaned)

	// 去停用词（同时会再次压缩空白）
	cleaned = stopwords.CleanString(cleaned, "en", false)

	// 逐token词形还原
	tokens := strings.Fields(cleaned)
	lemmas := make([]string, 0, len(tokens))
	for _, token := range tokens {
		lemma := n.lemmatizer.Lemma(token)
		if lemma == "" {
			lemma = token
		}
		lemmas = append(lemmas, lemma)
	}

	return strings.Join(lemmas, " ")
}

// Tokens 归一化后按空白切分的token序列，顺序与文本中首次出现一致
func (n *TextNormalizer) Tokens(text string) []string {
	normalized := n.Normalize(text)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}
