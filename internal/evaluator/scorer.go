package evaluator

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	prose "github.com/jdkato/prose/v2"
	"github.com/rs/zerolog"
)

const (
	// minSentenceLength 证据句最短字符数，更短的视为标题或项目符号行
	minSentenceLength = 20
	// referenceTextCap 证据提取时参照文本的最大字符数，限制嵌入开销
	referenceTextCap = 2000
	// defaultHighlightThreshold 证据句最低余弦分，低于此值认为没有可信证据
	defaultHighlightThreshold = 0.25
	// defaultEmbedTimeout 单次嵌入调用默认超时
	defaultEmbedTimeout = 30 * time.Second
	// embedAttempts 嵌入调用总尝试次数（1次重试）
	embedAttempts = 2
)

// RelevanceScorer 基于句向量模型计算语义相关度
// 嵌入调用带超时并重试一次：嵌入是评估延迟的主要来源，
// 瞬时故障不应直接拖垮整批评估
type RelevanceScorer struct {
	embedder           TextEmbedder
	highlightThreshold float64
	embedTimeout       time.Duration
	logger             zerolog.Logger
}

// ScorerOption 评分器配置选项
type ScorerOption func(*RelevanceScorer)

// WithHighlightThreshold 覆盖证据句最低余弦分
func WithHighlightThreshold(threshold float64) ScorerOption {
	return func(s *RelevanceScorer) {
		s.highlightThreshold = threshold
	}
}

// WithEmbedTimeout 覆盖单次嵌入调用超时
func WithEmbedTimeout(timeout time.Duration) ScorerOption {
	return func(s *RelevanceScorer) {
		s.embedTimeout = timeout
	}
}

// NewRelevanceScorer 创建语义相关度评分器
func NewRelevanceScorer(embedder TextEmbedder, logger zerolog.Logger, options ...ScorerOption) *RelevanceScorer {
	scorer := &RelevanceScorer{
		embedder:           embedder,
		highlightThreshold: defaultHighlightThreshold,
		embedTimeout:       defaultEmbedTimeout,
		logger:             logger,
	}

	// 应用选项
	for _, option := range options {
		option(scorer)
	}

	return scorer
}

// ScoreAll 计算参照文本与每个候选文本的余弦相似度
// 全部文本合并为一次嵌入调用，输出顺序与候选输入顺序严格一致
// 参照文本为空或候选为空时返回空结果，不视为错误
func (s *RelevanceScorer) ScoreAll(ctx context.Context, referenceText string, candidateTexts []string) ([]float64, error) {
	if referenceText == "" || len(candidateTexts) == 0 {
		return []float64{}, nil
	}

	// 参照文本放在批次首位，其余按候选顺序排列
	batch := make([]string, 0, len(candidateTexts)+1)
	batch = append(batch, referenceText)
	batch = append(batch, candidateTexts...)

	vectors, err := s.embedWithRetry(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("批量嵌入失败: %w", err)
	}
	if len(vectors) != len(batch) {
		return nil, fmt.Errorf("嵌入结果数量(%d)与输入数量(%d)不一致", len(vectors), len(batch))
	}

	referenceVector := vectors[0]
	scores := make([]float64, len(candidateTexts))
	for i, candidateVector := range vectors[1:] {
		scores[i] = cosineSimilarity(referenceVector, candidateVector)
	}

	return scores, nil
}

// ExtractHighlight 在候选文本中定位与参照文本最相关的单个证据句
// 返回原文逐字句子；最高分不超过阈值时返回空串（没有可信证据）
// 相同分数时取最先出现的句子
func (s *RelevanceScorer) ExtractHighlight(ctx context.Context, referenceText string, candidateText string) (string, error) {
	if candidateText == "" {
		return "", nil
	}

	sentences := splitSentences(candidateText)
	if len(sentences) == 0 {
		return "", nil
	}

	// 参照文本截取前2000字符以限制嵌入开销
	cappedReference := capRunes(referenceText, referenceTextCap)

	// 参照文本与全部候选句合并为一次嵌入调用
	batch := make([]string, 0, len(sentences)+1)
	batch = append(batch, cappedReference)
	batch = append(batch, sentences...)

	vectors, err := s.embedWithRetry(ctx, batch)
	if err != nil {
		return "", fmt.Errorf("证据句嵌入失败: %w", err)
	}
	if len(vectors) != len(batch) {
		return "", fmt.Errorf("嵌入结果数量(%d)与输入数量(%d)不一致", len(vectors), len(batch))
	}

	referenceVector := vectors[0]
	bestIdx := 0
	bestScore := math.Inf(-1)
	for i, sentenceVector := range vectors[1:] {
		score := cosineSimilarity(referenceVector, sentenceVector)
		// 严格大于：同分保留最先出现的句子
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestScore > s.highlightThreshold {
		return sentences[bestIdx], nil
	}
	return "", nil
}

// embedWithRetry 带超时的嵌入调用，瞬时失败重试一次
func (s *RelevanceScorer) embedWithRetry(ctx context.Context, texts []string) ([][]float64, error) {
	var lastErr error
	for attempt := 1; attempt <= embedAttempts; attempt++ {
		embedCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
		vectors, err := s.embedder.EmbedStrings(embedCtx, texts)
		cancel()
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		s.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("batch_size", len(texts)).
			Msg("嵌入调用失败")

		// 调用方上下文已取消时不再重试
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

// splitSentences 用语言学分句器切分文本，并过滤掉过短的句子（标题/项目符号）
func splitSentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil
	}

	var sentences []string
	for _, sent := range doc.Sentences() {
		trimmed := strings.TrimSpace(sent.Text)
		if utf8.RuneCountInString(trimmed) > minSentenceLength {
			sentences = append(sentences, trimmed)
		}
	}
	return sentences
}

// capRunes 截取字符串的前n个字符
func capRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// cosineSimilarity 计算两个向量的余弦相似度，零向量或维度不一致时返回0
func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
