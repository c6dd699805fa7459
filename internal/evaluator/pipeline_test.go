package evaluator

import (
	"context"
	"math"
	"strings"
	"testing"

	"resume-evaluator-go/internal/parser"
	"resume-evaluator-go/internal/types"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedEmbedder 第一次批量调用返回预设向量（评分批次），
// 之后的调用（证据句批次）返回零向量
type scriptedEmbedder struct {
	scoringVectors [][]float64
	calls          int
}

func (s *scriptedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	s.calls++
	if s.calls == 1 {
		return s.scoringVectors, nil
	}
	vectors := make([][]float64, len(texts))
	for i := range vectors {
		vectors[i] = []float64{0, 0}
	}
	return vectors, nil
}

func (s *scriptedEmbedder) GetDimensions() int {
	return 2
}

// rawVector 构造与参照向量[1,0]余弦相似度恰好为raw的单位向量
func rawVector(raw float64) []float64 {
	return []float64{raw, math.Sqrt(1 - raw*raw)}
}

func newTestPipeline(t *testing.T, embedder TextEmbedder) *RankingPipeline {
	t.Helper()
	normalizer, err := NewTextNormalizer()
	require.NoError(t, err, "创建归一化器失败")

	recognizer := &fakeRecognizer{}
	extractor := NewEntityExtractor(recognizer, zerolog.Nop())
	scorer := NewRelevanceScorer(embedder, zerolog.Nop())
	explainer := NewExplanationGenerator(extractor, normalizer)
	return NewRankingPipeline(normalizer, extractor, scorer, explainer, zerolog.Nop())
}

func TestEvaluateRankingAndScores(t *testing.T) {
	// 评分批次: [参照, 候选1, 候选2]，原始分分别为0.9和0.5
	embedder := &scriptedEmbedder{
		scoringVectors: [][]float64{
			{1, 0},
			rawVector(0.9),
			rawVector(0.5),
		},
	}
	pipeline := newTestPipeline(t, embedder)

	results, err := pipeline.Evaluate(context.Background(), "senior backend engineer role", []types.CandidateInput{
		{Filename: "strong.pdf", Text: "python django redis"},
		{Filename: "weak.pdf", Text: "photoshop sketching"},
	})
	require.NoError(t, err, "评估不应失败")
	require.Len(t, results, 2)

	// 0.9 → 86.67, 0.5 → 33.33
	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, "strong.pdf", results[0].Filename)
	assert.InDelta(t, 86.67, results[0].Score, 0.01)
	assert.True(t, strings.HasPrefix(results[0].Reason, "Excellent Match!"), "86.67分应为Excellent: %s", results[0].Reason)

	assert.Equal(t, 2, results[1].Rank)
	assert.Equal(t, "weak.pdf", results[1].Filename)
	assert.InDelta(t, 33.33, results[1].Score, 0.01)
	assert.True(t, strings.HasPrefix(results[1].Reason, "Potential Match."), "33.33分应为Potential: %s", results[1].Reason)
}

func TestEvaluateReordersByScore(t *testing.T) {
	// 输入顺序与分数顺序相反，结果应按分数降序
	embedder := &scriptedEmbedder{
		scoringVectors: [][]float64{
			{1, 0},
			rawVector(0.3),
			rawVector(0.8),
		},
	}
	pipeline := newTestPipeline(t, embedder)

	results, err := pipeline.Evaluate(context.Background(), "reference role", []types.CandidateInput{
		{Filename: "low.pdf", Text: "irrelevant experience"},
		{Filename: "high.pdf", Text: "relevant experience"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "high.pdf", results[0].Filename, "高分候选应排在第一")
	assert.Equal(t, "low.pdf", results[1].Filename)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestEvaluateStableTieBreak(t *testing.T) {
	// 同分候选按输入顺序获得名次
	embedder := &scriptedEmbedder{
		scoringVectors: [][]float64{
			{1, 0},
			rawVector(0.6),
			rawVector(0.6),
		},
	}
	pipeline := newTestPipeline(t, embedder)

	results, err := pipeline.Evaluate(context.Background(), "reference role", []types.CandidateInput{
		{Filename: "first.pdf", Text: "experience one"},
		{Filename: "second.pdf", Text: "experience two"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "first.pdf", results[0].Filename, "同分时应保持输入顺序")
	assert.Equal(t, "second.pdf", results[1].Filename)
	assert.Equal(t, results[0].Score, results[1].Score)
}

func TestEvaluateEmptyReference(t *testing.T) {
	pipeline := newTestPipeline(t, &scriptedEmbedder{})

	_, err := pipeline.Evaluate(context.Background(), "   \n ", []types.CandidateInput{
		{Filename: "a.pdf", Text: "text"},
	})
	assert.ErrorIs(t, err, ErrEmptyReference, "空参照文本应返回专用错误")
}

func TestEvaluateReferenceNormalizesToEmpty(t *testing.T) {
	embedder := &scriptedEmbedder{}
	pipeline := newTestPipeline(t, embedder)

	// 非空白但全由停用词和标点组成，归一化后没有任何内容
	_, err := pipeline.Evaluate(context.Background(), "the, and, of!!! ...", []types.CandidateInput{
		{Filename: "a.pdf", Text: "text"},
	})
	assert.ErrorIs(t, err, ErrEmptyReference, "归一化后为空的参照文本应返回专用错误")
	assert.Zero(t, embedder.calls, "参照无效时不应触发嵌入调用")
}

func TestEvaluateNoCandidates(t *testing.T) {
	pipeline := newTestPipeline(t, &scriptedEmbedder{})

	_, err := pipeline.Evaluate(context.Background(), "reference", nil)
	assert.ErrorIs(t, err, ErrNoCandidates, "无候选应返回专用错误")
}

// 确保fakeRecognizer满足接口
var _ parser.EntityRecognizer = (*fakeRecognizer)(nil)
