package evaluator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"resume-evaluator-go/internal/types"

	"github.com/rs/zerolog"
)

var (
	// ErrEmptyReference 参照文档没有可用文本，整次评估无法进行
	ErrEmptyReference = errors.New("参照文档文本为空")
	// ErrNoCandidates 没有任何有效候选文档
	ErrNoCandidates = errors.New("没有有效的候选文档")
)

// RankingPipeline 评估编排器
// 对每个候选：归一化 → 批量评分 → 分数换算 → 技能提取 → 证据句定位 → 生成理由，
// 最后按归一化分数降序排序并分配名次
// 管道本身无状态，每次 Evaluate 调用的中间数据相互独立
type RankingPipeline struct {
	normalizer *TextNormalizer
	extractor  *EntityExtractor
	scorer     *RelevanceScorer
	explainer  *ExplanationGenerator
	logger     zerolog.Logger
}

// NewRankingPipeline 创建评估管道
func NewRankingPipeline(
	normalizer *TextNormalizer,
	extractor *EntityExtractor,
	scorer *RelevanceScorer,
	explainer *ExplanationGenerator,
	logger zerolog.Logger,
) *RankingPipeline {
	return &RankingPipeline{
		normalizer: normalizer,
		extractor:  extractor,
		scorer:     scorer,
		explainer:  explainer,
		logger:     logger,
	}
}

// Evaluate 对一组候选文档执行完整评估
// candidates 按上传顺序传入；同分候选按该顺序获得名次（稳定排序）
// 批量评分失败对整次评估是致命的——没有分数就没有任何有意义的部分结果；
// 单个候选的证据句提取失败只降级为空串，不影响其余候选
func (p *RankingPipeline) Evaluate(ctx context.Context, referenceText string, candidates []types.CandidateInput) ([]types.EvaluationResult, error) {
	if strings.TrimSpace(referenceText) == "" {
		return nil, ErrEmptyReference
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	startTime := time.Now()

	// 1. 归一化参照与候选文本，用于语义评分
	// 全是停用词/标点的参照归一化后为空，等同于没有参照文本
	normalizedReference := p.normalizer.Normalize(referenceText)
	if strings.TrimSpace(normalizedReference) == "" {
		return nil, ErrEmptyReference
	}
	normalizedCandidates := make([]string, len(candidates))
	for i, candidate := range candidates {
		normalizedCandidates[i] = p.normalizer.Normalize(candidate.Text)
	}

	// 2. 一次批量调用计算全部原始分
	rawScores, err := p.scorer.ScoreAll(ctx, normalizedReference, normalizedCandidates)
	if err != nil {
		return nil, fmt.Errorf("计算相似度失败: %w", err)
	}
	if len(rawScores) != len(candidates) {
		return nil, fmt.Errorf("分数数量(%d)与候选数量(%d)不一致", len(rawScores), len(candidates))
	}

	// 3. 逐候选组装结果，名次先置0，排序后统一分配
	results := make([]types.EvaluationResult, 0, len(candidates))
	for i, candidate := range candidates {
		rawScore := rawScores[i]
		normalizedScore := NormalizeScore(rawScore)

		p.logger.Debug().
			Str("filename", candidate.Filename).
			Float64("raw_score", rawScore).
			Float64("normalized_score", normalizedScore).
			Msg("候选评分完成")

		reason := p.explainer.Generate(ctx, normalizedScore, referenceText, candidate.Text)
		skills := p.extractor.ExtractSkills(ctx, candidate.Text)

		highlight, err := p.scorer.ExtractHighlight(ctx, referenceText, candidate.Text)
		if err != nil {
			// 证据句是增强信息，提取失败只降级，不中断整次评估
			p.logger.Warn().
				Err(err).
				Str("filename", candidate.Filename).
				Msg("证据句提取失败，降级为空")
			highlight = ""
		}

		results = append(results, types.EvaluationResult{
			Rank:      0,
			Filename:  candidate.Filename,
			Score:     math.Round(normalizedScore*100) / 100,
			Reason:    reason,
			Skills:    skills,
			Highlight: highlight,
		})
	}

	// 4. 按分数降序稳定排序，同分保持输入顺序
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	// 5. 分配名次
	for i := range results {
		results[i].Rank = i + 1
	}

	p.logger.Info().
		Int("candidates", len(candidates)).
		Dur("elapsed", time.Since(startTime)).
		Msg("评估完成")

	return results, nil
}
