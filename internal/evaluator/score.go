package evaluator

import (
	"math"
)

// 分数换算标定常量
// 该领域内嵌入模型的余弦分数经验上落在 [0.2, 1.0] 区间，
// 仿射变换将这一区间拉伸到百分制：0.25→0, 0.625→50, 1.0→100
// 这些是可调参数而非学习值，调整时同步更新测试中的断点
const (
	// ScoreFloor 低于此原始分视为0%
	ScoreFloor = 0.25
	// ScoreBand 原始分有效带宽，(raw-ScoreFloor)/ScoreBand 映射到 [0,1]
	ScoreBand = 0.75
)

// 解释模板分层阈值（作用于归一化后的百分制分数）
const (
	// TierExcellentThreshold 达到即为 Excellent Match
	TierExcellentThreshold = 70.0
	// TierPotentialThreshold 达到即为 Potential Match，低于则为 Low Match
	TierPotentialThreshold = 30.0
)

// NormalizeScore 将原始余弦相似度映射为 [0,100] 的百分制分数
// 纯函数：确定、单调、两端截断
func NormalizeScore(rawScore float64) float64 {
	normalized := math.Max(0, (rawScore-ScoreFloor)/ScoreBand) * 100
	return math.Min(normalized, 100.0)
}
