package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeScore(t *testing.T) {
	testCases := []struct {
		name     string
		rawScore float64
		expected float64
	}{
		{"下界对齐零分", 0.25, 0},
		{"中点对齐五十分", 0.625, 50},
		{"上界对齐满分", 1.0, 100},
		{"低于下界截断为零", 0.1, 0},
		{"负相似度截断为零", -0.5, 0},
		{"超过上界截断为满分", 1.2, 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, NormalizeScore(tc.rawScore), 1e-9, "分数换算结果不符合预期")
		})
	}
}

func TestNormalizeScoreMonotonic(t *testing.T) {
	// 有效区间内换算应当严格单调
	prev := NormalizeScore(0.25)
	for raw := 0.30; raw <= 1.0; raw += 0.05 {
		current := NormalizeScore(raw)
		assert.Greater(t, current, prev, "分数换算在 raw=%.2f 处不单调", raw)
		prev = current
	}
}
