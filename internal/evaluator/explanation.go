package evaluator

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// maxDisplaySkills 每个集合在解释文案中最多展示的条目数
	maxDisplaySkills = 5
	// minFallbackTokenLength 词法回退时保留的最短token长度（长于3）
	minFallbackTokenLength = 3
)

// ExplanationGenerator 根据归一化分数与双方技能集合生成分层的推荐理由
// 优先使用NER技能对比；当实体信号不足时回退到词法token重叠
type ExplanationGenerator struct {
	extractor  *EntityExtractor
	normalizer *TextNormalizer
	titleCaser cases.Caser
}

// NewExplanationGenerator 创建解释生成器
func NewExplanationGenerator(extractor *EntityExtractor, normalizer *TextNormalizer) *ExplanationGenerator {
	return &ExplanationGenerator{
		extractor:  extractor,
		normalizer: normalizer,
		titleCaser: cases.Title(language.English),
	}
}

// Generate 生成推荐理由
// 保证返回非空字符串：技能集合为空时落到各层的通用措辞
func (g *ExplanationGenerator) Generate(ctx context.Context, normalizedScore float64, referenceText string, candidateText string) string {
	// 1. 提取双方技能并统一小写用于集合运算
	referenceSkills := lowercaseDedup(g.extractor.ExtractSkills(ctx, referenceText))
	candidateSkills := lowercaseDedup(g.extractor.ExtractSkills(ctx, candidateText))

	// 2. 计算交集与差集，保持首次出现顺序
	common := intersect(referenceSkills, candidateSkills)
	missing := subtract(referenceSkills, candidateSkills)
	uniqueToCandidate := subtract(candidateSkills, referenceSkills)

	// 3. NER信号不足时回退到词法token重叠（unique保持NER结果不变）
	if len(common) < 2 && len(missing) < 2 {
		referenceTokens := filterByLength(dedup(g.normalizer.Tokens(referenceText)), minFallbackTokenLength)
		candidateTokens := filterByLength(dedup(g.normalizer.Tokens(candidateText)), minFallbackTokenLength)
		common = capSlice(intersect(referenceTokens, candidateTokens), maxDisplaySkills)
		missing = capSlice(subtract(referenceTokens, candidateTokens), maxDisplaySkills)
	}

	// 4. 截取前5个并转为标题格式用于展示
	significantCommon := g.titleAll(capSlice(common, maxDisplaySkills))
	significantMissing := g.titleAll(capSlice(missing, maxDisplaySkills))
	otherSkills := g.titleAll(capSlice(uniqueToCandidate, maxDisplaySkills))

	// 5. 按分数分层组装文案
	var reason strings.Builder

	switch {
	case normalizedScore >= TierExcellentThreshold:
		reason.WriteString("Excellent Match! We recommend interviewing them because ")
		if len(significantCommon) > 0 {
			reason.WriteString("they demonstrate solid experience in key areas like " + strings.Join(significantCommon, ", ") + ". ")
		} else {
			reason.WriteString("their profile strongly aligns with the job description. ")
		}
		if len(otherSkills) > 0 {
			reason.WriteString("Plus, they bring additional expertise in " + strings.Join(otherSkills, ", ") + ".")
		}

	case normalizedScore >= TierPotentialThreshold:
		reason.WriteString("Potential Match. This profile is worth considering because ")
		if len(significantCommon) > 0 {
			reason.WriteString("they have relevant skills like " + strings.Join(significantCommon, ", ") + ", ")
		} else {
			reason.WriteString("there is some overlap with the requirements, ")
		}
		if len(significantMissing) > 0 {
			reason.WriteString("although they might lack specific tools like " + strings.Join(significantMissing, ", ") + ". ")
		}
		if len(otherSkills) > 0 {
			reason.WriteString("They also have skills in " + strings.Join(otherSkills, ", ") + ", which could be useful.")
		}

	default:
		reason.WriteString("Low Match. This candidate may not be suitable for this specific role because ")
		if len(significantMissing) > 0 {
			reason.WriteString("they appear to be missing core requirements such as " + strings.Join(significantMissing, ", ") + ". ")
		} else {
			reason.WriteString("there is minimal overlap with the job description. ")
		}
		if len(otherSkills) > 0 {
			reason.WriteString("However, they have strong skills in " + strings.Join(otherSkills, ", ") + ", so they might be a better fit for a different position.")
		}
	}

	return reason.String()
}

// titleAll 将每个字符串转为标题格式（首字母大写，其余小写）
func (g *ExplanationGenerator) titleAll(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = g.titleCaser.String(item)
	}
	return out
}

// lowercaseDedup 小写化并按首次出现顺序去重
func lowercaseDedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		lowered := strings.ToLower(item)
		if seen[lowered] {
			continue
		}
		seen[lowered] = true
		out = append(out, lowered)
	}
	return out
}

// dedup 按首次出现顺序去重
func dedup(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

// intersect 返回a中同时出现在b中的元素，保持a的顺序
func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, item := range b {
		inB[item] = true
	}
	out := make([]string, 0)
	for _, item := range a {
		if inB[item] {
			out = append(out, item)
		}
	}
	return out
}

// subtract 返回a中不出现在b中的元素，保持a的顺序
func subtract(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, item := range b {
		inB[item] = true
	}
	out := make([]string, 0)
	for _, item := range a {
		if !inB[item] {
			out = append(out, item)
		}
	}
	return out
}

// filterByLength 保留长度大于minLen的元素
func filterByLength(items []string, minLen int) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if len(item) > minLen {
			out = append(out, item)
		}
	}
	return out
}

// capSlice 截取前n个元素
func capSlice(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
