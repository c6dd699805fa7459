package evaluator

import (
	"context"
	"strings"
	"testing"

	"resume-evaluator-go/internal/parser"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecognizer 按预设映射返回实体的测试替身
type fakeRecognizer struct {
	entitiesFor func(text string) []parser.Entity
}

func (f *fakeRecognizer) Recognize(ctx context.Context, text string) ([]parser.Entity, error) {
	if f.entitiesFor == nil {
		return nil, nil
	}
	return f.entitiesFor(text), nil
}

func orgEntities(names ...string) []parser.Entity {
	entities := make([]parser.Entity, 0, len(names))
	for _, name := range names {
		entities = append(entities, parser.Entity{Text: name, Label: parser.CategoryORG})
	}
	return entities
}

func newTestGenerator(t *testing.T, recognizer parser.EntityRecognizer) *ExplanationGenerator {
	t.Helper()
	normalizer, err := NewTextNormalizer()
	require.NoError(t, err, "创建归一化器失败")
	extractor := NewEntityExtractor(recognizer, zerolog.Nop())
	return NewExplanationGenerator(extractor, normalizer)
}

func TestGenerateExcellentTier(t *testing.T) {
	recognizer := &fakeRecognizer{
		entitiesFor: func(text string) []parser.Entity {
			if strings.Contains(text, "JOB_DESCRIPTION") {
				return orgEntities("Python", "Django", "Postgres")
			}
			return orgEntities("Python", "Django", "Kubernetes")
		},
	}
	generator := newTestGenerator(t, recognizer)

	reason := generator.Generate(context.Background(), 85, "JOB_DESCRIPTION", "CANDIDATE_RESUME")

	assert.True(t, strings.HasPrefix(reason, "Excellent Match!"), "85分应落入Excellent层级: %s", reason)
	assert.Contains(t, reason, "solid experience in key areas like Python, Django", "共同技能应出现在文案中")
	assert.Contains(t, reason, "additional expertise in Kubernetes", "候选独有技能应出现在文案中")
}

func TestGeneratePotentialTier(t *testing.T) {
	recognizer := &fakeRecognizer{
		entitiesFor: func(text string) []parser.Entity {
			if strings.Contains(text, "JOB_DESCRIPTION") {
				return orgEntities("Python", "Django", "Postgres")
			}
			return orgEntities("Python", "Django", "Kubernetes")
		},
	}
	generator := newTestGenerator(t, recognizer)

	reason := generator.Generate(context.Background(), 50, "JOB_DESCRIPTION", "CANDIDATE_RESUME")

	assert.True(t, strings.HasPrefix(reason, "Potential Match."), "50分应落入Potential层级: %s", reason)
	assert.Contains(t, reason, "relevant skills like Python, Django")
	assert.Contains(t, reason, "might lack specific tools like Postgres", "缺失技能应出现在文案中")
	assert.Contains(t, reason, "skills in Kubernetes, which could be useful")
}

func TestGenerateLowTier(t *testing.T) {
	recognizer := &fakeRecognizer{
		entitiesFor: func(text string) []parser.Entity {
			if strings.Contains(text, "JOB_DESCRIPTION") {
				return orgEntities("Python", "Django", "Postgres", "Airflow")
			}
			return orgEntities("Photoshop", "Illustrator")
		},
	}
	generator := newTestGenerator(t, recognizer)

	reason := generator.Generate(context.Background(), 10, "JOB_DESCRIPTION", "CANDIDATE_RESUME")

	assert.True(t, strings.HasPrefix(reason, "Low Match."), "10分应落入Low层级: %s", reason)
	assert.Contains(t, reason, "missing core requirements such as Python, Django, Postgres, Airflow")
	assert.Contains(t, reason, "strong skills in Photoshop, Illustrator")
	assert.Contains(t, reason, "better fit for a different position")
}

func TestGenerateTierBoundaries(t *testing.T) {
	recognizer := &fakeRecognizer{}
	generator := newTestGenerator(t, recognizer)

	// 70 是 Excellent 的闭区间下界，30 是 Potential 的闭区间下界
	assert.True(t, strings.HasPrefix(generator.Generate(context.Background(), 70, "a", "b"), "Excellent Match!"))
	assert.True(t, strings.HasPrefix(generator.Generate(context.Background(), 69.99, "a", "b"), "Potential Match."))
	assert.True(t, strings.HasPrefix(generator.Generate(context.Background(), 30, "a", "b"), "Potential Match."))
	assert.True(t, strings.HasPrefix(generator.Generate(context.Background(), 29.99, "a", "b"), "Low Match."))
}

func TestGenerateLexicalFallback(t *testing.T) {
	// NER不返回任何实体，应回退到词法token重叠
	recognizer := &fakeRecognizer{}
	generator := newTestGenerator(t, recognizer)

	reference := "kubernetes terraform ansible deployment"
	candidate := "kubernetes terraform monitoring grafana"
	reason := generator.Generate(context.Background(), 85, reference, candidate)

	assert.True(t, strings.HasPrefix(reason, "Excellent Match!"), "回退路径应保持层级文案: %s", reason)
	assert.Contains(t, reason, "Kubernetes", "词法重叠token应以标题格式展示")
	assert.Contains(t, reason, "Terraform")
	// NER未返回实体时候选独有技能集合为空，不应出现附加技能文案
	assert.NotContains(t, reason, "Plus, they bring additional expertise")
}

func TestGenerateNeverEmpty(t *testing.T) {
	recognizer := &fakeRecognizer{}
	generator := newTestGenerator(t, recognizer)

	for _, score := range []float64{0, 30, 70, 100} {
		reason := generator.Generate(context.Background(), score, "", "")
		assert.NotEmpty(t, reason, "任何输入组合都应产生非空文案 (score=%.0f)", score)
	}
}

func TestSetHelpersPreserveOrder(t *testing.T) {
	a := []string{"python", "django", "postgres"}
	b := []string{"postgres", "python"}

	assert.Equal(t, []string{"python", "postgres"}, intersect(a, b), "交集应保持a的顺序")
	assert.Equal(t, []string{"django"}, subtract(a, b), "差集应保持a的顺序")
	assert.Equal(t, []string{"go", "rust"}, dedup([]string{"go", "rust", "go"}), "去重应保留首次出现")
	assert.Equal(t, []string{"python", "java"}, lowercaseDedup([]string{"Python", "JAVA", "python"}), "小写去重应保留首次出现")
	assert.Equal(t, []string{"a", "b"}, capSlice([]string{"a", "b", "c"}, 2))
	assert.Equal(t, []string{"rust"}, filterByLength([]string{"go", "rust"}, 3), "长度过滤应为严格大于")
}
