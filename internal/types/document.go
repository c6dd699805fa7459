package types

// CandidateInput 排序管道的单个候选输入
// 管道按输入顺序处理，顺序决定了同分时的名次
type CandidateInput struct {
	// Filename 候选文件名（展示用）
	Filename string

	// Text 提取后的简历原始文本
	Text string
}

// EvaluationResult 单个候选的最终评估结果
// Rank 在本次评估的全部分数确定后才分配（全局属性）
type EvaluationResult struct {
	// Rank 名次，从1开始，按归一化分数降序
	Rank int `json:"rank"`

	// Filename 候选文件名
	Filename string `json:"filename"`

	// Score 归一化分数，保留两位小数
	Score float64 `json:"score"`

	// Reason 分层模板生成的推荐理由
	Reason string `json:"reason"`

	// Skills NER提取的技能集合（按首次出现顺序去重）
	Skills []string `json:"skills"`

	// Highlight 简历中与JD最相关的证据句，可能为空
	Highlight string `json:"highlight"`
}
