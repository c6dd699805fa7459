package storage

import (
	"time"

	"resume-evaluator-go/internal/types"
)

// ArchivedDocument 评估完成事件中携带的文档信息
type ArchivedDocument struct {
	DocumentID  string `json:"document_id"`
	Role        string `json:"role"` // REFERENCE 或 CANDIDATE
	Filename    string `json:"filename"`
	FilePathOSS string `json:"file_path_oss"`
	RawFileMD5  string `json:"raw_file_md5"`
	Status      string `json:"status"`
}

// ArchivedOutcome 评估完成事件中携带的单个候选结果
// 在对外响应结构之上补充了文档ID，供归档消费者关联文档表
type ArchivedOutcome struct {
	DocumentID string                 `json:"document_id"`
	Result     types.EvaluationResult `json:"result"`
}

// EvaluationCompletedMessage 评估完成事件
// 由评估接口在响应返回前发布，归档消费者据此异步写入MySQL
type EvaluationCompletedMessage struct {
	RunID       string             `json:"run_id"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
	Documents   []ArchivedDocument `json:"documents"`
	Outcomes    []ArchivedOutcome  `json:"outcomes"`
}
