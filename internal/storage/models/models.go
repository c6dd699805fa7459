package models

import (
	"time"

	"gorm.io/datatypes"
)

// EvaluationDocument 评估涉及的文档表（参照文档与候选文档共用）
type EvaluationDocument struct {
	DocumentID          string    `gorm:"type:char(36);primaryKey"`
	RunID               string    `gorm:"type:char(36);index:idx_ed_run_id"`
	Role                string    `gorm:"type:varchar(20);not null"` // REFERENCE 或 CANDIDATE
	OriginalFilename    string    `gorm:"type:varchar(255)"`
	OriginalFilePathOSS string    `gorm:"type:varchar(1024)"`
	RawFileMD5          string    `gorm:"type:char(32);index:idx_ed_raw_file_md5"`
	Status              string    `gorm:"type:varchar(50);default:'UPLOADED';index:idx_ed_status"`
	CreatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt           time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (EvaluationDocument) TableName() string {
	return "documents"
}

// EvaluationOutcome 单个候选文档的评估结果表
type EvaluationOutcome struct {
	OutcomeID  string         `gorm:"type:char(36);primaryKey"`
	RunID      string         `gorm:"type:char(36);index:idx_eo_run_id"`
	DocumentID string         `gorm:"type:char(36);index:idx_eo_document_id"`
	Rank       int            `gorm:"not null"`
	Filename   string         `gorm:"type:varchar(255)"`
	Score      float64        `gorm:"type:double;not null"`
	Reason     string         `gorm:"type:text"`
	SkillsJSON datatypes.JSON `gorm:"type:json"`
	Highlight  string         `gorm:"type:text"`
	CreatedAt  time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	Document *EvaluationDocument `gorm:"foreignKey:DocumentID;references:DocumentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (EvaluationOutcome) TableName() string {
	return "evaluation_results"
}
