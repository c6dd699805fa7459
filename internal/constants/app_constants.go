package constants

// 文档处理状态
const (
	// StatusUploaded 原始文件已入对象存储
	StatusUploaded = "UPLOADED"
	// StatusExtracted 文本提取成功
	StatusExtracted = "TEXT_EXTRACTED"
	// StatusExtractionFailed 文本提取失败，文档被排除出本次评估
	StatusExtractionFailed = "TEXT_EXTRACTION_FAILED"
	// StatusEvaluated 评估完成
	StatusEvaluated = "EVALUATED"
)

// 文档角色
const (
	// RoleReference JD参照文档
	RoleReference = "REFERENCE"
	// RoleCandidate 被排序的简历文档
	RoleCandidate = "CANDIDATE"
)

// AllowedUploadExtensions 允许上传的文件扩展名
var AllowedUploadExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
}
