package handler

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"resume-evaluator-go/internal/config"
	"resume-evaluator-go/internal/constants"
	"resume-evaluator-go/internal/evaluator"
	"resume-evaluator-go/internal/logger"
	"resume-evaluator-go/internal/parser"
	storage2 "resume-evaluator-go/internal/storage"
	"resume-evaluator-go/internal/storage/models"
	"resume-evaluator-go/internal/types"

	"github.com/gofrs/uuid/v5"
	guuid "github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	// ErrReferenceExtraction 参照文档无法提取出文本，请求无法继续
	ErrReferenceExtraction = errors.New("参照文档文本提取失败")
	// ErrNoValidCandidates 所有候选文档都无效（类型不允许或提取失败）
	ErrNoValidCandidates = errors.New("没有可评估的候选文档")
	// ErrUnsupportedFileType 文件扩展名不在允许列表内
	ErrUnsupportedFileType = errors.New("不支持的文件类型")
)

// UploadedFile 已读入内存的上传文件
type UploadedFile struct {
	Filename string
	Data     []byte
}

// EvaluateHandler 评估处理器，负责协调一次完整评估请求：
// 文本提取 → 去重与归档上传 → 评分排序 → 发布完成事件
type EvaluateHandler struct {
	cfg       *config.Config
	storage   *storage2.Storage
	extractor parser.TextExtractor
	pipeline  *evaluator.RankingPipeline
}

// NewEvaluateHandler 创建评估处理器
func NewEvaluateHandler(
	cfg *config.Config,
	storage *storage2.Storage,
	extractor parser.TextExtractor,
	pipeline *evaluator.RankingPipeline,
) *EvaluateHandler {
	return &EvaluateHandler{
		cfg:       cfg,
		storage:   storage,
		extractor: extractor,
		pipeline:  pipeline,
	}
}

// documentIntake 单个文件进入评估前的落地信息
type documentIntake struct {
	DocumentID  string
	Filename    string
	Text        string
	FilePathOSS string
	RawFileMD5  string
	Status      string
}

// HandleEvaluate 处理一次评估请求
// 参照文档提取失败对整个请求是致命的；单个候选文档无效只会被跳过
func (h *EvaluateHandler) HandleEvaluate(ctx context.Context, reference UploadedFile, candidates []UploadedFile) ([]types.EvaluationResult, error) {
	if err := checkFileExtension(reference.Filename); err != nil {
		return nil, fmt.Errorf("%w: %s", err, reference.Filename)
	}
	if len(candidates) == 0 {
		return nil, ErrNoValidCandidates
	}

	runID := guuid.NewString()

	// 1. 参照文档：提取文本，失败即终止
	referenceIntake, err := h.intakeDocument(ctx, reference)
	if err != nil {
		logger.Error().
			Err(err).
			Str("run_id", runID).
			Str("filename", reference.Filename).
			Msg("参照文档处理失败")
		return nil, fmt.Errorf("%w: %v", ErrReferenceExtraction, err)
	}

	// 2. 候选文档：逐个提取，无效的跳过并记录
	intakes := make([]documentIntake, 0, len(candidates))
	failed := make([]documentIntake, 0)
	for _, candidate := range candidates {
		if err := checkFileExtension(candidate.Filename); err != nil {
			logger.Warn().
				Str("run_id", runID).
				Str("filename", candidate.Filename).
				Msg("跳过不支持的候选文件类型")
			continue
		}
		intake, err := h.intakeDocument(ctx, candidate)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("run_id", runID).
				Str("filename", candidate.Filename).
				Msg("候选文档文本提取失败，跳过该文档")
			failed = append(failed, documentIntake{
				DocumentID: newDocumentID(),
				Filename:   candidate.Filename,
				Status:     constants.StatusExtractionFailed,
			})
			continue
		}
		intakes = append(intakes, intake)
	}

	if len(intakes) == 0 {
		return nil, ErrNoValidCandidates
	}

	// 3. 评分排序
	candidateInputs := make([]types.CandidateInput, len(intakes))
	for i, intake := range intakes {
		candidateInputs[i] = types.CandidateInput{
			Filename: intake.Filename,
			Text:     intake.Text,
		}
	}

	results, err := h.pipeline.Evaluate(ctx, referenceIntake.Text, candidateInputs)
	if err != nil {
		return nil, err
	}

	// 4. 发布评估完成事件，归档消费者异步落库
	// 发布失败不影响响应——结果已经算出，归档是旁路
	h.publishCompleted(ctx, runID, referenceIntake, intakes, failed, results)

	return results, nil
}

// intakeDocument 提取文本并完成去重检查与原始文件归档
// MinIO/Redis 不可用时跳过对应步骤，评估本身不依赖归档
func (h *EvaluateHandler) intakeDocument(ctx context.Context, file UploadedFile) (documentIntake, error) {
	intake := documentIntake{
		DocumentID: newDocumentID(),
		Filename:   file.Filename,
		Status:     constants.StatusUploaded,
	}

	// 1. 提取文本
	text, err := h.extractor.ExtractText(ctx, bytes.NewReader(file.Data), file.Filename)
	if err != nil {
		return documentIntake{}, err
	}
	intake.Text = text
	intake.Status = constants.StatusExtracted

	// 2. 计算文件MD5，已见过的文件跳过重复上传
	sum := md5.Sum(file.Data)
	intake.RawFileMD5 = hex.EncodeToString(sum[:])

	duplicate := false
	if h.storage != nil && h.storage.Redis != nil {
		exists, err := h.storage.Redis.CheckRawFileMD5Exists(ctx, intake.RawFileMD5)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("md5", intake.RawFileMD5).
				Msg("查询Redis文件MD5失败，按未见过处理")
		} else {
			duplicate = exists
		}
	}

	// 3. 上传原始文件到MinIO（重复文件跳过）
	if !duplicate && h.storage != nil && h.storage.MinIO != nil {
		ext := filepath.Ext(file.Filename)
		objectKey, err := h.storage.MinIO.UploadDocumentFile(ctx, intake.DocumentID, ext, bytes.NewReader(file.Data), int64(len(file.Data)))
		if err != nil {
			logger.Warn().
				Err(err).
				Str("document_id", intake.DocumentID).
				Msg("上传原始文件到MinIO失败，继续评估")
		} else {
			intake.FilePathOSS = objectKey
			if h.storage.Redis != nil {
				if err := h.storage.Redis.AddRawFileMD5(ctx, intake.RawFileMD5); err != nil {
					logger.Warn().
						Err(err).
						Str("md5", intake.RawFileMD5).
						Msg("添加文件MD5到Redis失败")
				}
			}
		}
	}

	return intake, nil
}

// publishCompleted 发布评估完成事件
func (h *EvaluateHandler) publishCompleted(
	ctx context.Context,
	runID string,
	reference documentIntake,
	intakes []documentIntake,
	failed []documentIntake,
	results []types.EvaluationResult,
) {
	if h.storage == nil || h.storage.RabbitMQ == nil {
		return
	}

	documents := make([]storage2.ArchivedDocument, 0, len(intakes)+len(failed)+1)
	documents = append(documents, storage2.ArchivedDocument{
		DocumentID:  reference.DocumentID,
		Role:        constants.RoleReference,
		Filename:    reference.Filename,
		FilePathOSS: reference.FilePathOSS,
		RawFileMD5:  reference.RawFileMD5,
		Status:      constants.StatusExtracted,
	})

	for _, intake := range intakes {
		documents = append(documents, storage2.ArchivedDocument{
			DocumentID:  intake.DocumentID,
			Role:        constants.RoleCandidate,
			Filename:    intake.Filename,
			FilePathOSS: intake.FilePathOSS,
			RawFileMD5:  intake.RawFileMD5,
			Status:      constants.StatusEvaluated,
		})
	}
	for _, intake := range failed {
		documents = append(documents, storage2.ArchivedDocument{
			DocumentID: intake.DocumentID,
			Role:       constants.RoleCandidate,
			Filename:   intake.Filename,
			Status:     constants.StatusExtractionFailed,
		})
	}

	outcomes := matchOutcomeDocuments(intakes, results)

	message := storage2.EvaluationCompletedMessage{
		RunID:       runID,
		EvaluatedAt: time.Now(),
		Documents:   documents,
		Outcomes:    outcomes,
	}

	err := h.storage.RabbitMQ.PublishJSON(
		ctx,
		h.cfg.RabbitMQ.EvaluationExchange,
		h.cfg.RabbitMQ.EvaluationCompletedKey,
		message,
		true, // 持久化
	)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("run_id", runID).
			Msg("发布评估完成事件失败")
	}
}

// matchOutcomeDocuments 把排序后的评估结果匹配回各自的文档ID
// 结果只携带文件名，同名文件按出现顺序依次消费对应的文档ID，
// 保证每条结果关联到不同的文档记录
func matchOutcomeDocuments(intakes []documentIntake, results []types.EvaluationResult) []storage2.ArchivedOutcome {
	docIDsByFilename := make(map[string][]string, len(intakes))
	for _, intake := range intakes {
		docIDsByFilename[intake.Filename] = append(docIDsByFilename[intake.Filename], intake.DocumentID)
	}

	outcomes := make([]storage2.ArchivedOutcome, 0, len(results))
	for _, result := range results {
		var documentID string
		if ids := docIDsByFilename[result.Filename]; len(ids) > 0 {
			documentID = ids[0]
			docIDsByFilename[result.Filename] = ids[1:]
		}
		outcomes = append(outcomes, storage2.ArchivedOutcome{
			DocumentID: documentID,
			Result:     result,
		})
	}
	return outcomes
}

// StartArchiveConsumer 启动归档消费者，把评估完成事件写入MySQL
func (h *EvaluateHandler) StartArchiveConsumer(ctx context.Context) error {
	if h.storage == nil || h.storage.RabbitMQ == nil {
		return fmt.Errorf("RabbitMQ未初始化")
	}
	if h.storage.MySQL == nil {
		return fmt.Errorf("MySQL未初始化")
	}

	if err := h.storage.SetupEvaluationTopology(&h.cfg.RabbitMQ); err != nil {
		return fmt.Errorf("声明评估事件拓扑失败: %w", err)
	}

	prefetch := h.cfg.RabbitMQ.PrefetchCount
	if prefetch <= 0 {
		prefetch = 10
	}

	logger.Info().
		Str("queue", h.cfg.RabbitMQ.EvaluationArchiveQueue).
		Int("prefetch", prefetch).
		Msg("归档消费者就绪")

	_, err := h.storage.RabbitMQ.StartConsumer(h.cfg.RabbitMQ.EvaluationArchiveQueue, prefetch, func(data []byte) bool {
		var message storage2.EvaluationCompletedMessage
		if err := json.Unmarshal(data, &message); err != nil {
			logger.Error().Err(err).Msg("解析评估完成事件失败")
			// 消息格式错误重试也无法恢复，直接确认丢弃
			return true
		}

		if err := h.archiveRun(ctx, &message); err != nil {
			logger.Error().
				Err(err).
				Str("run_id", message.RunID).
				Msg("归档评估结果失败，消息重新入队")
			return false
		}

		logger.Info().
			Str("run_id", message.RunID).
			Int("documents", len(message.Documents)).
			Int("outcomes", len(message.Outcomes)).
			Msg("评估结果归档完成")
		return true
	})
	return err
}

// archiveRun 把一次评估的文档与结果转换为模型并落库
func (h *EvaluateHandler) archiveRun(ctx context.Context, message *storage2.EvaluationCompletedMessage) error {
	documents := make([]models.EvaluationDocument, 0, len(message.Documents))
	for _, doc := range message.Documents {
		documents = append(documents, models.EvaluationDocument{
			DocumentID:          doc.DocumentID,
			RunID:               message.RunID,
			Role:                doc.Role,
			OriginalFilename:    doc.Filename,
			OriginalFilePathOSS: doc.FilePathOSS,
			RawFileMD5:          doc.RawFileMD5,
			Status:              doc.Status,
		})
	}

	outcomes := make([]models.EvaluationOutcome, 0, len(message.Outcomes))
	for _, outcome := range message.Outcomes {
		skillsJSON, err := json.Marshal(outcome.Result.Skills)
		if err != nil {
			return fmt.Errorf("序列化技能列表失败: %w", err)
		}
		outcomes = append(outcomes, models.EvaluationOutcome{
			OutcomeID:  newDocumentID(),
			RunID:      message.RunID,
			DocumentID: outcome.DocumentID,
			Rank:       outcome.Result.Rank,
			Filename:   outcome.Result.Filename,
			Score:      outcome.Result.Score,
			Reason:     outcome.Result.Reason,
			SkillsJSON: datatypes.JSON(skillsJSON),
			Highlight:  outcome.Result.Highlight,
		})
	}

	return h.storage.MySQL.ArchiveEvaluationRun(ctx, documents, outcomes)
}

// checkFileExtension 校验文件扩展名是否允许
func checkFileExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !constants.AllowedUploadExtensions[ext] {
		return ErrUnsupportedFileType
	}
	return nil
}

// newDocumentID 生成UUIDv7文档ID，保持按时间有序
func newDocumentID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 仅在读取随机源失败时出错，退回随机UUID
		return guuid.NewString()
	}
	return id.String()
}
