package router

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"time"

	"resume-evaluator-go/internal/api/handler"
	"resume-evaluator-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, evaluateHandler *handler.EvaluateHandler) {
	// 健康检查不走鉴权
	h.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})

	api := h.Group("/api/v1")

	// 配置了API Key时启用keyauth鉴权
	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
		))
	}

	api.POST("/evaluate", func(c context.Context, ctx *app.RequestContext) {
		form, err := ctx.MultipartForm()
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "解析multipart表单失败"})
			return
		}

		jdFiles := form.File["jd"]
		if len(jdFiles) == 0 {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少JD文件 (字段名: jd)"})
			return
		}
		resumeFiles := form.File["resumes"]
		if len(resumeFiles) == 0 {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "缺少简历文件 (字段名: resumes)"})
			return
		}

		maxSize := int64(cfg.Server.MaxUploadSizeMB) * 1024 * 1024

		reference, err := readUploadedFile(jdFiles[0], maxSize)
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "读取JD文件失败: " + err.Error()})
			return
		}

		candidates := make([]handler.UploadedFile, 0, len(resumeFiles))
		for _, fileHeader := range resumeFiles {
			candidate, err := readUploadedFile(fileHeader, maxSize)
			if err != nil {
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": "读取简历文件失败: " + err.Error()})
				return
			}
			candidates = append(candidates, candidate)
		}

		results, err := evaluateHandler.HandleEvaluate(c, reference, candidates)
		if err != nil {
			switch {
			case errors.Is(err, handler.ErrUnsupportedFileType),
				errors.Is(err, handler.ErrReferenceExtraction),
				errors.Is(err, handler.ErrNoValidCandidates):
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
			default:
				ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			}
			return
		}

		ctx.JSON(consts.StatusOK, results)
	})
}

// readUploadedFile 把multipart文件读入内存并做大小校验
func readUploadedFile(fileHeader *multipart.FileHeader, maxSize int64) (handler.UploadedFile, error) {
	if maxSize > 0 && fileHeader.Size > maxSize {
		return handler.UploadedFile{}, errors.New("文件超过大小限制: " + fileHeader.Filename)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return handler.UploadedFile{}, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return handler.UploadedFile{}, err
	}

	return handler.UploadedFile{
		Filename: fileHeader.Filename,
		Data:     data,
	}, nil
}
