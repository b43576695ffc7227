package controller

import (
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"
	"brainer_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ImageController struct {
	ImageService *service.ImageService
}

func NewImageController(imageService *service.ImageService) *ImageController {
	return &ImageController{ImageService: imageService}
}

// Upload godoc
// @Summary 上传章节配图
// @Description 保留原文件名（清理非法字符），上传后可通过 /static/images/{filename} 访问
// @Tags 图片
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "图片文件"
// @Success 201 {object} util.Response{data=service.ImageUploadResponse}
// @Failure 422 {object} util.Response "不是图片或文件过大"
// @Router /api/images/upload [post]
func (c *ImageController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.HandleError(ctx, util.ValidationError("file is required", util.FieldError{Field: "file", Message: "field required"}))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.Log.Error("打开上传文件失败", zap.String("filename", fileHeader.Filename), zap.Error(err))
		util.InternalServerError(ctx)
		return
	}
	defer file.Close()

	result, err := c.ImageService.Upload(ctx.Request.Context(), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, result)
}

// Delete godoc
// @Summary 删除章节配图
// @Tags 图片
// @Security BearerAuth
// @Param filename path string true "文件名"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/images/{filename} [delete]
func (c *ImageController) Delete(ctx *gin.Context) {
	if err := c.ImageService.Delete(ctx.Request.Context(), ctx.Param("filename")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
