package controller

import (
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReviewSheetController struct {
	ReviewSheetService *service.ReviewSheetService
}

func NewReviewSheetController(reviewSheetService *service.ReviewSheetService) *ReviewSheetController {
	return &ReviewSheetController{ReviewSheetService: reviewSheetService}
}

// GetReviewSheet godoc
// @Summary 获取 Part 的复习单
// @Tags 复习单
// @Produce json
// @Param partId path int true "Part ID"
// @Success 200 {object} util.Response{data=model.ReviewSheet}
// @Failure 404 {object} util.Response
// @Router /api/parts/{partId}/review-sheet [get]
func (c *ReviewSheetController) GetReviewSheet(ctx *gin.Context) {
	partID, ok := pathID(ctx, "partId")
	if !ok {
		return
	}
	sheet, err := c.ReviewSheetService.GetReviewSheet(ctx.Request.Context(), partID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sheet)
}

// ListReviewSheets godoc
// @Summary 课程下所有复习单
// @Tags 复习单
// @Produce json
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=[]model.ReviewSheet}
// @Router /api/courses/{slug}/review-sheets [get]
func (c *ReviewSheetController) ListReviewSheets(ctx *gin.Context) {
	sheets, err := c.ReviewSheetService.ListReviewSheets(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sheets)
}

// UpsertReviewSheet godoc
// @Summary 创建或覆盖复习单
// @Description 每个 Part 至多一份复习单，重复提交覆盖内容
// @Tags 复习单
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param partId path int true "Part ID"
// @Param body body service.ReviewSheetInput true "复习单内容"
// @Success 200 {object} util.Response{data=model.ReviewSheet} "已覆盖"
// @Success 201 {object} util.Response{data=model.ReviewSheet} "已创建"
// @Router /api/parts/{partId}/review-sheet [post]
func (c *ReviewSheetController) UpsertReviewSheet(ctx *gin.Context) {
	partID, ok := pathID(ctx, "partId")
	if !ok {
		return
	}
	var req service.ReviewSheetInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	sheet, created, err := c.ReviewSheetService.UpsertReviewSheet(ctx.Request.Context(), partID, req.Content)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	if created {
		util.Created(ctx, sheet)
		return
	}
	util.Success(ctx, sheet)
}

// DeleteReviewSheet godoc
// @Summary 删除复习单
// @Tags 复习单
// @Security BearerAuth
// @Param partId path int true "Part ID"
// @Success 204
// @Router /api/parts/{partId}/review-sheet [delete]
func (c *ReviewSheetController) DeleteReviewSheet(ctx *gin.Context) {
	partID, ok := pathID(ctx, "partId")
	if !ok {
		return
	}
	if err := c.ReviewSheetService.DeleteReviewSheet(ctx.Request.Context(), partID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

// GenerateReviewSheet godoc
// @Summary 根据章节摘要生成复习单
// @Description 配置了 AI 接口时由模型生成，否则按章节顺序拼接摘要
// @Tags 复习单
// @Produce json
// @Security BearerAuth
// @Param partId path int true "Part ID"
// @Success 200 {object} util.Response{data=model.ReviewSheet}
// @Failure 422 {object} util.Response "Part 下没有可用的章节摘要"
// @Router /api/parts/{partId}/review-sheet/generate [post]
func (c *ReviewSheetController) GenerateReviewSheet(ctx *gin.Context) {
	partID, ok := pathID(ctx, "partId")
	if !ok {
		return
	}
	sheet, err := c.ReviewSheetService.GenerateReviewSheet(ctx.Request.Context(), partID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, sheet)
}
