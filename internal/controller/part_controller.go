package controller

import (
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PartController struct {
	CourseService *service.CourseService
}

func NewPartController(courseService *service.CourseService) *PartController {
	return &PartController{CourseService: courseService}
}

// ListParts godoc
// @Summary 课程的 Part 列表
// @Tags Part
// @Produce json
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=[]model.Part}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/parts [get]
func (c *PartController) ListParts(ctx *gin.Context) {
	parts, err := c.CourseService.ListParts(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, parts)
}

// GetPart godoc
// @Summary Part 详情
// @Tags Part
// @Produce json
// @Param slug path string true "课程 slug"
// @Param partId path int true "Part ID"
// @Success 200 {object} util.Response{data=model.Part}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/parts/{partId} [get]
func (c *PartController) GetPart(ctx *gin.Context) {
	partID, ok := pathID(ctx, "partId")
	if !ok {
		return
	}
	part, err := c.CourseService.GetPart(ctx.Request.Context(), ctx.Param("slug"), partID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, part)
}

// CreatePart godoc
// @Summary 创建 Part
// @Tags Part
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param body body service.PartInput true "Part 信息"
// @Success 201 {object} util.Response{data=model.Part}
// @Failure 409 {object} util.Response "order 已被占用"
// @Router /api/courses/{slug}/parts [post]
func (c *PartController) CreatePart(ctx *gin.Context) {
	var req service.PartInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	part, err := c.CourseService.CreatePart(ctx.Request.Context(), ctx.Param("slug"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, part)
}

// UpdatePart godoc
// @Summary 更新 Part（部分字段）
// @Tags Part
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param partId path int true "Part ID"
// @Param body body service.PartPatch true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Part}
// @Router /api/courses/{slug}/parts/{partId} [put]
func (c *PartController) UpdatePart(ctx *gin.Context) {
	partID, ok := pathID(ctx, "partId")
	if !ok {
		return
	}
	var req service.PartPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	part, err := c.CourseService.UpdatePart(ctx.Request.Context(), ctx.Param("slug"), partID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, part)
}

// DeletePart godoc
// @Summary 删除 Part 及其章节
// @Tags Part
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param partId path int true "Part ID"
// @Success 204
// @Router /api/courses/{slug}/parts/{partId} [delete]
func (c *PartController) DeletePart(ctx *gin.Context) {
	partID, ok := pathID(ctx, "partId")
	if !ok {
		return
	}
	if err := c.CourseService.DeletePart(ctx.Request.Context(), ctx.Param("slug"), partID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
