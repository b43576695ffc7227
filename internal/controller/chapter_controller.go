package controller

import (
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChapterController struct {
	ChapterService *service.ChapterService
}

func NewChapterController(chapterService *service.ChapterService) *ChapterController {
	return &ChapterController{ChapterService: chapterService}
}

// ListChapters godoc
// @Summary 章节列表（不含 content）
// @Tags 章节
// @Produce json
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=[]model.ChapterListItem}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/chapters [get]
func (c *ChapterController) ListChapters(ctx *gin.Context) {
	chapters, err := c.ChapterService.ListChapters(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, chapters)
}

// GetChapter godoc
// @Summary 章节详情（含 content 与前后导航）
// @Tags 章节
// @Produce json
// @Param slug path string true "课程 slug"
// @Param chapterSlug path string true "章节 slug"
// @Success 200 {object} util.Response{data=model.ChapterDetail}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug}/chapters/{chapterSlug} [get]
func (c *ChapterController) GetChapter(ctx *gin.Context) {
	chapter, err := c.ChapterService.GetChapter(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("chapterSlug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, chapter)
}

// CreateChapter godoc
// @Summary 创建章节
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param body body service.ChapterInput true "章节信息"
// @Success 201 {object} util.Response{data=model.Chapter}
// @Failure 409 {object} util.Response
// @Failure 422 {object} util.Response
// @Router /api/courses/{slug}/chapters [post]
func (c *ChapterController) CreateChapter(ctx *gin.Context) {
	var req service.ChapterInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	chapter, err := c.ChapterService.CreateChapter(ctx.Request.Context(), ctx.Param("slug"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, chapter)
}

// UpdateChapter godoc
// @Summary 部分更新章节
// @Description 未提供的字段保持不变，例如只提交 content 不会修改 title/slug/order
// @Tags 章节
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param chapterSlug path string true "章节 slug"
// @Param body body service.ChapterPatch true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Chapter}
// @Router /api/courses/{slug}/chapters/{chapterSlug} [put]
func (c *ChapterController) UpdateChapter(ctx *gin.Context) {
	var req service.ChapterPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	chapter, err := c.ChapterService.UpdateChapter(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("chapterSlug"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, chapter)
}

// DeleteChapter godoc
// @Summary 删除章节
// @Tags 章节
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param chapterSlug path string true "章节 slug"
// @Success 204
// @Router /api/courses/{slug}/chapters/{chapterSlug} [delete]
func (c *ChapterController) DeleteChapter(ctx *gin.Context) {
	if err := c.ChapterService.DeleteChapter(ctx.Request.Context(), ctx.Param("slug"), ctx.Param("chapterSlug")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
