package controller

import (
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ProgressController 进度与练习提交，始终作用于 token 对应的用户
type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetChapterProgress godoc
// @Summary 当前用户的章节进度
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param chapterId path int true "章节 ID"
// @Success 200 {object} util.Response{data=model.ChapterProgressView}
// @Failure 403 {object} util.Response "user_id 与当前用户不一致"
// @Failure 404 {object} util.Response
// @Router /api/chapters/{chapterId}/progress [get]
func (c *ProgressController) GetChapterProgress(ctx *gin.Context) {
	userID, ok := actingUserID(ctx, nil)
	if !ok {
		return
	}
	chapterID, ok := pathID(ctx, "chapterId")
	if !ok {
		return
	}
	view, err := c.ProgressService.GetChapterProgress(ctx.Request.Context(), userID, chapterID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// MarkChapterComplete godoc
// @Summary 标记章节完成 / 取消完成
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path int true "章节 ID"
// @Param body body service.ChapterProgressRequest true "完成状态"
// @Success 200 {object} util.Response{data=model.ChapterProgress}
// @Router /api/chapters/{chapterId}/progress [put]
func (c *ProgressController) MarkChapterComplete(ctx *gin.Context) {
	chapterID, ok := pathID(ctx, "chapterId")
	if !ok {
		return
	}
	var req service.ChapterProgressRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	userID, ok := actingUserID(ctx, req.UserID)
	if !ok {
		return
	}
	progress, err := c.ProgressService.MarkChapterComplete(ctx.Request.Context(), userID, chapterID, req.IsCompleted)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// GetCourseProgress godoc
// @Summary 当前用户的课程进度汇总
// @Tags 学习进度
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=model.CourseProgress}
// @Router /api/courses/{slug}/progress [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	userID, ok := actingUserID(ctx, nil)
	if !ok {
		return
	}
	progress, err := c.ProgressService.GetCourseProgress(ctx.Request.Context(), userID, ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// SubmitExercise godoc
// @Summary 提交练习答案
// @Description 选择题提交选项下标，判断题提交布尔值，代码题提交源码字符串；重复提交覆盖上一次
// @Tags 学习进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path int true "练习 ID"
// @Param body body service.SubmitExerciseRequest true "答案"
// @Success 200 {object} util.Response{data=model.SubmissionResult}
// @Failure 422 {object} util.Response "答案类型与题型不符"
// @Router /api/exercises/{exerciseId}/submissions [post]
func (c *ProgressController) SubmitExercise(ctx *gin.Context) {
	exerciseID, ok := pathID(ctx, "exerciseId")
	if !ok {
		return
	}
	var req service.SubmitExerciseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	userID, ok := actingUserID(ctx, req.UserID)
	if !ok {
		return
	}
	result, err := c.ProgressService.SubmitExercise(ctx.Request.Context(), userID, exerciseID, req.Answer)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
