package controller

import (
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExerciseController struct {
	ExerciseService *service.ExerciseService
}

func NewExerciseController(exerciseService *service.ExerciseService) *ExerciseController {
	return &ExerciseController{ExerciseService: exerciseService}
}

// ListExercises godoc
// @Summary 章节练习列表
// @Tags 练习
// @Produce json
// @Param chapterId path int true "章节 ID"
// @Success 200 {object} util.Response{data=[]model.Exercise}
// @Failure 404 {object} util.Response
// @Router /api/chapters/{chapterId}/exercises [get]
func (c *ExerciseController) ListExercises(ctx *gin.Context) {
	chapterID, ok := pathID(ctx, "chapterId")
	if !ok {
		return
	}
	exercises, err := c.ExerciseService.ListExercises(ctx.Request.Context(), chapterID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exercises)
}

// GetExercise godoc
// @Summary 练习详情
// @Tags 练习
// @Produce json
// @Param chapterId path int true "章节 ID"
// @Param exerciseId path int true "练习 ID"
// @Success 200 {object} util.Response{data=model.Exercise}
// @Failure 404 {object} util.Response
// @Router /api/chapters/{chapterId}/exercises/{exerciseId} [get]
func (c *ExerciseController) GetExercise(ctx *gin.Context) {
	chapterID, ok := pathID(ctx, "chapterId")
	if !ok {
		return
	}
	exerciseID, ok := pathID(ctx, "exerciseId")
	if !ok {
		return
	}
	exercise, err := c.ExerciseService.GetExercise(ctx.Request.Context(), chapterID, exerciseID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exercise)
}

// CreateExercise godoc
// @Summary 创建练习
// @Description content 的结构必须与 type 匹配：multiple_choice / true_false / code
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path int true "章节 ID"
// @Param body body service.ExerciseInput true "练习信息"
// @Success 201 {object} util.Response{data=model.Exercise}
// @Failure 422 {object} util.Response "content 与 type 不匹配"
// @Router /api/chapters/{chapterId}/exercises [post]
func (c *ExerciseController) CreateExercise(ctx *gin.Context) {
	chapterID, ok := pathID(ctx, "chapterId")
	if !ok {
		return
	}
	var req service.ExerciseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	exercise, err := c.ExerciseService.CreateExercise(ctx.Request.Context(), chapterID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, exercise)
}

// UpdateExercise godoc
// @Summary 更新练习（部分字段）
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param chapterId path int true "章节 ID"
// @Param exerciseId path int true "练习 ID"
// @Param body body service.ExercisePatch true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Exercise}
// @Router /api/chapters/{chapterId}/exercises/{exerciseId} [put]
func (c *ExerciseController) UpdateExercise(ctx *gin.Context) {
	chapterID, ok := pathID(ctx, "chapterId")
	if !ok {
		return
	}
	exerciseID, ok := pathID(ctx, "exerciseId")
	if !ok {
		return
	}
	var req service.ExercisePatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	exercise, err := c.ExerciseService.UpdateExercise(ctx.Request.Context(), chapterID, exerciseID, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, exercise)
}

// DeleteExercise godoc
// @Summary 删除练习
// @Tags 练习
// @Security BearerAuth
// @Param chapterId path int true "章节 ID"
// @Param exerciseId path int true "练习 ID"
// @Success 204
// @Router /api/chapters/{chapterId}/exercises/{exerciseId} [delete]
func (c *ExerciseController) DeleteExercise(ctx *gin.Context) {
	chapterID, ok := pathID(ctx, "chapterId")
	if !ok {
		return
	}
	exerciseID, ok := pathID(ctx, "exerciseId")
	if !ok {
		return
	}
	if err := c.ExerciseService.DeleteExercise(ctx.Request.Context(), chapterID, exerciseID); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
