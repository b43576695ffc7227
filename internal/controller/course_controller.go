package controller

import (
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCourses godoc
// @Summary 课程列表
// @Tags 课程
// @Produce json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.CourseService.ListCourses(ctx.Request.Context())
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary 课程详情
// @Tags 课程
// @Produce json
// @Param slug path string true "课程 slug"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	course, err := c.CourseService.GetCourse(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CourseInput true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 409 {object} util.Response "slug 已存在"
// @Failure 422 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req service.CourseInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程（部分字段）
// @Tags 课程
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Param body body service.CoursePatch true "需要修改的字段"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /api/courses/{slug} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	var req service.CoursePatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BindingError(ctx, err)
		return
	}
	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), ctx.Param("slug"), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程及其全部内容
// @Tags 课程
// @Security BearerAuth
// @Param slug path string true "课程 slug"
// @Success 204
// @Failure 404 {object} util.Response
// @Router /api/courses/{slug} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	if err := c.CourseService.DeleteCourse(ctx.Request.Context(), ctx.Param("slug")); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}
