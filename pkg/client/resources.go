package client

import (
	"brainer_backend/internal/model"
	"brainer_backend/internal/service"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Resource keys. Every key nested under another ("course/x" -> "course/x/chapters/y") is
// dropped when its parent is invalidated.
func CoursesKey() string { return "courses" }
func CourseKey(slug string) string { return "course/" + slug }
func PartsKey(slug string) string { return CourseKey(slug) + "/parts" }
func ChaptersKey(slug string) string { return CourseKey(slug) + "/chapters" }
func CourseProgressKey(slug string) string { return CourseKey(slug) + "/progress" }
func ReviewSheetsKey(slug string) string { return CourseKey(slug) + "/review-sheets" }
func ChapterKey(slug, chapterSlug string) string { return ChaptersKey(slug) + "/" + chapterSlug }
func ExercisesKey(chapterID uint) string { return fmt.Sprintf("chapter/%d/exercises", chapterID) }
func ChapterProgressKey(chapterID uint) string { return fmt.Sprintf("chapter/%d/progress", chapterID) }
func ReviewSheetKey(partID uint) string { return fmt.Sprintf("part/%d/review-sheet", partID) }

const (
	chapterRoot  = "chapter"
	partRoot     = "part"
	progressTail = "/progress"
	sheetsTail   = "/review-sheets"
)

func esc(s string) string { return url.PathEscape(s) }

// Auth

func (c *Client) Register(ctx context.Context, req service.RegisterRequest) (*model.User, error) {
	var user model.User
	data, err := c.do(ctx, c.http.R().SetContext(ctx).SetBody(req), http.MethodPost, "/api/auth/register")
	if err != nil {
		return nil, err
	}
	if err := unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login stores the returned token in the session. Cached per-user progress is dropped.
func (c *Client) Login(ctx context.Context, email, password string) error {
	data, err := c.do(ctx, c.http.R().SetContext(ctx).SetBody(service.LoginRequest{Email: email, Password: password}),
		http.MethodPost, "/api/auth/login")
	if err != nil {
		return err
	}
	var token service.TokenResponse
	if err := unmarshal(data, &token); err != nil {
		return err
	}
	c.session.SetToken(token.AccessToken)
	c.cache.InvalidateSuffix(progressTail)
	return nil
}

func (c *Client) Logout() {
	c.session.Clear()
	c.cache.InvalidateSuffix(progressTail)
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	if !c.session.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	data, err := c.read(ctx, "/api/auth/me")
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Courses

func (c *Client) ListCourses(ctx context.Context) ([]model.Course, error) {
	return get[[]model.Course](ctx, c, CoursesKey(), "/api/courses")
}

func (c *Client) GetCourse(ctx context.Context, slug string) (*model.Course, error) {
	return get[*model.Course](ctx, c, CourseKey(slug), "/api/courses/"+esc(slug))
}

func (c *Client) CreateCourse(ctx context.Context, in service.CourseInput) (*model.Course, error) {
	var course model.Course
	if err := c.write(ctx, http.MethodPost, "/api/courses", in, &course); err != nil {
		return nil, err
	}
	c.cache.Invalidate(CoursesKey(), CourseKey(course.Slug))
	return &course, nil
}

// UpdateCourse invalidates both the old and the new slug.
func (c *Client) UpdateCourse(ctx context.Context, slug string, patch service.CoursePatch) (*model.Course, error) {
	var course model.Course
	if err := c.write(ctx, http.MethodPut, "/api/courses/"+esc(slug), patch, &course); err != nil {
		return nil, err
	}
	c.cache.Invalidate(CoursesKey(), CourseKey(slug), CourseKey(course.Slug))
	return &course, nil
}

func (c *Client) DeleteCourse(ctx context.Context, slug string) error {
	if err := c.write(ctx, http.MethodDelete, "/api/courses/"+esc(slug), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(CoursesKey(), CourseKey(slug), chapterRoot, partRoot)
	return nil
}

// Parts

func (c *Client) ListParts(ctx context.Context, slug string) ([]model.Part, error) {
	return get[[]model.Part](ctx, c, PartsKey(slug), "/api/courses/"+esc(slug)+"/parts")
}

func (c *Client) CreatePart(ctx context.Context, slug string, in service.PartInput) (*model.Part, error) {
	var part model.Part
	if err := c.write(ctx, http.MethodPost, "/api/courses/"+esc(slug)+"/parts", in, &part); err != nil {
		return nil, err
	}
	c.cache.Invalidate(PartsKey(slug))
	return &part, nil
}

func (c *Client) UpdatePart(ctx context.Context, slug string, partID uint, patch service.PartPatch) (*model.Part, error) {
	var part model.Part
	path := fmt.Sprintf("/api/courses/%s/parts/%d", esc(slug), partID)
	if err := c.write(ctx, http.MethodPut, path, patch, &part); err != nil {
		return nil, err
	}
	c.cache.Invalidate(PartsKey(slug))
	return &part, nil
}

// DeletePart also drops the course's chapters and progress since the server deletes the part's chapters.
func (c *Client) DeletePart(ctx context.Context, slug string, partID uint) error {
	path := fmt.Sprintf("/api/courses/%s/parts/%d", esc(slug), partID)
	if err := c.write(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(CourseKey(slug), ReviewSheetKey(partID), chapterRoot)
	return nil
}

// Chapters

func (c *Client) ListChapters(ctx context.Context, slug string) ([]model.ChapterListItem, error) {
	return get[[]model.ChapterListItem](ctx, c, ChaptersKey(slug), "/api/courses/"+esc(slug)+"/chapters")
}

func (c *Client) GetChapter(ctx context.Context, slug, chapterSlug string) (*model.ChapterDetail, error) {
	return get[*model.ChapterDetail](ctx, c, ChapterKey(slug, chapterSlug),
		"/api/courses/"+esc(slug)+"/chapters/"+esc(chapterSlug))
}

func (c *Client) CreateChapter(ctx context.Context, slug string, in service.ChapterInput) (*model.Chapter, error) {
	var chapter model.Chapter
	if err := c.write(ctx, http.MethodPost, "/api/courses/"+esc(slug)+"/chapters", in, &chapter); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ChaptersKey(slug), CourseProgressKey(slug))
	return &chapter, nil
}

// UpdateChapter drops the chapter list and every chapter detail of the course, since
// neighbouring chapters embed this one's title and slug in their prev/next links.
func (c *Client) UpdateChapter(ctx context.Context, slug, chapterSlug string, patch service.ChapterPatch) (*model.Chapter, error) {
	var chapter model.Chapter
	path := "/api/courses/" + esc(slug) + "/chapters/" + esc(chapterSlug)
	if err := c.write(ctx, http.MethodPut, path, patch, &chapter); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ChaptersKey(slug))
	return &chapter, nil
}

func (c *Client) DeleteChapter(ctx context.Context, slug, chapterSlug string) error {
	path := "/api/courses/" + esc(slug) + "/chapters/" + esc(chapterSlug)
	if err := c.write(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(ChaptersKey(slug), CourseProgressKey(slug), chapterRoot)
	return nil
}

// Exercises

func (c *Client) ListExercises(ctx context.Context, chapterID uint) ([]model.Exercise, error) {
	return get[[]model.Exercise](ctx, c, ExercisesKey(chapterID), fmt.Sprintf("/api/chapters/%d/exercises", chapterID))
}

func (c *Client) CreateExercise(ctx context.Context, chapterID uint, in service.ExerciseInput) (*model.Exercise, error) {
	var exercise model.Exercise
	if err := c.write(ctx, http.MethodPost, fmt.Sprintf("/api/chapters/%d/exercises", chapterID), in, &exercise); err != nil {
		return nil, err
	}
	c.exercisesChanged(chapterID)
	return &exercise, nil
}

func (c *Client) UpdateExercise(ctx context.Context, chapterID, exerciseID uint, patch service.ExercisePatch) (*model.Exercise, error) {
	var exercise model.Exercise
	path := fmt.Sprintf("/api/chapters/%d/exercises/%d", chapterID, exerciseID)
	if err := c.write(ctx, http.MethodPut, path, patch, &exercise); err != nil {
		return nil, err
	}
	c.exercisesChanged(chapterID)
	return &exercise, nil
}

func (c *Client) DeleteExercise(ctx context.Context, chapterID, exerciseID uint) error {
	path := fmt.Sprintf("/api/chapters/%d/exercises/%d", chapterID, exerciseID)
	if err := c.write(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return err
	}
	c.exercisesChanged(chapterID)
	return nil
}

// exercisesChanged drops the chapter's exercises and every progress entry, since course
// progress counts exercises and the client cannot tell which course the chapter is in.
func (c *Client) exercisesChanged(chapterID uint) {
	c.cache.Invalidate(ExercisesKey(chapterID))
	c.cache.InvalidateSuffix(progressTail)
}

// Progress

func (c *Client) GetChapterProgress(ctx context.Context, chapterID uint) (*model.ChapterProgressView, error) {
	if !c.session.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return get[*model.ChapterProgressView](ctx, c, ChapterProgressKey(chapterID), fmt.Sprintf("/api/chapters/%d/progress", chapterID))
}

func (c *Client) GetCourseProgress(ctx context.Context, slug string) (*model.CourseProgress, error) {
	if !c.session.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return get[*model.CourseProgress](ctx, c, CourseProgressKey(slug), "/api/courses/"+esc(slug)+"/progress")
}

func (c *Client) MarkChapterComplete(ctx context.Context, chapterID uint, completed bool) (*model.ChapterProgress, error) {
	var progress model.ChapterProgress
	body := service.ChapterProgressRequest{IsCompleted: completed}
	if err := c.write(ctx, http.MethodPut, fmt.Sprintf("/api/chapters/%d/progress", chapterID), body, &progress); err != nil {
		return nil, err
	}
	c.cache.InvalidateSuffix(progressTail)
	return &progress, nil
}

// SubmitExercise sends answer as is: an option index, a boolean or source code.
func (c *Client) SubmitExercise(ctx context.Context, exerciseID uint, answer interface{}) (*model.SubmissionResult, error) {
	var result model.SubmissionResult
	body := map[string]interface{}{"answer": answer}
	if err := c.write(ctx, http.MethodPost, fmt.Sprintf("/api/exercises/%d/submissions", exerciseID), body, &result); err != nil {
		return nil, err
	}
	c.cache.InvalidateSuffix(progressTail)
	return &result, nil
}

// Review sheets

func (c *Client) GetReviewSheet(ctx context.Context, partID uint) (*model.ReviewSheet, error) {
	return get[*model.ReviewSheet](ctx, c, ReviewSheetKey(partID), fmt.Sprintf("/api/parts/%d/review-sheet", partID))
}

func (c *Client) ListReviewSheets(ctx context.Context, slug string) ([]model.ReviewSheet, error) {
	return get[[]model.ReviewSheet](ctx, c, ReviewSheetsKey(slug), "/api/courses/"+esc(slug)+"/review-sheets")
}

func (c *Client) UpsertReviewSheet(ctx context.Context, partID uint, content string) (*model.ReviewSheet, error) {
	var sheet model.ReviewSheet
	body := service.ReviewSheetInput{Content: content}
	if err := c.write(ctx, http.MethodPost, fmt.Sprintf("/api/parts/%d/review-sheet", partID), body, &sheet); err != nil {
		return nil, err
	}
	c.reviewSheetChanged(partID)
	return &sheet, nil
}

func (c *Client) GenerateReviewSheet(ctx context.Context, partID uint) (*model.ReviewSheet, error) {
	var sheet model.ReviewSheet
	if err := c.write(ctx, http.MethodPost, fmt.Sprintf("/api/parts/%d/review-sheet/generate", partID), nil, &sheet); err != nil {
		return nil, err
	}
	c.reviewSheetChanged(partID)
	return &sheet, nil
}

func (c *Client) DeleteReviewSheet(ctx context.Context, partID uint) error {
	if err := c.write(ctx, http.MethodDelete, fmt.Sprintf("/api/parts/%d/review-sheet", partID), nil, nil); err != nil {
		return err
	}
	c.reviewSheetChanged(partID)
	return nil
}

func (c *Client) reviewSheetChanged(partID uint) {
	c.cache.Invalidate(ReviewSheetKey(partID))
	c.cache.InvalidateSuffix(sheetsTail)
}

// Images

// UploadImage sends r as multipart field "file" and returns the public URL of the stored image.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*service.ImageUploadResponse, error) {
	if !c.session.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	req := c.request(ctx).SetFileReader("file", filename, r)
	data, err := c.do(ctx, req, http.MethodPost, "/api/images/upload")
	if err != nil {
		return nil, err
	}
	var out service.ImageUploadResponse
	if err := unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteImage(ctx context.Context, filename string) error {
	return c.write(ctx, http.MethodDelete, "/api/images/"+esc(filename), nil, nil)
}
