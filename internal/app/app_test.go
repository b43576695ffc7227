package app

import (
	"brainer_backend/internal/config"
	"brainer_backend/internal/model"
	"brainer_backend/internal/service"
	"brainer_backend/pkg/client"
	"brainer_backend/pkg/database"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	gormlogger "gorm.io/gorm/logger"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), gormlogger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: gin.TestMode},
		JWT:    config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", ExpireTime: time.Hour},
		Storage: config.StorageConfig{
			Type:         "local",
			LocalPath:    t.TempDir(),
			PublicPrefix: "/static",
			MaxUploadMB:  1,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	a := New(cfg, db, nil)
	server := httptest.NewServer(a.Router)
	t.Cleanup(server.Close)
	return a, server
}

func signIn(t *testing.T, c *client.Client, email, username string) {
	t.Helper()
	ctx := context.Background()
	if _, err := c.Register(ctx, service.RegisterRequest{Email: email, Username: username, Password: "password123"}); err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	if err := c.Login(ctx, email, "password123"); err != nil {
		t.Fatalf("Login(%s) error = %v", email, err)
	}
}

func rawRequest(t *testing.T, server *httptest.Server, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	_, server := newTestApp(t)

	resp := rawRequest(t, server, http.MethodGet, "/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/health status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestCourseLifecycle(t *testing.T) {
	_, server := newTestApp(t)
	ctx := context.Background()
	c := client.New(server.URL, nil)
	signIn(t, c, "ada@example.com", "ada")

	course, err := c.CreateCourse(ctx, service.CourseInput{Title: "Les bases de Python", Slug: "python-basics"})
	if err != nil {
		t.Fatalf("CreateCourse() error = %v", err)
	}
	if _, err := c.CreateCourse(ctx, service.CourseInput{Title: "Again", Slug: "python-basics"}); client.StatusOf(err) != http.StatusConflict {
		t.Errorf("CreateCourse(duplicate) error = %v, want 409", err)
	}

	part, err := c.CreatePart(ctx, course.Slug, service.PartInput{Order: 1, Title: "Fondamentaux"})
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	intro, err := c.CreateChapter(ctx, course.Slug, service.ChapterInput{
		PartID: &part.ID, Order: 1, Title: "Introduction", Slug: "intro",
		Content: strPtr("<p>Bonjour</p>"), Synopsis: strPtr("Premiers pas."),
	})
	if err != nil {
		t.Fatalf("CreateChapter(intro) error = %v", err)
	}
	if _, err := c.CreateChapter(ctx, course.Slug, service.ChapterInput{
		PartID: &part.ID, Order: 2, Title: "Variables", Slug: "variables",
	}); err != nil {
		t.Fatalf("CreateChapter(variables) error = %v", err)
	}

	chapters, err := c.ListChapters(ctx, course.Slug)
	if err != nil {
		t.Fatalf("ListChapters() error = %v", err)
	}
	if len(chapters) != 2 || chapters[0].Slug != "intro" || chapters[1].Slug != "variables" {
		t.Fatalf("ListChapters() = %+v, want [intro variables]", chapters)
	}

	detail, err := c.GetChapter(ctx, course.Slug, "intro")
	if err != nil {
		t.Fatalf("GetChapter() error = %v", err)
	}
	if detail.Prev != nil || detail.Next == nil || detail.Next.Slug != "variables" {
		t.Errorf("GetChapter() links = %v/%v, want none/variables", detail.Prev, detail.Next)
	}
	if detail.Content == nil || *detail.Content != "<p>Bonjour</p>" {
		t.Errorf("GetChapter() content = %v, want the chapter body", detail.Content)
	}

	// 部分更新只改 content
	updated, err := c.UpdateChapter(ctx, course.Slug, "intro", service.ChapterPatch{Content: strPtr("<p>Salut</p>")})
	if err != nil {
		t.Fatalf("UpdateChapter() error = %v", err)
	}
	if updated.Title != "Introduction" || updated.Order != 1 {
		t.Errorf("UpdateChapter() = %q/%d, want title and order untouched", updated.Title, updated.Order)
	}

	exercise, err := c.CreateExercise(ctx, intro.ID, service.ExerciseInput{
		Title:   "Vrai ou faux",
		Type:    model.ExerciseTrueFalse,
		Content: json.RawMessage(`{"statement":"Python est interprété","correct_answer":true,"explanation":"CPython"}`),
	})
	if err != nil {
		t.Fatalf("CreateExercise() error = %v", err)
	}
	if _, err := c.CreateExercise(ctx, intro.ID, service.ExerciseInput{
		Title:   "Mauvais contenu",
		Type:    model.ExerciseMultipleChoice,
		Content: json.RawMessage(`{"statement":"x","correct_answer":true,"explanation":""}`),
	}); client.StatusOf(err) != http.StatusUnprocessableEntity {
		t.Errorf("CreateExercise(mismatched content) error = %v, want 422", err)
	}

	exercises, err := c.ListExercises(ctx, intro.ID)
	if err != nil {
		t.Fatalf("ListExercises() error = %v", err)
	}
	if len(exercises) != 1 || exercises[0].ID != exercise.ID || exercises[0].Order != 1 {
		t.Errorf("ListExercises() = %+v, want only exercise %d at order 1", exercises, exercise.ID)
	}

	sheet, err := c.GenerateReviewSheet(ctx, part.ID)
	if err != nil {
		t.Fatalf("GenerateReviewSheet() error = %v", err)
	}
	if !strings.Contains(sheet.Content, "Premiers pas.") {
		t.Errorf("review sheet = %q, want the intro synopsis", sheet.Content)
	}

	if err := c.DeleteCourse(ctx, course.Slug); err != nil {
		t.Fatalf("DeleteCourse() error = %v", err)
	}
	if _, err := c.GetCourse(ctx, course.Slug); client.StatusOf(err) != http.StatusNotFound {
		t.Errorf("GetCourse() after delete error = %v, want 404", err)
	}
	if _, err := c.ListExercises(ctx, intro.ID); client.StatusOf(err) != http.StatusNotFound {
		t.Errorf("ListExercises() after delete error = %v, want 404", err)
	}
	if _, err := c.GetReviewSheet(ctx, part.ID); client.StatusOf(err) != http.StatusNotFound {
		t.Errorf("GetReviewSheet() after delete error = %v, want 404", err)
	}
}

func TestProgressFlow(t *testing.T) {
	_, server := newTestApp(t)
	ctx := context.Background()
	author := client.New(server.URL, nil)
	signIn(t, author, "author@example.com", "author")

	if _, err := author.CreateCourse(ctx, service.CourseInput{Title: "SQL", Slug: "sql"}); err != nil {
		t.Fatal(err)
	}
	first, err := author.CreateChapter(ctx, "sql", service.ChapterInput{Order: 1, Title: "SELECT", Slug: "select"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := author.CreateChapter(ctx, "sql", service.ChapterInput{Order: 2, Title: "JOIN", Slug: "join"}); err != nil {
		t.Fatal(err)
	}
	mc, err := author.CreateExercise(ctx, first.ID, service.ExerciseInput{
		Title:   "Clause",
		Type:    model.ExerciseMultipleChoice,
		Content: json.RawMessage(`{"question":"Which clause filters rows?","options":["ORDER BY","WHERE"],"correct_index":1,"explanation":"WHERE filters"}`),
	})
	if err != nil {
		t.Fatal(err)
	}

	learner := client.New(server.URL, nil)
	signIn(t, learner, "learner@example.com", "learner")

	result, err := learner.SubmitExercise(ctx, mc.ID, 0)
	if err != nil {
		t.Fatalf("SubmitExercise() error = %v", err)
	}
	if result.IsCorrect == nil || *result.IsCorrect {
		t.Errorf("SubmitExercise(0) is_correct = %v, want false", result.IsCorrect)
	}
	result, err = learner.SubmitExercise(ctx, mc.ID, 1)
	if err != nil {
		t.Fatalf("SubmitExercise() again error = %v", err)
	}
	if result.IsCorrect == nil || !*result.IsCorrect {
		t.Errorf("SubmitExercise(1) is_correct = %v, want true", result.IsCorrect)
	}
	if _, err := learner.SubmitExercise(ctx, mc.ID, "1"); client.StatusOf(err) != http.StatusUnprocessableEntity {
		t.Errorf("SubmitExercise(string) error = %v, want 422", err)
	}

	if _, err := learner.MarkChapterComplete(ctx, first.ID, true); err != nil {
		t.Fatalf("MarkChapterComplete() error = %v", err)
	}
	progress, err := learner.GetCourseProgress(ctx, "sql")
	if err != nil {
		t.Fatalf("GetCourseProgress() error = %v", err)
	}
	if progress.CompletedChapters != 1 || progress.TotalChapters != 2 || progress.CompletionPercentage != 50 {
		t.Errorf("GetCourseProgress() = %+v, want 1/2 at 50%%", progress)
	}
	if progress.AnsweredExercises != 1 || progress.CorrectExercises != 1 {
		t.Errorf("GetCourseProgress() exercises = %d answered, %d correct; want 1, 1", progress.AnsweredExercises, progress.CorrectExercises)
	}

	view, err := learner.GetChapterProgress(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetChapterProgress() error = %v", err)
	}
	if !view.IsCompleted || len(view.Submissions) != 1 {
		t.Fatalf("GetChapterProgress() = %+v, want completed with one submission", view)
	}
	if got := view.Submissions[0]; string(got.Answer) != "1" || got.IsCorrect == nil || !*got.IsCorrect {
		t.Errorf("stored submission answer = %s, is_correct = %v; want 1, true", got.Answer, got.IsCorrect)
	}

	// 作者的进度不受学习者影响
	authorProgress, err := author.GetCourseProgress(ctx, "sql")
	if err != nil {
		t.Fatal(err)
	}
	if authorProgress.CompletedChapters != 0 {
		t.Errorf("author progress = %+v, want nothing completed", authorProgress)
	}

	token := learner.Session().Token()
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"read other user's progress", http.MethodGet, fmt.Sprintf("/api/chapters/%d/progress?user_id=999", first.ID), token, nil, http.StatusForbidden},
		{"write other user's progress", http.MethodPut, fmt.Sprintf("/api/chapters/%d/progress", first.ID), token, map[string]interface{}{"is_completed": true, "user_id": 999}, http.StatusForbidden},
		{"progress without token", http.MethodGet, "/api/courses/sql/progress", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/auth/me", "not-a-jwt", nil, http.StatusUnauthorized},
		{"write without token", http.MethodPost, "/api/courses", "", map[string]string{"title": "x", "slug": "x"}, http.StatusUnauthorized},
		{"bad chapter id", http.MethodGet, "/api/chapters/abc/exercises", "", nil, http.StatusUnprocessableEntity},
		{"missing chapter", http.MethodGet, "/api/chapters/999/exercises", "", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rawRequest(t, server, tt.method, tt.path, tt.token, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestImageUpload(t *testing.T) {
	_, server := newTestApp(t)
	ctx := context.Background()
	c := client.New(server.URL, nil)

	if _, err := c.UploadImage(ctx, "fode_0101.png", bytes.NewReader(pngBytes)); err != client.ErrNotAuthenticated {
		t.Errorf("UploadImage() without session error = %v, want ErrNotAuthenticated", err)
	}

	signIn(t, c, "ada@example.com", "ada")
	uploaded, err := c.UploadImage(ctx, "fode_0101.png", bytes.NewReader(pngBytes))
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if uploaded.URL != "/static/images/fode_0101.png" {
		t.Errorf("URL = %q, want /static/images/fode_0101.png", uploaded.URL)
	}

	resp := rawRequest(t, server, http.MethodGet, uploaded.URL, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET %s status = %d, want 200", uploaded.URL, resp.StatusCode)
	}

	if _, err := c.UploadImage(ctx, "notes.png", strings.NewReader("plain text, not an image")); client.StatusOf(err) != http.StatusUnprocessableEntity {
		t.Errorf("UploadImage(text) error = %v, want 422", err)
	}

	if err := c.DeleteImage(ctx, "fode_0101.png"); err != nil {
		t.Fatalf("DeleteImage() error = %v", err)
	}
	if resp := rawRequest(t, server, http.MethodGet, uploaded.URL, "", nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET %s after delete status = %d, want 404", uploaded.URL, resp.StatusCode)
	}
	if err := c.DeleteImage(ctx, "fode_0101.png"); client.StatusOf(err) != http.StatusNotFound {
		t.Errorf("second DeleteImage() error = %v, want 404", err)
	}
	if resp := rawRequest(t, server, http.MethodDelete, "/api/images/fode_0101.png", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("DELETE without token status = %d, want 401", resp.StatusCode)
	}
}

func TestApplyConfigUpdatesOrigins(t *testing.T) {
	a, _ := newTestApp(t)

	if a.Origins.Allowed("https://brainer.example") {
		t.Fatal("origin allowed before reload")
	}
	next := *a.Config
	next.CORS.AllowedOrigins = []string{"https://brainer.example"}
	next.Log.Level = "debug"
	a.ApplyConfig(&next)

	if !a.Origins.Allowed("https://brainer.example") {
		t.Error("origin not allowed after reload")
	}
	if a.Origins.Allowed("http://localhost:3000") {
		t.Error("old origin still allowed after reload")
	}
}

func strPtr(s string) *string { return &s }
