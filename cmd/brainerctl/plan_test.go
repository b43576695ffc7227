package main

import (
	"brainer_backend/internal/service"
	"brainer_backend/pkg/client"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const yamlPlan = `
course:
  title: Ingénierie des données
  description: Designing data-intensive applications, chapter by chapter.
parts:
  - title: Foundations of Data Systems
    chapters:
      - title: Reliable, Scalable, and Maintainable Applications
        synopsis: What the three words mean in practice.
      - title: Data Models and Query Languages
  - title: Distributed Data
    chapters:
      - title: Replication
        slug: replication
`

const jsonPlan = `{
  "course": {"title": "Go", "slug": "go-basics"},
  "parts": [
    {"order": 2, "title": "Concurrency", "chapters": [
      {"order": 10, "title": "Goroutines"},
      {"title": "Channels"}
    ]}
  ]
}`

func TestDecodePlanYAML(t *testing.T) {
	plan, err := DecodePlan(strings.NewReader(yamlPlan), ".yaml")
	if err != nil {
		t.Fatalf("DecodePlan() error = %v", err)
	}

	if plan.Course.Slug != "ingenierie-des-donnees" {
		t.Errorf("course slug = %q, want ingenierie-des-donnees", plan.Course.Slug)
	}
	if plan.ChapterCount() != 3 {
		t.Errorf("ChapterCount() = %d, want 3", plan.ChapterCount())
	}

	tests := []struct {
		part, chapter int
		wantOrder     int
		wantSlug      string
	}{
		{0, 0, 1, "reliable-scalable-and-maintainable-applications"},
		{0, 1, 2, "data-models-and-query-languages"},
		{1, 0, 3, "replication"},
	}
	for _, tt := range tests {
		ch := plan.Parts[tt.part].Chapters[tt.chapter]
		if ch.Order != tt.wantOrder || ch.Slug != tt.wantSlug {
			t.Errorf("chapter %d.%d = %d/%q, want %d/%q", tt.part, tt.chapter, ch.Order, ch.Slug, tt.wantOrder, tt.wantSlug)
		}
	}
	if plan.Parts[1].Order != 2 {
		t.Errorf("second part order = %d, want 2", plan.Parts[1].Order)
	}
}

func TestDecodePlanJSONKeepsExplicitOrder(t *testing.T) {
	plan, err := DecodePlan(strings.NewReader(jsonPlan), ".json")
	if err != nil {
		t.Fatalf("DecodePlan() error = %v", err)
	}
	part := plan.Parts[0]
	if part.Order != 2 {
		t.Errorf("part order = %d, want 2", part.Order)
	}
	if part.Chapters[0].Order != 10 || part.Chapters[1].Order != 11 {
		t.Errorf("chapter orders = %d,%d, want 10,11", part.Chapters[0].Order, part.Chapters[1].Order)
	}
}

func TestDecodePlanErrors(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		src  string
	}{
		{"missing title", ".json", `{"course": {"slug": "x"}}`},
		{"bad slug", ".json", `{"course": {"title": "X", "slug": "Bad Slug"}}`},
		{"duplicate chapter", ".yml", "course: {title: X}\nparts:\n  - title: P\n    chapters:\n      - title: Intro\n      - title: intro\n"},
		{"not json", ".json", `course: x`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePlan(strings.NewReader(tt.src), tt.ext); err == nil {
				t.Error("DecodePlan() error = nil, want failure")
			}
		})
	}
}

type importRecorder struct {
	mu       sync.Mutex
	parts    []service.PartInput
	chapters []service.ChapterInput
}

func newImportServer(t *testing.T, courseExists bool) (*importRecorder, *client.Client) {
	t.Helper()
	rec := &importRecorder{}
	reply := func(w http.ResponseWriter, status int, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{"code": status, "message": "", "data": data})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/courses", func(w http.ResponseWriter, r *http.Request) {
		if courseExists {
			reply(w, http.StatusConflict, nil)
			return
		}
		var in service.CourseInput
		json.NewDecoder(r.Body).Decode(&in)
		reply(w, http.StatusCreated, map[string]interface{}{"id": 1, "slug": in.Slug, "title": in.Title})
	})
	mux.HandleFunc("POST /api/courses/{slug}/parts", func(w http.ResponseWriter, r *http.Request) {
		var in service.PartInput
		json.NewDecoder(r.Body).Decode(&in)
		rec.mu.Lock()
		rec.parts = append(rec.parts, in)
		id := len(rec.parts)
		rec.mu.Unlock()
		reply(w, http.StatusCreated, map[string]interface{}{"id": id, "order": in.Order, "title": in.Title})
	})
	mux.HandleFunc("POST /api/courses/{slug}/chapters", func(w http.ResponseWriter, r *http.Request) {
		var in service.ChapterInput
		json.NewDecoder(r.Body).Decode(&in)
		rec.mu.Lock()
		rec.chapters = append(rec.chapters, in)
		id := len(rec.chapters)
		rec.mu.Unlock()
		reply(w, http.StatusCreated, map[string]interface{}{"id": id, "slug": in.Slug, "order": in.Order})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	session := client.NewSession()
	session.SetToken("tok")
	return rec, client.New(server.URL, session)
}

func TestImportPlan(t *testing.T) {
	plan, err := DecodePlan(strings.NewReader(yamlPlan), ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	rec, c := newImportServer(t, false)

	var out bytes.Buffer
	if err := ImportPlan(context.Background(), c, plan, &out); err != nil {
		t.Fatalf("ImportPlan() error = %v", err)
	}

	if len(rec.parts) != 2 || len(rec.chapters) != 3 {
		t.Fatalf("created %d parts and %d chapters, want 2 and 3", len(rec.parts), len(rec.chapters))
	}
	first := rec.chapters[0]
	if first.PartID == nil || *first.PartID != 1 {
		t.Errorf("first chapter part_id = %v, want 1", first.PartID)
	}
	if last := rec.chapters[2]; last.PartID == nil || *last.PartID != 2 {
		t.Errorf("last chapter part_id = %v, want 2", last.PartID)
	}
	if first.Content == nil || *first.Content != placeholderContent {
		t.Errorf("chapter content = %v, want the placeholder", first.Content)
	}
	if first.Synopsis == nil || rec.chapters[1].Synopsis != nil {
		t.Errorf("synopses = %v/%v, want only the first set", first.Synopsis, rec.chapters[1].Synopsis)
	}
	if !strings.Contains(out.String(), "course ingenierie-des-donnees created") {
		t.Errorf("output = %q, want a creation line", out.String())
	}
}

func TestImportPlanReusesExistingCourse(t *testing.T) {
	plan, err := DecodePlan(strings.NewReader(jsonPlan), ".json")
	if err != nil {
		t.Fatal(err)
	}
	rec, c := newImportServer(t, true)

	var out bytes.Buffer
	if err := ImportPlan(context.Background(), c, plan, &out); err != nil {
		t.Fatalf("ImportPlan() error = %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("output = %q, want the reuse notice", out.String())
	}
	if len(rec.chapters) != 2 {
		t.Errorf("created %d chapters, want 2", len(rec.chapters))
	}
}
