package main

import (
	"brainer_backend/internal/model"
	"brainer_backend/internal/service"
	"brainer_backend/internal/util"
	"brainer_backend/pkg/client"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const placeholderContent = "<p>Content will be added in a future step.</p>"

// CoursePlan is the table of contents of a course: parts with their chapters.
type CoursePlan struct {
	Course PlanCourse `json:"course" yaml:"course"`
	Parts  []PlanPart `json:"parts" yaml:"parts"`
}

type PlanCourse struct {
	Title       string `json:"title" yaml:"title"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description" yaml:"description"`
}

type PlanPart struct {
	Order       int           `json:"order" yaml:"order"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description" yaml:"description"`
	Chapters    []PlanChapter `json:"chapters" yaml:"chapters"`
}

type PlanChapter struct {
	Order    int    `json:"order" yaml:"order"`
	Title    string `json:"title" yaml:"title"`
	Slug     string `json:"slug" yaml:"slug"`
	Synopsis string `json:"synopsis" yaml:"synopsis"`
}

// LoadPlan reads a .json, .yaml or .yml course plan.
func LoadPlan(path string) (*CoursePlan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodePlan(f, filepath.Ext(path))
}

func DecodePlan(r io.Reader, ext string) (*CoursePlan, error) {
	var plan CoursePlan
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(r).Decode(&plan); err != nil {
			return nil, fmt.Errorf("parsing yaml plan: %w", err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&plan); err != nil {
			return nil, fmt.Errorf("parsing json plan: %w", err)
		}
	}
	if err := plan.Normalize(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Normalize fills in missing slugs from titles and numbers parts and chapters when the plan
// leaves order at zero. Chapter order runs across the whole course.
func (p *CoursePlan) Normalize() error {
	p.Course.Title = strings.TrimSpace(p.Course.Title)
	if p.Course.Title == "" {
		return fmt.Errorf("plan: course title is required")
	}
	if p.Course.Slug == "" {
		p.Course.Slug = util.Slugify(p.Course.Title)
	}
	if !util.IsSlug(p.Course.Slug) {
		return fmt.Errorf("plan: invalid course slug %q", p.Course.Slug)
	}

	next := 1
	seen := map[string]bool{}
	for i := range p.Parts {
		part := &p.Parts[i]
		if part.Order == 0 {
			part.Order = i + 1
		}
		for j := range part.Chapters {
			ch := &part.Chapters[j]
			if ch.Order == 0 {
				ch.Order = next
			}
			if ch.Order >= next {
				next = ch.Order + 1
			}
			if ch.Slug == "" {
				ch.Slug = util.Slugify(ch.Title)
			}
			if !util.IsSlug(ch.Slug) {
				return fmt.Errorf("plan: chapter %q has invalid slug %q", ch.Title, ch.Slug)
			}
			if seen[ch.Slug] {
				return fmt.Errorf("plan: duplicate chapter slug %q", ch.Slug)
			}
			seen[ch.Slug] = true
		}
	}
	return nil
}

func (p *CoursePlan) ChapterCount() int {
	n := 0
	for _, part := range p.Parts {
		n += len(part.Chapters)
	}
	return n
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ImportPlan creates the course, then its parts, then the chapters of each part.
// Course, parts (by order) and chapters (by slug) that already exist are reused, so an
// interrupted import can be resumed.
func ImportPlan(ctx context.Context, c *client.Client, plan *CoursePlan, out io.Writer) error {
	_, err := c.CreateCourse(ctx, service.CourseInput{
		Title:       plan.Course.Title,
		Slug:        plan.Course.Slug,
		Description: optional(plan.Course.Description),
	})
	switch {
	case err == nil:
		fmt.Fprintf(out, "course %s created\n", plan.Course.Slug)
	case client.StatusOf(err) == http.StatusConflict:
		fmt.Fprintf(out, "course %s already exists, reusing it\n", plan.Course.Slug)
	default:
		return fmt.Errorf("creating course: %w", err)
	}

	for _, p := range plan.Parts {
		part, err := c.CreatePart(ctx, plan.Course.Slug, service.PartInput{
			Order:       p.Order,
			Title:       p.Title,
			Description: optional(p.Description),
		})
		if client.StatusOf(err) == http.StatusConflict {
			part, err = existingPart(ctx, c, plan.Course.Slug, p.Order)
			if err == nil {
				fmt.Fprintf(out, "  part %d: %s (exists)\n", part.Order, part.Title)
			}
		} else if err == nil {
			fmt.Fprintf(out, "  part %d: %s\n", part.Order, part.Title)
		}
		if err != nil {
			return fmt.Errorf("creating part %d: %w", p.Order, err)
		}

		for _, ch := range p.Chapters {
			content := placeholderContent
			_, err := c.CreateChapter(ctx, plan.Course.Slug, service.ChapterInput{
				PartID:   &part.ID,
				Order:    ch.Order,
				Title:    ch.Title,
				Slug:     ch.Slug,
				Content:  &content,
				Synopsis: optional(ch.Synopsis),
			})
			if client.StatusOf(err) == http.StatusConflict {
				var exists bool
				exists, err = chapterExists(ctx, c, plan.Course.Slug, ch.Slug)
				if err == nil && exists {
					fmt.Fprintf(out, "    chapter %2d: %s (exists)\n", ch.Order, ch.Title)
					continue
				}
				if err == nil {
					err = fmt.Errorf("order %d is taken by another chapter", ch.Order)
				}
			}
			if err != nil {
				return fmt.Errorf("creating chapter %q: %w", ch.Slug, err)
			}
			fmt.Fprintf(out, "    chapter %2d: %s\n", ch.Order, ch.Title)
		}
	}
	return nil
}

// existingPart finds the part a previous import created at this order.
func existingPart(ctx context.Context, c *client.Client, courseSlug string, order int) (*model.Part, error) {
	parts, err := c.ListParts(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	for i := range parts {
		if parts[i].Order == order {
			return &parts[i], nil
		}
	}
	return nil, fmt.Errorf("part order %d conflicts but no such part is listed", order)
}

func chapterExists(ctx context.Context, c *client.Client, courseSlug, chapterSlug string) (bool, error) {
	chapters, err := c.ListChapters(ctx, courseSlug)
	if err != nil {
		return false, err
	}
	for _, ch := range chapters {
		if ch.Slug == chapterSlug {
			return true, nil
		}
	}
	return false, nil
}
