package service

import (
	"brainer_backend/internal/config"
	"brainer_backend/internal/model"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// judge0Accepted is the Judge0 status id for a run whose output matched.
const judge0Accepted = 3

// ErrNotGradable means the exercise has neither tests nor a solution to compare with.
var ErrNotGradable = errors.New("code exercise has no tests or solution")

var judge0Languages = map[string]int{
	"c":          50,
	"cpp":        54,
	"c++":        54,
	"go":         60,
	"java":       62,
	"javascript": 63,
	"js":         63,
	"python":     71,
	"python3":    71,
	"sql":        82,
	"typescript": 74,
}

type judge0Submission struct {
	SourceCode     string  `json:"source_code"`
	LanguageID     int     `json:"language_id"`
	ExpectedOutput *string `json:"expected_output,omitempty"`
}

type judge0Result struct {
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
}

// Judge0Evaluator grades code answers on a Judge0 instance. With tests the answer is run with the
// tests appended; without tests the solution is run first and its stdout becomes the expected output.
type Judge0Evaluator struct {
	client *resty.Client
}

// NewJudge0Evaluator returns nil when no Judge0 URL is configured.
func NewJudge0Evaluator(cfg config.Judge0Config) *Judge0Evaluator {
	if cfg.URL == "" {
		return nil
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-RapidAPI-Key", cfg.APIKey)
	}
	if cfg.Host != "" {
		client.SetHeader("X-RapidAPI-Host", cfg.Host)
	}
	return &Judge0Evaluator{client: client}
}

func (e *Judge0Evaluator) Evaluate(ctx context.Context, content *model.CodeContent, answer string) (bool, error) {
	lang := strings.ToLower(strings.TrimSpace(content.Language))
	if lang == "" {
		lang = "python"
	}
	languageID, ok := judge0Languages[lang]
	if !ok {
		return false, fmt.Errorf("judge0: unsupported language %q", content.Language)
	}

	if strings.TrimSpace(content.Tests) != "" {
		result, err := e.run(ctx, judge0Submission{SourceCode: answer + "\n\n" + content.Tests, LanguageID: languageID})
		if err != nil {
			return false, err
		}
		return result.Status.ID == judge0Accepted, nil
	}
	if strings.TrimSpace(content.Solution) == "" {
		return false, ErrNotGradable
	}

	reference, err := e.run(ctx, judge0Submission{SourceCode: content.Solution, LanguageID: languageID})
	if err != nil {
		return false, err
	}
	if reference.Status.ID != judge0Accepted {
		return false, fmt.Errorf("judge0: reference solution failed: %s", reference.Status.Description)
	}
	// 参考答案没有输出时无从比较
	if reference.Stdout == nil || *reference.Stdout == "" {
		return false, ErrNotGradable
	}
	expected := *reference.Stdout
	result, err := e.run(ctx, judge0Submission{SourceCode: answer, LanguageID: languageID, ExpectedOutput: &expected})
	if err != nil {
		return false, err
	}
	return result.Status.ID == judge0Accepted, nil
}

func (e *Judge0Evaluator) run(ctx context.Context, submission judge0Submission) (*judge0Result, error) {
	var result judge0Result
	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"base64_encoded": "false", "wait": "true"}).
		SetBody(submission).
		SetResult(&result).
		Post("/submissions")
	if err != nil {
		return nil, fmt.Errorf("judge0: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("judge0: status %d: %s", resp.StatusCode(), resp.String())
	}
	return &result, nil
}
