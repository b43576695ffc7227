package service

import (
	"brainer_backend/internal/config"
	"brainer_backend/internal/model"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewJudge0EvaluatorWithoutURL(t *testing.T) {
	if e := NewJudge0Evaluator(config.Judge0Config{}); e != nil {
		t.Errorf("NewJudge0Evaluator() = %v, want nil", e)
	}
}

func TestJudge0Evaluate(t *testing.T) {
	tests := []struct {
		name     string
		statusID int
		want     bool
	}{
		{"accepted", 3, true},
		{"wrong answer", 4, false},
		{"compile error", 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got judge0Submission
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/submissions" {
					t.Errorf("path = %s, want /submissions", r.URL.Path)
				}
				if r.URL.Query().Get("wait") != "true" {
					t.Errorf("wait = %q, want true", r.URL.Query().Get("wait"))
				}
				if r.Header.Get("X-RapidAPI-Key") != "secret" {
					t.Errorf("X-RapidAPI-Key = %q, want secret", r.Header.Get("X-RapidAPI-Key"))
				}
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Errorf("decode body: %v", err)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"status":{"id":` + strconv.Itoa(tt.statusID) + `,"description":"x"}}`))
			}))
			defer server.Close()

			e := NewJudge0Evaluator(config.Judge0Config{URL: server.URL + "/", APIKey: "secret", Timeout: 5})
			ok, err := e.Evaluate(context.Background(), &model.CodeContent{
				Language: "Python",
				Tests:    "assert f() == 1",
			}, "def f(): return 1")
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if ok != tt.want {
				t.Errorf("Evaluate() = %v, want %v", ok, tt.want)
			}
			if got.LanguageID != 71 {
				t.Errorf("language_id = %d, want 71", got.LanguageID)
			}
			if !strings.HasSuffix(got.SourceCode, "\n\nassert f() == 1") {
				t.Errorf("source_code = %q, want tests appended", got.SourceCode)
			}
		})
	}
}

func TestJudge0EvaluateAgainstSolution(t *testing.T) {
	const solution = "print(6 * 7)"

	var mu sync.Mutex
	var runs []judge0Submission
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sub judge0Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			t.Errorf("decode body: %v", err)
		}
		mu.Lock()
		runs = append(runs, sub)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case sub.SourceCode == solution:
			w.Write([]byte(`{"status":{"id":3,"description":"Accepted"},"stdout":"42\n"}`))
		case sub.ExpectedOutput != nil && *sub.ExpectedOutput == "42\n" && strings.Contains(sub.SourceCode, "42"):
			w.Write([]byte(`{"status":{"id":3,"description":"Accepted"},"stdout":"42\n"}`))
		default:
			w.Write([]byte(`{"status":{"id":4,"description":"Wrong Answer"},"stdout":"0\n"}`))
		}
	}))
	defer server.Close()
	e := NewJudge0Evaluator(config.Judge0Config{URL: server.URL})
	content := &model.CodeContent{Instructions: "Print 42", Solution: solution}

	tests := []struct {
		answer string
		want   bool
	}{
		{"print(42)", true},
		{"print(0)", false},
	}
	for _, tt := range tests {
		mu.Lock()
		runs = nil
		mu.Unlock()

		ok, err := e.Evaluate(context.Background(), content, tt.answer)
		if err != nil {
			t.Fatalf("Evaluate(%q) error = %v", tt.answer, err)
		}
		if ok != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.answer, ok, tt.want)
		}
		mu.Lock()
		got := runs
		mu.Unlock()
		if len(got) != 2 || got[0].ExpectedOutput != nil || got[1].ExpectedOutput == nil {
			t.Errorf("runs = %+v, want the solution first and then the answer with expected_output", got)
		}
	}
}

func TestJudge0NotGradable(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":{"id":3,"description":"Accepted"},"stdout":null}`))
	}))
	defer server.Close()
	e := NewJudge0Evaluator(config.Judge0Config{URL: server.URL})

	tests := []struct {
		name      string
		content   *model.CodeContent
		wantCalls int32
	}{
		{"no tests and no solution", &model.CodeContent{Instructions: "x"}, 0},
		{"solution prints nothing", &model.CodeContent{Instructions: "x", Solution: "pass"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			atomic.StoreInt32(&calls, 0)
			ok, err := e.Evaluate(context.Background(), tt.content, "import sys")
			if !errors.Is(err, ErrNotGradable) {
				t.Fatalf("Evaluate() = %v, %v; want ErrNotGradable", ok, err)
			}
			if got := atomic.LoadInt32(&calls); got != tt.wantCalls {
				t.Errorf("judge0 calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestJudge0UnsupportedLanguage(t *testing.T) {
	e := NewJudge0Evaluator(config.Judge0Config{URL: "http://127.0.0.1:1"})
	if _, err := e.Evaluate(context.Background(), &model.CodeContent{Language: "cobol"}, "x"); err == nil {
		t.Fatal("Evaluate() error = nil, want unsupported language")
	}
}

type stubEvaluator struct {
	result bool
	err    error
	calls  int
}

func (s *stubEvaluator) Evaluate(ctx context.Context, content *model.CodeContent, answer string) (bool, error) {
	s.calls++
	return s.result, s.err
}

func TestSubmitCodeExerciseWithEvaluator(t *testing.T) {
	tests := []struct {
		name string
		stub *stubEvaluator
		want *bool
	}{
		{"passes", &stubEvaluator{result: true}, boolPtr(true)},
		{"fails", &stubEvaluator{result: false}, boolPtr(false)},
		{"evaluator error leaves it ungraded", &stubEvaluator{err: errors.New("boom")}, nil},
		{"nothing to compare with", &stubEvaluator{err: ErrNotGradable}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.stub)
			f.course(t, "c")
			ch := f.chapter(t, "c", "intro", 1, nil)
			code := f.exercise(t, ch.ID, model.ExerciseCode, codeContent)

			got, err := f.progress.SubmitExercise(context.Background(), 1, code.ID, json.RawMessage(`"print('hi')"`))
			if err != nil {
				t.Fatalf("SubmitExercise() error = %v", err)
			}
			if tt.stub.calls != 1 {
				t.Errorf("evaluator calls = %d, want 1", tt.stub.calls)
			}
			if !sameGrade(got.IsCorrect, tt.want) {
				t.Errorf("IsCorrect = %v, want %v", fmtGrade(got.IsCorrect), fmtGrade(tt.want))
			}
		})
	}
}
