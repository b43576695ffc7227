package model

import (
	"encoding/json"
	"testing"
)

func TestAnswerScan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"index from sqlite", int64(1), `1`},
		{"float", float64(2), `2`},
		{"bool", true, `true`},
		{"text", `"print('hi')"`, `"print('hi')"`},
		{"bytes", []byte(`false`), `false`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Answer
			if err := a.Scan(tt.value); err != nil {
				t.Fatalf("Scan(%v) error = %v", tt.value, err)
			}
			if string(a) != tt.want {
				t.Errorf("Scan(%v) = %s, want %s", tt.value, a, tt.want)
			}
		})
	}

	var a Answer
	if err := a.Scan(struct{}{}); err == nil {
		t.Errorf("Scan(struct{}) error = nil, want failure")
	}
}

func TestAnswerJSON(t *testing.T) {
	out, err := json.Marshal(SubmissionResult{ExerciseID: 1, Answer: Answer(`1`)})
	if err != nil {
		t.Fatal(err)
	}
	var back struct {
		Answer json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatal(err)
	}
	if string(back.Answer) != `1` {
		t.Errorf("answer = %s, want 1", back.Answer)
	}

	var empty Answer
	if v, _ := empty.Value(); v != nil {
		t.Errorf("empty Value() = %v, want nil", v)
	}
}
