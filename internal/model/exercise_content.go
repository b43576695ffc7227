package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ExerciseContent is one variant of the exercise payload, selected by ExerciseType.
type ExerciseContent interface {
	ExerciseType() ExerciseType
}

// swagger:model MultipleChoiceContent
type MultipleChoiceContent struct {
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

func (*MultipleChoiceContent) ExerciseType() ExerciseType { return ExerciseMultipleChoice }

// swagger:model TrueFalseContent
type TrueFalseContent struct {
	Statement     string `json:"statement"`
	CorrectAnswer bool   `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

func (*TrueFalseContent) ExerciseType() ExerciseType { return ExerciseTrueFalse }

// swagger:model CodeContent
type CodeContent struct {
	Instructions string   `json:"instructions"`
	StarterCode  string   `json:"starter_code"`
	Solution     string   `json:"solution"`
	Hints        []string `json:"hints,omitempty"`
	Language     string   `json:"language,omitempty"`
	Tests        string   `json:"tests,omitempty"`
}

func (*CodeContent) ExerciseType() ExerciseType { return ExerciseCode }

// ContentFieldError names the offending path, e.g. "content.options".
type ContentFieldError struct {
	Field   string
	Message string
}

// ContentValidationError reports a content or answer that does not fit the exercise type.
type ContentValidationError struct {
	Message string
	Fields  []ContentFieldError
}

func (e *ContentValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func contentError(message, field, detail string) *ContentValidationError {
	return &ContentValidationError{Message: message, Fields: []ContentFieldError{{Field: field, Message: detail}}}
}

const multipleChoiceSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["question", "options", "correct_index", "explanation"],
  "properties": {
    "question": {"type": "string", "minLength": 1},
    "options": {"type": "array", "minItems": 2, "items": {"type": "string"}},
    "correct_index": {"type": "integer", "minimum": 0},
    "explanation": {"type": "string"}
  }
}`

const trueFalseSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["statement", "correct_answer", "explanation"],
  "properties": {
    "statement": {"type": "string", "minLength": 1},
    "correct_answer": {"type": "boolean"},
    "explanation": {"type": "string"}
  }
}`

const codeSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["instructions", "starter_code", "solution"],
  "properties": {
    "instructions": {"type": "string", "minLength": 1},
    "starter_code": {"type": "string"},
    "solution": {"type": "string"},
    "hints": {"type": "array", "items": {"type": "string"}},
    "language": {"type": "string"},
    "tests": {"type": "string"}
  }
}`

var contentSchemas = map[ExerciseType]*gojsonschema.Schema{
	ExerciseMultipleChoice: mustSchema(multipleChoiceSchema),
	ExerciseTrueFalse:      mustSchema(trueFalseSchema),
	ExerciseCode:           mustSchema(codeSchema),
}

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("exercise content schema: %v", err))
	}
	return s
}

// ParseExerciseContent validates raw against the schema of t and decodes it into the matching variant.
func ParseExerciseContent(t ExerciseType, raw []byte) (ExerciseContent, error) {
	schema, ok := contentSchemas[t]
	if !ok {
		return nil, contentError("invalid exercise type", "type", "must be one of: multiple_choice, true_false, code")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, contentError("invalid exercise content", "content", "field required")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, contentError("invalid exercise content", "content", "must be a JSON object")
	}
	if !result.Valid() {
		verr := &ContentValidationError{Message: fmt.Sprintf("content does not match exercise type %s", t)}
		for _, re := range result.Errors() {
			verr.Fields = append(verr.Fields, ContentFieldError{Field: schemaErrorField(re), Message: re.Description()})
		}
		return nil, verr
	}

	var content ExerciseContent
	switch t {
	case ExerciseMultipleChoice:
		content = &MultipleChoiceContent{}
	case ExerciseTrueFalse:
		content = &TrueFalseContent{}
	case ExerciseCode:
		content = &CodeContent{}
	}
	if err := json.Unmarshal(raw, content); err != nil {
		return nil, contentError("invalid exercise content", "content", err.Error())
	}

	if mc, ok := content.(*MultipleChoiceContent); ok && mc.CorrectIndex >= len(mc.Options) {
		return nil, contentError("invalid exercise content", "content.correct_index",
			fmt.Sprintf("must be lower than the number of options (%d)", len(mc.Options)))
	}
	return content, nil
}

func schemaErrorField(re gojsonschema.ResultError) string {
	field := re.Field()
	if field == "(root)" {
		field = ""
	}
	switch re.Type() {
	case "required", "additional_property_not_allowed":
		// some gojsonschema versions already report the property as the field
		if p, ok := re.Details()["property"].(string); ok && field != p && !strings.HasSuffix(field, "."+p) {
			if field == "" {
				field = p
			} else {
				field += "." + p
			}
		}
	}
	if field == "" {
		return "content"
	}
	return "content." + field
}

// ParseAnswer checks that raw has the answer type expected by content and returns the
// normalized value: int for multiple choice, bool for true/false, string for code.
func ParseAnswer(content ExerciseContent, raw json.RawMessage) (interface{}, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, contentError("invalid answer", "answer", "field required")
	}

	switch c := content.(type) {
	case *MultipleChoiceContent:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			return nil, contentError("invalid answer", "answer", "must be an integer option index")
		}
		n, ok := v.(json.Number)
		if !ok {
			return nil, contentError("invalid answer", "answer", "must be an integer option index")
		}
		idx, err := n.Int64()
		if err != nil {
			return nil, contentError("invalid answer", "answer", "must be an integer option index")
		}
		if idx < 0 || idx >= int64(len(c.Options)) {
			return nil, contentError("invalid answer", "answer",
				fmt.Sprintf("option index out of range [0, %d)", len(c.Options)))
		}
		return int(idx), nil
	case *TrueFalseContent:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, contentError("invalid answer", "answer", "must be a boolean")
		}
		return b, nil
	case *CodeContent:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, contentError("invalid answer", "answer", "must be a string")
		}
		return s, nil
	default:
		return nil, contentError("invalid answer", "answer", "exercise type cannot be answered")
	}
}
