package util

import (
	"errors"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// 错误类别，统一通过 errors.Is 判断后映射为 HTTP 状态码
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// FieldError 字段级校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError carries an error kind plus the entity it concerns.
type AppError struct {
	Kind    error
	Entity  string
	ID      interface{}
	Message string
	Fields  []FieldError
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Entity != "" && e.ID != nil {
		return fmt.Sprintf("%s %v %s", e.Entity, e.ID, e.Kind)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s %s", e.Entity, e.Kind)
	}
	return e.Kind.Error()
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

func NotFoundError(entity string, id interface{}) error {
	return &AppError{
		Kind:    ErrNotFound,
		Entity:  entity,
		ID:      id,
		Message: fmt.Sprintf("%s not found: %v", cases.Title(language.English).String(entity), id),
	}
}

func ConflictError(entity, message string) error {
	return &AppError{Kind: ErrConflict, Entity: entity, Message: message}
}

func ValidationError(message string, fields ...FieldError) error {
	return &AppError{Kind: ErrValidation, Message: message, Fields: fields}
}

func UnauthorizedError(message string) error {
	return &AppError{Kind: ErrUnauthorized, Message: message}
}

func ForbiddenError(message string) error {
	return &AppError{Kind: ErrForbidden, Message: message}
}

// FieldsOf returns the field-level details attached to err, if any.
func FieldsOf(err error) []FieldError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
