package service

import (
	"brainer_backend/internal/model"
	"brainer_backend/internal/util"
	"errors"

	"gorm.io/gorm"
)

// notFound converts gorm's missing-row error into a NotFoundError for entity/id.
func notFound(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.NotFoundError(entity, id)
	}
	return err
}

// conflictOnDuplicate maps unique index violations reported by the driver to a ConflictError.
func conflictOnDuplicate(err error, entity, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ConflictError(entity, message)
	}
	return err
}

func contentValidation(err error) error {
	var cv *model.ContentValidationError
	if !errors.As(err, &cv) {
		return err
	}
	fields := make([]util.FieldError, 0, len(cv.Fields))
	for _, f := range cv.Fields {
		fields = append(fields, util.FieldError{Field: f.Field, Message: f.Message})
	}
	return util.ValidationError(cv.Message, fields...)
}

func validateSlug(field, slug string) error {
	if !util.IsSlug(slug) {
		return util.ValidationError("invalid "+field, util.FieldError{
			Field:   field,
			Message: "must be lowercase letters, digits and dashes",
		})
	}
	return nil
}
