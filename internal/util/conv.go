package util

import (
	"strconv"
)

// ParseID parses a positive numeric path parameter.
func ParseID(name, s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, ValidationError("invalid "+name, FieldError{Field: name, Message: "must be a positive integer"})
	}
	return uint(id), nil
}
