package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Answer is a submitted answer kept as its JSON text: an index, a boolean or a string.
// sqlite may hand a bare number or boolean back as int64/float64, so Scan accepts those too.
type Answer []byte

func (a Answer) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return string(a), nil
}

func (a *Answer) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = nil
	case []byte:
		*a = append(Answer(nil), v...)
	case string:
		*a = Answer(v)
	case int64:
		*a = Answer(strconv.FormatInt(v, 10))
	case float64:
		*a = Answer(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*a = Answer(strconv.FormatBool(v))
	default:
		return fmt.Errorf("unsupported answer column value %T", value)
	}
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if len(a) == 0 {
		return []byte("null"), nil
	}
	return a, nil
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	*a = append(Answer(nil), b...)
	return nil
}

func (Answer) GormDataType() string {
	return "answer"
}

// GormDBDataType 在sqlite上使用TEXT，避免JSON列的数值亲和性把 1 变成整数
func (Answer) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	default:
		return "TEXT"
	}
}
