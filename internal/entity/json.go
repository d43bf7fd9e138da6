package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON is a free-form structured column (jsonb). It unmarshals from either a
// JSON value or a string-encoded JSON blob, so clients may send faqs,
// verification_questions and custom_theme pre-decoded or as strings. The
// detection happens once here, at the boundary, never on read.
type JSON json.RawMessage

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("unsupported type for JSON column: %T", value)
	}
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*j = nil
		return nil
	}

	// A string payload may itself be an encoded JSON document.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		if inner == "" {
			*j = nil
			return nil
		}
		if !json.Valid([]byte(inner)) {
			return fmt.Errorf("string field does not contain valid JSON")
		}
		*j = JSON(inner)
		return nil
	}

	if !json.Valid(data) {
		return fmt.Errorf("invalid JSON value")
	}
	*j = append((*j)[0:0], data...)
	return nil
}

// UnmarshalParam lets gin bind the field from multipart/form values, where
// structured fields always arrive string-encoded.
func (j *JSON) UnmarshalParam(param string) error {
	if param == "" {
		*j = nil
		return nil
	}
	if !json.Valid([]byte(param)) {
		return fmt.Errorf("field does not contain valid JSON")
	}
	*j = JSON(param)
	return nil
}

// GormDataType tells gorm to create a jsonb column.
func (JSON) GormDataType() string {
	return "jsonb"
}
