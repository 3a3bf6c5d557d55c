package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"psiconecta/entitlement"
)

// StringList é gravada como array JSON em coluna text (funciona em sqlite e postgres).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	return scanJSON(src, (*[]string)(l))
}

// EducationList guarda as formações como array JSON.
type EducationList []entitlement.Education

func (l EducationList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]entitlement.Education(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *EducationList) Scan(src interface{}) error {
	return scanJSON(src, (*[]entitlement.Education)(l))
}

func scanJSON(src interface{}, dst interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("tipo não suportado para coluna JSON: %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
