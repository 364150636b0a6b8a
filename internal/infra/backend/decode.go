package backend

import (
	"bytes"
	"encoding/json"

	"medchain/internal/domain/entity"
	"medchain/internal/errors"
)

// Keys under which the backend wraps list responses.
var listKeys = []string{"data", "requests", "orders"}

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

func refused(body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	if env.Success != nil && !*env.Success {
		if env.Message == "" {
			env.Message = "backend refused the request"
		}

		return errors.New(env.Message)
	}

	return nil
}

// unwrapList accepts a bare array or an object wrapping one under a known key.
func unwrapList(body []byte) ([]entity.StoredRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if body[0] == '[' {
		return decodeArray(body)
	}

	if err := refused(body); err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, errors.Wrap(err, "decode list response")
	}

	for _, key := range listKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			return decodeArray(raw)
		}
		if bytes.Equal(raw, []byte("null")) {
			return nil, nil
		}
	}

	return nil, errors.New("list response has no array")
}

func decodeArray(raw []byte) ([]entity.StoredRecord, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(err, "decode array")
	}

	records := make([]entity.StoredRecord, 0, len(items))
	for _, item := range items {
		records = append(records, entity.StoredRecord(item))
	}

	return records, nil
}

// unwrapRecord accepts a bare document or one wrapped under "data".
func unwrapRecord(body []byte) (entity.StoredRecord, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if err := refused(body); err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return entity.StoredRecord(body), nil
	}

	for _, key := range []string{"data", "user", "order", "request"} {
		if raw, ok := obj[key]; ok && len(bytes.TrimSpace(raw)) > 0 && bytes.TrimSpace(raw)[0] == '{' {
			return entity.StoredRecord(raw), nil
		}
	}

	return entity.StoredRecord(body), nil
}
