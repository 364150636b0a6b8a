package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"medchain/internal/errors"
)

// Int64 decodes a JSON number that the metadata backend may send as a string.
type Int64 int64

// UnmarshalJSON accepts 12, 12.0, "12" and null.
func (n *Int64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0

		return nil
	}

	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return errors.Wrap(err, "decode quoted number")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0

			return nil
		}
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = Int64(v)

		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Wrapf(err, "decode number %q", s)
	}
	*n = Int64(f)

	return nil
}

// Int64 returns the plain integer.
func (n Int64) Int64() int64 {
	return int64(n)
}
