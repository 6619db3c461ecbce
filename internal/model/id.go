package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidID = errors.New("invalid id")

// ID identifies a record within one collection. Valid ids are positive; the
// zero value means "not assigned yet".
type ID int32

func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidID
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 1 {
		return 0, ErrInvalidID
	}
	return ID(n), nil
}

func (id ID) Valid() bool {
	return id > 0
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// InRange reports whether id falls inside the inclusive range [start, end]
// under numeric ordering.
func InRange(id, start, end ID) bool {
	return id >= start && id <= end
}

// UnmarshalJSON accepts both 7 and "7".
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidID
	}
	return id.set(n)
}

func (id *ID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return ErrInvalidID
	}
	if value.Tag == "!!str" {
		parsed, err := ParseID(value.Value)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	n, err := strconv.ParseInt(value.Value, 10, 64)
	if err != nil {
		return ErrInvalidID
	}
	return id.set(n)
}

func (id *ID) set(n int64) error {
	if n < 0 || n > math.MaxInt32 {
		return ErrInvalidID
	}
	*id = ID(n)
	return nil
}
