package convert

import (
	"strconv"
	"strings"
)

type StrTo string

func (s StrTo) String() string {
	return strings.TrimSpace(string(s))
}

func (s StrTo) Int() (int, error) {
	v, err := strconv.Atoi(s.String())
	return v, err
}

func (s StrTo) MustInt() int {
	v, _ := s.Int()
	return v
}

func (s StrTo) Uint64() (uint64, error) {
	return strconv.ParseUint(s.String(), 10, 64)
}

// Uint64Ptr returns nil for an empty string
// Uint64Ptr 空串返回 nil
func (s StrTo) Uint64Ptr() (*uint64, error) {
	if s.String() == "" {
		return nil, nil
	}
	v, err := s.Uint64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}
