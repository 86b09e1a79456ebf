package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// StrToInt64 converts a string to an int64.
// Returns 0 and an error if the conversion fails.
func StrToInt64(s string) (int64, error) {
	num, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	return num, nil
}

// StrToPositiveInt64 is StrToInt64 restricted to ids: zero and negatives are rejected.
func StrToPositiveInt64(s string) (int64, error) {
	num, err := StrToInt64(s)
	if err != nil {
		return 0, err
	}
	if num <= 0 {
		return 0, fmt.Errorf("value %d must be a positive integer", num)
	}
	return num, nil
}
