package server

import (
	"strconv"
	"strings"
)

func parsePageSize(value string) (int32, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil || parsed < 0 {
		return 0, strconv.ErrSyntax
	}
	return int32(parsed), nil
}
