package urlstate

import (
	"fmt"
	"strconv"
	"strings"

	"codecompass/internal/backend"
)

// FormatSelection writes a range as "startLine|startCol|endLine|endCol".
func FormatSelection(r *backend.Range) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%d|%d|%d|%d", r.StartPos.Line, r.StartPos.Column, r.EndPos.Line, r.EndPos.Column)
}

// ParseSelection accepts both "|" and "/" as delimiters.
func ParseSelection(v string) (*backend.Range, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, false
	}
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == '|' || r == '/' })
	if len(parts) != 4 {
		return nil, false
	}
	var nums [4]int32
	for i, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, false
		}
		nums[i] = int32(n)
	}
	return &backend.Range{
		StartPos: backend.Position{Line: nums[0], Column: nums[1]},
		EndPos:   backend.Position{Line: nums[2], Column: nums[3]},
	}, true
}
