package sequence

import (
	"fmt"
	"regexp"
	"strconv"

	"refdata-manager/core/schema"
)

// YearMonthLayout is the time layout of the month segment in primary codes.
const YearMonthLayout = "200601"

var (
	primaryCodePattern = regexp.MustCompile(`^([A-Z][A-Z0-9]{0,7})-(\d{4}(?:0[1-9]|1[0-2]))-(\d{6,})$`)
	childCodePattern   = regexp.MustCompile(`^(.+)-([A-Z][A-Z0-9]{0,7})-(\d{4,})$`)
)

// ParsedCode is the decomposition of a generated code.
type ParsedCode struct {
	Pattern    schema.Pattern `json:"pattern"`
	Prefix     string         `json:"prefix"`
	YearMonth  string         `json:"yearMonth,omitempty"`
	ParentCode string         `json:"parentCode,omitempty"`
	Seq        int64          `json:"seq"`
}

// RenderPrimary formats a time-partitioned code: {prefix}-{yyyyMM}-{seq:06d}.
func RenderPrimary(prefix, yearMonth string, seq int64) string {
	return fmt.Sprintf("%s-%s-%06d", prefix, yearMonth, seq)
}

// RenderChild formats a parent-partitioned code: {parentCode}-{prefix}-{seq:04d}.
func RenderChild(parentCode, prefix string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", parentCode, prefix, seq)
}

// ParseCode inverts RenderPrimary and RenderChild by the shape of code.
// It reports false for codes in any other format.
func ParseCode(code string) (ParsedCode, bool) {
	if m := primaryCodePattern.FindStringSubmatch(code); m != nil {
		seq, ok := parseSeq(m[3])
		if !ok {
			return ParsedCode{}, false
		}
		return ParsedCode{Pattern: schema.PatternPrimary, Prefix: m[1], YearMonth: m[2], Seq: seq}, true
	}
	if m := childCodePattern.FindStringSubmatch(code); m != nil {
		seq, ok := parseSeq(m[3])
		if !ok {
			return ParsedCode{}, false
		}
		return ParsedCode{Pattern: schema.PatternChild, Prefix: m[2], ParentCode: m[1], Seq: seq}, true
	}
	return ParsedCode{}, false
}

func parseSeq(s string) (int64, bool) {
	seq, err := strconv.ParseInt(s, 10, 64)
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}
