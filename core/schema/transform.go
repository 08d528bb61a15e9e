package schema

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"refdata-manager/core/utils"
)

// TransformFunc normalizes a raw cell value on import.
type TransformFunc func(raw string) (string, error)

// FormatFunc renders a stored value on export.
type FormatFunc func(value string) string

const dateLayout = "2006-01-02"

// Excel's day zero for the 1900 date system.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

var transforms = map[string]TransformFunc{
	"trim": func(raw string) (string, error) {
		return strings.TrimSpace(raw), nil
	},
	"upper": func(raw string) (string, error) {
		return strings.ToUpper(strings.TrimSpace(raw)), nil
	},
	"lower": func(raw string) (string, error) {
		return strings.ToLower(strings.TrimSpace(raw)), nil
	},
	"collapse_spaces": func(raw string) (string, error) {
		return strings.Join(strings.Fields(raw), " "), nil
	},
	"status": parseStatus,
	"bool": func(raw string) (string, error) {
		v := strings.TrimSpace(raw)
		switch v {
		case "是", "√":
			return "true", nil
		case "否", "×":
			return "false", nil
		}
		return strconv.FormatBool(utils.ToBool(v)), nil
	},
	"date": parseDate,
}

var formats = map[string]FormatFunc{
	"status_label": func(value string) string {
		switch value {
		case "1":
			return "enabled"
		case "0":
			return "disabled"
		}
		return value
	},
	"bool_label": func(value string) string {
		if value == "" {
			return ""
		}
		if utils.ToBool(value) {
			return "yes"
		}
		return "no"
	},
	"date": func(value string) string {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t.Format(dateLayout)
		}
		return value
	},
}

// HasTransform reports whether a transform is registered under name.
func HasTransform(name string) bool {
	_, ok := transforms[name]
	return ok
}

// HasFormat reports whether a format is registered under name.
func HasFormat(name string) bool {
	_, ok := formats[name]
	return ok
}

// Transforms lists the registered transform names.
func Transforms() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyTransform runs the named transform. An empty name trims the value.
func ApplyTransform(name, raw string) (string, error) {
	if name == "" {
		return strings.TrimSpace(raw), nil
	}
	fn, ok := transforms[name]
	if !ok {
		return "", fmt.Errorf("unknown transform %q", name)
	}
	return fn(raw)
}

// ApplyFormat runs the named format. Unknown or empty names return value unchanged.
func ApplyFormat(name, value string) string {
	if fn, ok := formats[name]; ok {
		return fn(value)
	}
	return value
}

func parseStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", nil
	case "1", "enabled", "enable", "active", "yes", "启用", "有效":
		return "1", nil
	case "0", "disabled", "disable", "inactive", "no", "停用", "禁用", "无效":
		return "0", nil
	}
	return "", fmt.Errorf("unrecognized status %q", raw)
}

var dateLayouts = []string{
	dateLayout,
	"2006/01/02",
	"2006.01.02",
	"2006/1/2",
	"2006-1-2",
	"2006年1月2日",
	"01-02-06",
	time.RFC3339,
}

func parseDate(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(dateLayout), nil
		}
	}
	// Unformatted date cells surface as Excel serial day numbers.
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > 0 && serial < 2958466 {
		days := math.Floor(serial)
		return excelEpoch.AddDate(0, 0, int(days)).Format(dateLayout), nil
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}
