package reconcile

import (
	"strings"

	"refdata-manager/core/schema"
)

// KeyString renders fields as "field=value" pairs joined by "|".
// It returns "" when any field is blank, so partial keys never match.
func KeyString(values map[string]string, fields []string) string {
	if len(fields) == 0 {
		return ""
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		v := values[f]
		if v == "" {
			return ""
		}
		parts[i] = f + "=" + v
	}
	return strings.Join(parts, "|")
}

// DedupKey is the in-batch identity of a row: its code when present, else
// its primary unique key, else its secondary unique key. Rows with none of
// them yield "" and are never reported as duplicates.
func DedupKey(s schema.ResourceSchema, values map[string]string) string {
	if key := KeyString(values, []string{s.CodeField}); key != "" {
		return key
	}
	if key := KeyString(values, s.PrimaryUniqueKey); key != "" {
		return key
	}
	return KeyString(values, s.SecondaryUniqueKey)
}
