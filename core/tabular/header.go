package tabular

import (
	"strings"

	"refdata-manager/core/schema"
)

var headerReplacer = strings.NewReplacer(
	"*", "", "（", "(", "）", ")", "：", "", ":", "", "_", "", "-", "", " ", "", "　", "",
)

func normalizeHeader(h string) string {
	return strings.ToLower(headerReplacer.Replace(strings.TrimSpace(h)))
}

// matchHeaders maps each schema column index to a sheet column index, or -1.
//
// Candidates are tried from strict to loose: exact header or alias, then
// substring in either direction. Required columns still unmatched take their
// positional index when that sheet column is unclaimed.
func matchHeaders(cols []schema.Column, headers []string) []int {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	names := make([][]string, len(cols))
	for i, col := range cols {
		for _, n := range append([]string{col.Header, col.Field}, col.Aliases...) {
			if n := normalizeHeader(n); n != "" {
				names[i] = append(names[i], n)
			}
		}
	}

	match := make([]int, len(cols))
	for i := range match {
		match[i] = -1
	}
	claimed := make([]bool, len(headers))

	claim := func(pred func(header, name string) bool) {
		for ci := range cols {
			if match[ci] >= 0 {
				continue
			}
		headers:
			for hi, h := range normalized {
				if claimed[hi] || h == "" {
					continue
				}
				for _, n := range names[ci] {
					if pred(h, n) {
						match[ci] = hi
						claimed[hi] = true
						break headers
					}
				}
			}
		}
	}

	claim(func(h, n string) bool { return h == n })
	claim(func(h, n string) bool { return strings.Contains(h, n) || strings.Contains(n, h) })

	for ci, col := range cols {
		if match[ci] >= 0 || !col.Required {
			continue
		}
		if ci < len(headers) && !claimed[ci] {
			match[ci] = ci
			claimed[ci] = true
		}
	}
	return match
}
