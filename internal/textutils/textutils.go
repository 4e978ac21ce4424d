// Package textutils holds the small string helpers used to assemble
// transaction descriptions from several statement columns.
package textutils

import "strings"

// JoinNonEmpty trims each part and joins the non-blank ones with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// JoinDistinct is JoinNonEmpty that also drops parts equal (ignoring case)
// to one already kept.
func JoinDistinct(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || containsFold(kept, p) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, sep)
}

// CollapseWhitespace trims and folds runs of whitespace into one space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
