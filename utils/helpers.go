package utils

import "strings"

// SplitList splits a comma-separated config value, trimming blanks and
// dropping empty items. An empty input returns nil.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
