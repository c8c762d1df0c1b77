// Package breadcrumb builds breadcrumb trails from URL paths by looking up
// the flat page behind every ancestor prefix.
package breadcrumb

import "strings"

// Segment splits url into its non-empty path segments and returns the
// cumulative prefixes: "/a/b/c/" yields "/a/", "/a/b/" and "/a/b/c/".
func Segment(url string) []string {
	var prefixes []string
	prefix := "/"
	for segment := range strings.SplitSeq(url, "/") {
		if segment == "" {
			continue
		}
		prefix += segment + "/"
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}
