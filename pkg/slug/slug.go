package slug

import (
	"regexp"
	"strings"
)

var invalidChars = regexp.MustCompile("[^a-z0-9 ]+")

// Make derives a URL-safe slug from a display name: lowercase, invalid
// characters stripped, spaces collapsed into hyphens.
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = invalidChars.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "-")
	return strings.Trim(s, "-")
}
