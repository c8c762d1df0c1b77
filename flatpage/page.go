package flatpage

import (
	"path"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Label is the content registry label flat pages are published under.
const Label = "flatpages.FlatPage"

// Page is a content record addressed by its URL.
type Page struct {
	ID       int64
	URL      string
	Title    string
	Content  string
	Template string
	Sites    []int
	Updated  time.Time
}

// AbsoluteURL reports the page URL.
func (p Page) AbsoluteURL() string {
	return p.URL
}

// OnSite reports whether the page is published on siteID.
func (p Page) OnSite(siteID int) bool {
	return slices.Contains(p.Sites, siteID)
}

// NormalizeURL returns raw with exactly one leading and trailing slash,
// doubled slashes collapsed and dot segments resolved.
func NormalizeURL(raw string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, "\\", "/"))
	trimmed = norm.NFC.String(trimmed)
	if trimmed == "" {
		return "/"
	}
	cleaned := path.Clean("/" + trimmed)
	if cleaned == "/" {
		return "/"
	}
	return cleaned + "/"
}
