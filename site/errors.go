package site

import "errors"

var (
	// ErrPageNotFound is returned when no flat page exists at the requested URL.
	ErrPageNotFound = errors.New("page not found")
	// ErrNoPages is returned by BuildStatic when the site has nothing to export.
	ErrNoPages = errors.New("site has no pages")
)
