package site

import (
	"html/template"

	"github.com/iedon/scutils-go/breadcrumb"
	"github.com/iedon/scutils-go/flatpage"
	"github.com/iedon/scutils-go/templatex"
)

// page is a flat page with its content rendered.
type page struct {
	flatpage.Page
	HTML     template.HTML
	Sections []templatex.TOCEntry
	Summary  string
	Trail    []breadcrumb.Crumb
}
