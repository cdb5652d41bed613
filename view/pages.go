package view

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/neurolearn/shell/store"
)

//go:embed templates/*.html
var templates embed.FS

var funcs = template.FuncMap{
	"field": field,
}

var (
	homeTemplate  = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templates, "templates/layout.html", "templates/home.html"))
	topicTemplate = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templates, "templates/layout.html", "templates/topic.html"))
)

// field prints a resource field, missing fields print as empty.
func field(r store.Resource, name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

// Link is a navigation item.
type Link struct {
	Path string
	Name string
}

type page struct {
	Title string
	Name  string
	Links []Link
}

// ResourceStore is the part of store.Store used by pages.
type ResourceStore interface {
	FetchResources(ctx context.Context)
	State() store.State
}

// Home lists learning resources.
//
// Every render fetches resources and shows the resulting store state.
type Home struct {
	Store ResourceStore
	Links []Link
}

type homeData struct {
	page

	Loading   bool
	Error     string
	Resources []store.Resource
}

// Render implements View.
func (h Home) Render(ctx context.Context, w io.Writer) error {
	h.Store.FetchResources(ctx)

	st := h.Store.State()

	d := homeData{
		page:      page{Title: "Home", Name: "Home", Links: h.Links},
		Loading:   st.Loading,
		Resources: st.Resources,
	}

	if st.Error != nil {
		d.Error = *st.Error
	}

	return homeTemplate.ExecuteTemplate(w, "layout", d)
}

// Topic describes a neurodivergent condition.
type Topic struct {
	Name     string
	Heading  string
	Summary  string
	Supports []string
	Links    []Link
}

type topicData struct {
	page

	Topic Topic
}

// Render implements View.
func (t Topic) Render(_ context.Context, w io.Writer) error {
	return topicTemplate.ExecuteTemplate(w, "layout", topicData{
		page:  page{Title: t.Heading, Name: t.Name, Links: t.Links},
		Topic: t,
	})
}

// Topics of the default table.
var (
	Dyslexia = Topic{
		Name:    "Dyslexia",
		Heading: "Dyslexia",
		Summary: "Dyslexia affects reading, spelling and decoding of written words.",
		Supports: []string{
			"Simplified text with short sentences",
			"Audio narration of written material",
			"Readable fonts and generous spacing",
		},
	}
	ADHD = Topic{
		Name:    "ADHD",
		Heading: "ADHD",
		Summary: "ADHD affects attention, impulse control and activity levels.",
		Supports: []string{
			"Short lessons with clear goals",
			"Visual progress markers",
			"Frequent breaks and low distraction layouts",
		},
	}
	Autism = Topic{
		Name:    "Autism",
		Heading: "Autism",
		Summary: "Autism shapes communication, sensory processing and the need for routine.",
		Supports: []string{
			"Predictable structure and explicit instructions",
			"Visual aids and schedules",
			"Calm sensory design",
		},
	}
	Dyscalculia = Topic{
		Name:    "Dyscalculia",
		Heading: "Dyscalculia",
		Summary: "Dyscalculia affects number sense and arithmetic.",
		Supports: []string{
			"Concrete and visual representations of quantities",
			"Step by step worked examples",
			"Extra time without penalties",
		},
	}
)

// DefaultTable returns the disability topic pages with Home listing the
// resources held by s.
func DefaultTable(s ResourceStore) Table {
	links := []Link{
		{Path: "/", Name: "Home"},
		{Path: "/dyslexia", Name: Dyslexia.Name},
		{Path: "/adhd", Name: ADHD.Name},
		{Path: "/autism", Name: Autism.Name},
		{Path: "/dyscalculia", Name: Dyscalculia.Name},
	}

	withLinks := func(t Topic) Topic {
		t.Links = links

		return t
	}

	return Table{
		{Path: "/", Name: "Home", View: Home{Store: s, Links: links}},
		{Path: "/dyslexia", Name: "Dyslexia", View: withLinks(Dyslexia)},
		{Path: "/adhd", Name: "ADHD", View: withLinks(ADHD)},
		{Path: "/autism", Name: "Autism", View: withLinks(Autism)},
		{Path: "/dyscalculia", Name: "Dyscalculia", View: withLinks(Dyscalculia)},
	}
}
