package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Zachkp/portfolio/internal/content"
	"github.com/Zachkp/portfolio/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var elementID = regexp.MustCompile(`\bid="([^"]+)"`)

// pageData is what the page and every region template render from.
type pageData struct {
	Site            *content.Site
	Snap            view.Snapshot
	SessionID       string
	ThemeToggle     bool
	RevealThreshold float64
	Year            int
}

type skillView struct {
	ID       string
	Name     string
	Revealed bool
}

type fieldView struct {
	Field   string
	Message string
}

// Renderer renders the page and its regions from controller snapshots.
type Renderer struct {
	site        *content.Site
	tmpl        *template.Template
	themeToggle bool
	anchors     []string
}

func NewRenderer(site *content.Site, themeToggle bool) (*Renderer, error) {
	funcs := template.FuncMap{
		"skill": func(i int, s content.Skill, snap view.Snapshot) skillView {
			id := content.SkillTarget(i)
			return skillView{ID: id, Name: s.Name, Revealed: snap.IsRevealed(id)}
		},
		"fieldError": func(field string, snap view.Snapshot) fieldView {
			return fieldView{Field: field, Message: snap.Error(view.Field(field))}
		},
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	r := &Renderer{site: site, tmpl: tmpl, themeToggle: themeToggle}

	page, err := r.execute("index.html", r.page("", view.Snapshot{}))
	if err != nil {
		return nil, err
	}
	for _, m := range elementID.FindAllStringSubmatch(page, -1) {
		r.anchors = append(r.anchors, m[1])
	}
	return r, nil
}

// Anchors lists every element id the rendered page carries.
func (r *Renderer) Anchors() []string { return r.anchors }

func (r *Renderer) page(sessionID string, snap view.Snapshot) pageData {
	return pageData{
		Site:            r.site,
		Snap:            snap,
		SessionID:       sessionID,
		ThemeToggle:     r.themeToggle,
		RevealThreshold: view.RevealThreshold,
		Year:            time.Now().Year(),
	}
}

// Render implements session.Renderer.
func (r *Renderer) Render(region view.Region, snap view.Snapshot) (string, error) {
	data := r.page("", snap)
	name := string(region)

	switch {
	case region == view.RegionHeader:
		return r.execute("header", data)
	case region == view.RegionModal:
		return r.execute("modal", data)
	case region == view.RegionContact:
		return r.execute("contact", data)
	case strings.HasPrefix(name, "error-"):
		field := strings.TrimPrefix(name, "error-")
		if _, ok := view.ParseField(field); !ok {
			return "", fmt.Errorf("unknown field region %q", name)
		}
		return r.execute("field-error", fieldView{Field: field, Message: snap.Error(view.Field(field))})
	case strings.HasPrefix(name, "skill-"):
		i, err := strconv.Atoi(strings.TrimPrefix(name, "skill-"))
		if err != nil || i < 0 || i >= len(r.site.Skills) {
			return "", fmt.Errorf("unknown skill region %q", name)
		}
		return r.execute("skill", skillView{ID: name, Name: r.site.Skills[i].Name, Revealed: snap.IsRevealed(name)})
	}
	return "", fmt.Errorf("unknown region %q", name)
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("executing %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
