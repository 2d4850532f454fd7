// Package content holds the fixed site data the page renders: projects,
// skills, links and copy. It is loaded once at startup and never mutated.
package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	yamlv3 "gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

type NavItem struct {
	Label   string `yaml:"label" koanf:"label"`
	Section string `yaml:"section" koanf:"section"`
}

// Href is the in-page anchor for the item.
func (n NavItem) Href() string { return "#" + n.Section }

type Hero struct {
	Greeting string `yaml:"greeting" koanf:"greeting"`
	Headline string `yaml:"headline" koanf:"headline"`
	Summary  string `yaml:"summary" koanf:"summary"`
	CTA      string `yaml:"cta" koanf:"cta"`
}

type Project struct {
	ID          int      `yaml:"id" koanf:"id"`
	Title       string   `yaml:"title" koanf:"title"`
	Description string   `yaml:"description" koanf:"description"`
	Tags        []string `yaml:"tags" koanf:"tags"`
	Image       string   `yaml:"image" koanf:"image"`
	Details     string   `yaml:"details" koanf:"details"`
	LiveURL     string   `yaml:"live_url" koanf:"live_url"`
	SourceURL   string   `yaml:"source_url" koanf:"source_url"`

	// DetailsHTML is Details rendered from Markdown at load time.
	DetailsHTML template.HTML `yaml:"-" koanf:"-"`
}

// Skill is one entry of the skills section. Level is carried through from
// the data but nothing renders or reacts to it.
type Skill struct {
	Name  string `yaml:"name" koanf:"name"`
	Level *int   `yaml:"level,omitempty" koanf:"level"`
}

type Link struct {
	Label string `yaml:"label" koanf:"label"`
	URL   string `yaml:"url" koanf:"url"`
}

// Site is the whole content document.
type Site struct {
	Brand    string    `yaml:"brand" koanf:"brand"`
	Nav      []NavItem `yaml:"nav" koanf:"nav"`
	Hero     Hero      `yaml:"hero" koanf:"hero"`
	About    string    `yaml:"about" koanf:"about"`
	Projects []Project `yaml:"projects" koanf:"projects"`
	Skills   []Skill   `yaml:"skills" koanf:"skills"`
	Socials  []Link    `yaml:"socials" koanf:"socials"`
	Footer   string    `yaml:"footer" koanf:"footer"`
}

// Default returns the embedded sample content.
func Default() (*Site, error) {
	site := &Site{}
	if err := yamlv3.Unmarshal(defaultYAML, site); err != nil {
		return nil, fmt.Errorf("parsing embedded content: %w", err)
	}
	return finish(site)
}

// Load reads the content document at path. An empty path yields the
// embedded default.
func Load(path string) (*Site, error) {
	if path == "" {
		return Default()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("accessing content %s: %w", path, err)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("reading content %s: %w", path, err)
	}

	site := &Site{}
	if err := k.Unmarshal("", site); err != nil {
		return nil, fmt.Errorf("unmarshalling content: %w", err)
	}
	return finish(site)
}

func finish(site *Site) (*Site, error) {
	if err := site.Validate(); err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	for i := range site.Projects {
		var buf bytes.Buffer
		if err := md.Convert([]byte(site.Projects[i].Details), &buf); err != nil {
			return nil, fmt.Errorf("rendering details for project %d: %w", site.Projects[i].ID, err)
		}
		site.Projects[i].DetailsHTML = template.HTML(buf.String())
	}
	return site, nil
}

// Validate checks ids and section anchors.
func (s *Site) Validate() error {
	if strings.TrimSpace(s.Brand) == "" {
		return fmt.Errorf("brand is required")
	}

	sections := make(map[string]bool, len(s.Nav))
	for _, n := range s.Nav {
		if n.Section == "" {
			return fmt.Errorf("nav item %q has no section", n.Label)
		}
		if sections[n.Section] {
			return fmt.Errorf("duplicate nav section %q", n.Section)
		}
		sections[n.Section] = true
	}

	ids := make(map[int]bool, len(s.Projects))
	for _, p := range s.Projects {
		if p.ID <= 0 {
			return fmt.Errorf("project %q: id must be positive", p.Title)
		}
		if ids[p.ID] {
			return fmt.Errorf("duplicate project id %d", p.ID)
		}
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("project %d: title is required", p.ID)
		}
		ids[p.ID] = true
	}

	for i, sk := range s.Skills {
		if strings.TrimSpace(sk.Name) == "" {
			return fmt.Errorf("skill %d: name is required", i)
		}
		if sk.Level != nil && (*sk.Level < 0 || *sk.Level > 100) {
			return fmt.Errorf("skill %q: level must be between 0 and 100", sk.Name)
		}
	}
	return nil
}

// Project returns the project with the given id.
func (s *Site) Project(id int) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// SkillTargets returns the element id of every skill bar, in order.
func (s *Site) SkillTargets() []string {
	targets := make([]string, len(s.Skills))
	for i := range s.Skills {
		targets[i] = SkillTarget(i)
	}
	return targets
}

// SkillTarget is the element id of the i-th skill bar.
func SkillTarget(i int) string { return fmt.Sprintf("skill-%d", i) }

// Sections lists the element ids that in-page anchors can scroll to.
func (s *Site) Sections() []string {
	out := make([]string, 0, len(s.Nav))
	for _, n := range s.Nav {
		out = append(out, n.Section)
	}
	return out
}
