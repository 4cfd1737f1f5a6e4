// Package prompt holds the fixed review instruction sent with every analysis.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ericfisherdev/codelens/internal/domain/model"
)

//go:embed review.yaml
var reviewYAML []byte

// Section is one required heading of the review report.
type Section struct {
	Icon  string `yaml:"icon"`
	Title string `yaml:"title"`
	Hint  string `yaml:"hint"`
}

// Template is the reviewer persona, the required report sections and the
// generation parameters.
type Template struct {
	Persona     string    `yaml:"persona"`
	Format      string    `yaml:"format"`
	Sections    []Section `yaml:"sections"`
	UserPrefix  string    `yaml:"user_prefix"`
	Temperature float64   `yaml:"temperature"`
	MaxTokens   int       `yaml:"max_tokens"`
}

var loadDefault = sync.OnceValues(func() (*Template, error) {
	return Parse(reviewYAML)
})

// Default returns the embedded review template. The template is parsed once.
func Default() (*Template, error) {
	return loadDefault()
}

// Parse decodes and validates a template definition.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode prompt template: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid prompt template: %w", err)
	}
	return &t, nil
}

func (t *Template) validate() error {
	if strings.TrimSpace(t.Persona) == "" {
		return errors.New("persona is empty")
	}
	if len(t.Sections) == 0 {
		return errors.New("no sections defined")
	}
	for i, s := range t.Sections {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("section %d has no title", i+1)
		}
	}
	if t.Temperature < 0 || t.Temperature > 2 {
		return fmt.Errorf("temperature %v out of range [0, 2]", t.Temperature)
	}
	if t.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", t.MaxTokens)
	}
	return nil
}

// SystemPrompt renders the instruction describing the persona and the
// numbered sections, each requested as a level-2 heading.
func (t *Template) SystemPrompt() string {
	var b strings.Builder
	b.WriteString(t.Persona)
	b.WriteString("\n")
	if t.Format != "" {
		b.WriteString(t.Format)
		b.WriteString("\n")
	}
	b.WriteString("Include these sections, each as a level-2 heading (##):\n")
	for i, s := range t.Sections {
		fmt.Fprintf(&b, "%d. ", i+1)
		if s.Icon != "" {
			b.WriteString(s.Icon)
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "**%s**", s.Title)
		if s.Hint != "" {
			fmt.Fprintf(&b, " (%s)", s.Hint)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// UserPrompt wraps the submitted code in the short fixed prefix.
func (t *Template) UserPrompt(code model.CodeBlob) string {
	return t.UserPrefix + string(code)
}

// SectionTitles returns the section titles in report order.
func (t *Template) SectionTitles() []string {
	titles := make([]string, 0, len(t.Sections))
	for _, s := range t.Sections {
		titles = append(titles, s.Title)
	}
	return titles
}
