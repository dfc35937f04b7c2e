package service

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jjenkins/onthisday/internal/model"
)

//go:embed categories.yaml
var defaultDictionaryYAML []byte

// CategoryKeywords lists the keywords that tag an event with Name
type CategoryKeywords struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type dictionaryFile struct {
	Categories []CategoryKeywords `yaml:"categories"`
}

type compiledCategory struct {
	name    string
	words   []string
	phrases []string
}

// Categorizer tags events with categories from a keyword dictionary.
// It is read-only after construction and safe for concurrent use.
type Categorizer struct {
	categories []compiledCategory
}

// DefaultCategorizer uses the embedded keyword dictionary
var DefaultCategorizer = mustDefaultCategorizer()

func mustDefaultCategorizer() *Categorizer {
	c, err := ParseCategoryDictionary(defaultDictionaryYAML)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded category dictionary: %v", err))
	}
	return c
}

// LoadCategorizer reads a YAML keyword dictionary from path
func LoadCategorizer(path string) (*Categorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category dictionary: %w", err)
	}
	return ParseCategoryDictionary(data)
}

// ParseCategoryDictionary builds a Categorizer from YAML
func ParseCategoryDictionary(data []byte) (*Categorizer, error) {
	var file dictionaryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse category dictionary: %w", err)
	}
	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("category dictionary has no categories")
	}
	for _, c := range file.Categories {
		if c.Name == "" {
			return nil, fmt.Errorf("category dictionary has an unnamed category")
		}
		if c.Name == model.GeneralCategory {
			return nil, fmt.Errorf("%q is the fallback category and cannot have keywords", model.GeneralCategory)
		}
	}
	return NewCategorizer(file.Categories), nil
}

// NewCategorizer compiles the given dictionary. Category order is kept in
// the output of Categorize.
func NewCategorizer(dict []CategoryKeywords) *Categorizer {
	c := &Categorizer{}
	for _, entry := range dict {
		compiled := compiledCategory{name: entry.Name}
		for _, kw := range entry.Keywords {
			normalized := Normalize(kw)
			switch {
			case normalized == "":
				continue
			case strings.Contains(normalized, " "):
				compiled.phrases = append(compiled.phrases, normalized)
			default:
				compiled.words = append(compiled.words, normalized)
			}
		}
		c.categories = append(c.categories, compiled)
	}
	return c
}

// Names returns General followed by the dictionary categories in order
func (c *Categorizer) Names() []string {
	names := make([]string, 0, len(c.categories)+1)
	names = append(names, model.GeneralCategory)
	for _, cat := range c.categories {
		names = append(names, cat.name)
	}
	return names
}

// Known reports whether name is a dictionary category or General
func (c *Categorizer) Known(name string) bool {
	for _, n := range c.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Categorize returns every category with a keyword in the title or
// description, or General when none match.
func (c *Categorizer) Categorize(title, description string) []string {
	text := Normalize(title + " " + description)

	// normalized text holds only word runes separated by single spaces, so
	// whole-word matching is set membership
	words := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		words[w] = struct{}{}
	}

	var matched []string
	for _, cat := range c.categories {
		if cat.matches(text, words) {
			matched = append(matched, cat.name)
		}
	}

	if len(matched) == 0 {
		return []string{model.GeneralCategory}
	}
	return matched
}

func (cc compiledCategory) matches(text string, words map[string]struct{}) bool {
	for _, w := range cc.words {
		if _, ok := words[w]; ok {
			return true
		}
	}
	for _, p := range cc.phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
