package services

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"property-scraper/models"
)

//go:embed categories.yaml
var categoriesYAML []byte

// CategoryRule assigns Label when every All term and, if Any is non-empty,
// at least one Any term is a substring of the lower-cased property type.
type CategoryRule struct {
	Label string   `yaml:"label" validate:"required"`
	Any   []string `yaml:"any" validate:"required_without=All"`
	All   []string `yaml:"all" validate:"required_without=Any"`
}

func (r CategoryRule) matches(text string) bool {
	for _, term := range r.All {
		if !strings.Contains(text, term) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, term := range r.Any {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// Categorizer maps free-text property types to a fixed category set using
// an ordered, first-match-wins rule table.
type Categorizer struct {
	Version int            `yaml:"version" validate:"min=1"`
	Default string         `yaml:"default" validate:"required"`
	Rules   []CategoryRule `yaml:"rules" validate:"required,min=1,dive"`
}

// ParseCategorizer loads a rule table from YAML.
func ParseCategorizer(data []byte) (*Categorizer, error) {
	var c Categorizer
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("categorizer: parse rules: %w", err)
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("categorizer: invalid rules: %w", err)
	}
	for i := range c.Rules {
		c.Rules[i].Any = lowerAll(c.Rules[i].Any)
		c.Rules[i].All = lowerAll(c.Rules[i].All)
	}
	return &c, nil
}

// DefaultCategorizer returns the categorizer built from the embedded rules.
func DefaultCategorizer() *Categorizer {
	c, err := ParseCategorizer(categoriesYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Categorize returns the label of the first matching rule, or the default.
func (c *Categorizer) Categorize(propertyType *string) string {
	text := strings.ToLower(models.Deref(propertyType))
	for _, rule := range c.Rules {
		if rule.matches(text) {
			return rule.Label
		}
	}
	return c.Default
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = strings.ToLower(t)
	}
	return out
}
