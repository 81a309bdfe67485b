// Package templates holds the default milestone plans per service category.
package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed milestones.yaml
var defaultTemplates []byte

// Step is one milestone of a plan.
type Step struct {
	Title        string `yaml:"title"`
	DurationDays int    `yaml:"duration_days"`
	RiskLevel    string `yaml:"risk_level"`
}

// PlannedMilestone is a Step placed on the calendar.
type PlannedMilestone struct {
	Title      string
	OrderIndex int
	DueDate    time.Time
	RiskLevel  string
}

type document struct {
	Default    []Step            `yaml:"default"`
	Categories map[string][]Step `yaml:"categories"`
}

// Catalog maps service categories to milestone plans.
type Catalog struct {
	fallback   []Step
	categories map[string][]Step
}

// Load parses the built-in milestone plans.
func Load() (*Catalog, error) {
	return Parse(defaultTemplates)
}

// Parse reads milestone plans from YAML.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse milestone templates: %w", err)
	}
	if len(doc.Default) == 0 {
		return nil, errors.New("milestone templates: default plan is empty")
	}
	if err := validateSteps("default", doc.Default); err != nil {
		return nil, err
	}

	categories := make(map[string][]Step, len(doc.Categories))
	for name, steps := range doc.Categories {
		if err := validateSteps(name, steps); err != nil {
			return nil, err
		}
		categories[normalizeCategory(name)] = steps
	}
	return &Catalog{fallback: doc.Default, categories: categories}, nil
}

func validateSteps(name string, steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("milestone templates: %s has no steps", name)
	}
	for i, s := range steps {
		if strings.TrimSpace(s.Title) == "" {
			return fmt.Errorf("milestone templates: %s step %d has no title", name, i)
		}
		if s.DurationDays < 0 {
			return fmt.Errorf("milestone templates: %s step %d has a negative duration", name, i)
		}
	}
	return nil
}

func normalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(c)
}

// Steps returns the plan for category, or the default plan for unknown ones.
func (c *Catalog) Steps(category string) []Step {
	if steps, ok := c.categories[normalizeCategory(category)]; ok {
		return steps
	}
	return c.fallback
}

// Plan lays out the plan for category starting at start. Each due date is
// the previous one plus the step's duration.
func (c *Catalog) Plan(category string, start time.Time) []PlannedMilestone {
	steps := c.Steps(category)
	plan := make([]PlannedMilestone, len(steps))
	due := start
	for i, s := range steps {
		due = due.AddDate(0, 0, s.DurationDays)
		plan[i] = PlannedMilestone{
			Title:      s.Title,
			OrderIndex: i,
			DueDate:    due,
			RiskLevel:  s.RiskLevel,
		}
	}
	return plan
}
