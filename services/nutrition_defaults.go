package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultNutrition is the static table used when no provider answers.
type DefaultNutrition struct {
	fallback Macros
	foods    map[string]Macros
}

func NewDefaultNutrition() *DefaultNutrition {
	return &DefaultNutrition{
		fallback: Macros{Calories: 200, Protein: 10, Carbs: 25, Fats: 8},
		foods: map[string]Macros{
			"fried rice":       {Calories: 200, Protein: 8, Carbs: 25, Fats: 8},
			"nachos":           {Calories: 350, Protein: 10, Carbs: 35, Fats: 15},
			"tacos":            {Calories: 300, Protein: 15, Carbs: 30, Fats: 12},
			"huevos rancheros": {Calories: 400, Protein: 20, Carbs: 35, Fats: 15},
			"red velvet cake":  {Calories: 450, Protein: 5, Carbs: 55, Fats: 20},
			"paella":           {Calories: 280, Protein: 10, Carbs: 35, Fats: 10},
			"chinese soup":     {Calories: 100, Protein: 5, Carbs: 12, Fats: 2},
		},
	}
}

type defaultsFile struct {
	Default *Macros           `yaml:"default"`
	Foods   map[string]Macros `yaml:"foods"`
}

// LoadDefaultNutrition starts from the built-in table and applies the YAML
// file at path on top of it:
//
//	default: {calories: 200, protein: 10, carbs: 25, fats: 8}
//	foods:
//	  ramen: {calories: 450, protein: 18, carbs: 60, fats: 15}
func LoadDefaultNutrition(path string) (*DefaultNutrition, error) {
	d := NewDefaultNutrition()
	if path == "" {
		return d, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read nutrition defaults: %w", err)
	}
	var f defaultsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition defaults %s: %w", path, err)
	}
	if f.Default != nil {
		d.fallback = *f.Default
	}
	for name, m := range f.Foods {
		d.foods[normalizeFood(name)] = m
	}
	return d, nil
}

// Get is case-insensitive on the food name.
func (d *DefaultNutrition) Get(food string) Macros {
	if m, ok := d.foods[normalizeFood(food)]; ok {
		return m
	}
	return d.fallback
}

func normalizeFood(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
