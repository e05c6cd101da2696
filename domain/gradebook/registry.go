package gradebook

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClassRegistry maps class labels to remote class ids
type ClassRegistry struct {
	byLabel map[string]ClassRef
}

var defaultClasses = []ClassRef{
	{Label: "2А", ID: 90359},
	{Label: "2Б", ID: 90360},
	{Label: "2В", ID: 90361},
	{Label: "3А", ID: 90340},
	{Label: "3Б", ID: 90341},
	{Label: "4А", ID: 90343},
	{Label: "4Б", ID: 90344},
	{Label: "5А", ID: 90345},
	{Label: "5Б", ID: 90346},
	{Label: "6А", ID: 90347},
	{Label: "6Б", ID: 90348},
	{Label: "7А", ID: 90349},
	{Label: "7Б", ID: 90350},
	{Label: "8А", ID: 90351},
	{Label: "8Б", ID: 90352},
	{Label: "9А", ID: 90353},
	{Label: "9Б", ID: 90354},
	{Label: "10А", ID: 90355},
	{Label: "10Б", ID: 90356},
	{Label: "11А", ID: 90357},
	{Label: "11Б", ID: 90358},
}

// NewClassRegistry builds a registry from class refs. Labels are normalized.
func NewClassRegistry(classes []ClassRef) (*ClassRegistry, error) {
	r := &ClassRegistry{byLabel: make(map[string]ClassRef, len(classes))}
	for _, c := range classes {
		label := NormalizeLabel(c.Label)
		if label == "" {
			return nil, fmt.Errorf("class with id %d has an empty label", c.ID)
		}
		if c.ID <= 0 {
			return nil, fmt.Errorf("class %s has a non-positive id %d", label, c.ID)
		}
		if _, dup := r.byLabel[label]; dup {
			return nil, fmt.Errorf("class %s is listed twice", label)
		}
		r.byLabel[label] = ClassRef{Label: label, ID: c.ID}
	}
	return r, nil
}

// DefaultClassRegistry returns the built-in class list
func DefaultClassRegistry() *ClassRegistry {
	r, err := NewClassRegistry(defaultClasses)
	if err != nil {
		panic(err)
	}
	return r
}

type registryFile struct {
	Classes []ClassRef `yaml:"classes"`
}

// LoadRegistryYAML reads a registry from a YAML file of the form
//
//	classes:
//	  - label: 4Б
//	    id: 90344
func LoadRegistryYAML(path string) (*ClassRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class registry: %w", err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse class registry %s: %w", path, err)
	}
	if len(file.Classes) == 0 {
		return nil, fmt.Errorf("class registry %s lists no classes", path)
	}
	return NewClassRegistry(file.Classes)
}

// Lookup finds a class by label, ignoring case and surrounding spaces
func (r *ClassRegistry) Lookup(label string) (ClassRef, bool) {
	ref, ok := r.byLabel[NormalizeLabel(label)]
	return ref, ok
}

// Classes returns every registered class ordered by label
func (r *ClassRegistry) Classes() []ClassRef {
	out := make([]ClassRef, 0, len(r.byLabel))
	for _, c := range r.byLabel {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b ClassRef) int {
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

// NormalizeLabel trims and upper-cases a class label ("4б " -> "4Б")
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}
