// Package catalog provides the palette module that searches a catalog of
// named items, each bound to an action.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runger/palette/internal/action"
)

// ActionKind selects which executor call an item runs.
type ActionKind string

const (
	ActionCommand ActionKind = "command"
	ActionOpen    ActionKind = "open"
	ActionCopy    ActionKind = "copy"
)

// Valid reports whether k is a known action kind.
func (k ActionKind) Valid() bool {
	switch k {
	case ActionCommand, ActionOpen, ActionCopy:
		return true
	default:
		return false
	}
}

// Action is the side effect bound to an item or variant.
type Action struct {
	Kind   ActionKind `yaml:"kind" json:"kind"`
	Target string     `yaml:"target" json:"target"`
}

// Run performs the action through exec.
func (a Action) Run(exec action.Executor) error {
	if exec == nil {
		return errors.New("no action executor")
	}
	switch a.Kind {
	case ActionCommand:
		return exec.Run(a.Target)
	case ActionOpen:
		return exec.Open(a.Target)
	case ActionCopy:
		return exec.Copy(a.Target)
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// Variant is one of several concrete forms of an item, such as a quality
// level or a target, chosen after the item itself is selected.
type Variant struct {
	Name   string `yaml:"name" json:"name"`
	Action Action `yaml:"action" json:"action"`
}

// Item is one searchable catalog entry.
type Item struct {
	Name     string    `yaml:"name"`
	Category string    `yaml:"category"`
	Aliases  []string  `yaml:"aliases,omitempty"`
	Icon     uint32    `yaml:"icon,omitempty"`
	Action   Action    `yaml:"action"`
	Variants []Variant `yaml:"variants,omitempty"`
}

// Key identifies the item across queries.
func (it Item) Key() string {
	return it.Category + "/" + it.Name
}

// Validate checks that the item can be searched and selected.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return errors.New("item name is empty")
	}
	if len(it.Variants) > 0 {
		for _, v := range it.Variants {
			if v.Name == "" {
				return fmt.Errorf("%s: variant name is empty", it.Name)
			}
			if !v.Action.Kind.Valid() {
				return fmt.Errorf("%s/%s: unknown action kind %q", it.Name, v.Name, v.Action.Kind)
			}
		}
		return nil
	}
	if !it.Action.Kind.Valid() {
		return fmt.Errorf("%s: unknown action kind %q", it.Name, it.Action.Kind)
	}
	return nil
}

// Source enumerates catalog items. Items is called on every query and must
// not block on I/O; load slow sources up front into a StaticSource.
type Source interface {
	Items() ([]Item, error)
}

// StaticSource is an in-memory list of items.
type StaticSource []Item

// Items returns the list.
func (s StaticSource) Items() ([]Item, error) {
	return s, nil
}

// File is the on-disk YAML catalog format.
type File struct {
	Items []Item `yaml:"items"`
}

// LoadFile reads and validates a YAML catalog.
func LoadFile(path string) (StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (StaticSource, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, it := range f.Items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("catalog item %d: %w", i, err)
		}
	}
	return StaticSource(f.Items), nil
}
