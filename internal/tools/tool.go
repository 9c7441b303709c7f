package tools

import (
	"context"
	"fmt"
	"math"
)

// Property and Schema describe a tool's input surface in a transport-neutral
// way; the model adapter translates them into its own declaration format.
type Property struct {
	Type        string // "string" or "integer"
	Description string
}

type Schema struct {
	Properties map[string]Property
	Required   []string
}

type Definition struct {
	Name        string
	Description string
	Schema      Schema
}

// Source attributes an answer back to the course material that justified it.
// Sources are values produced by a single execution, never shared state.
type Source struct {
	CourseTitle  string `json:"course_title"`
	LessonNumber *int   `json:"lesson_number,omitempty"`
}

// Result is what a tool hands back to the orchestrator: text for the model
// plus the attribution records for the caller.
type Result struct {
	Text    string
	Sources []Source
}

// Tool is the capability pair the registry is polymorphic over. New tools are
// registrable without touching the orchestrator.
type Tool interface {
	Definition() Definition
	Execute(ctx context.Context, args map[string]any) (*Result, error)
}

// ValidateArgs checks an argument map against a schema before dispatch:
// required fields present, no unknown fields, declared types respected.
func ValidateArgs(s Schema, args map[string]any) error {
	for _, name := range s.Required {
		if _, ok := args[name]; !ok {
			return fmt.Errorf("missing required argument %q", name)
		}
	}
	for name, value := range args {
		prop, ok := s.Properties[name]
		if !ok {
			return fmt.Errorf("unknown argument %q", name)
		}
		switch prop.Type {
		case "string":
			if _, ok := value.(string); !ok {
				return fmt.Errorf("argument %q must be a string", name)
			}
		case "integer":
			if _, ok := asInt(value); !ok {
				return fmt.Errorf("argument %q must be an integer", name)
			}
		default:
			return fmt.Errorf("argument %q has unsupported schema type %q", name, prop.Type)
		}
	}
	return nil
}

// asInt accepts both native ints and the float64 values JSON decoding and
// model adapters produce for numbers.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func stringArg(args map[string]any, name string) (string, bool) {
	s, ok := args[name].(string)
	return s, ok
}

func intArg(args map[string]any, name string) (int, bool) {
	v, ok := args[name]
	if !ok {
		return 0, false
	}
	return asInt(v)
}
