package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/retrieval"
)

// OutlineTool returns a course's identity and numbered lesson list from the
// catalog, without touching the content index.
type OutlineTool struct {
	searcher Searcher
}

func NewOutlineTool(s Searcher) *OutlineTool {
	return &OutlineTool{searcher: s}
}

func (t *OutlineTool) Definition() Definition {
	return Definition{
		Name:        "get_course_outline",
		Description: "Get the full outline of a course: title, link and the complete lesson list",
		Schema: Schema{
			Properties: map[string]Property{
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	name, ok := stringArg(args, "course_name")
	if !ok {
		return nil, fmt.Errorf("missing course_name")
	}

	meta, err := t.searcher.CourseOutline(ctx, name)
	switch {
	case errors.Is(err, retrieval.ErrEmptyCatalog), errors.Is(err, retrieval.ErrNoMatch):
		return &Result{Text: fmt.Sprintf("No course found matching %q.", name)}, nil
	case err != nil:
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", meta.Title)
	if meta.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", meta.Link)
	}
	fmt.Fprintf(&b, "Instructor: %s\n", meta.Instructor)
	fmt.Fprintf(&b, "Lessons (%d):\n", len(meta.Lessons))
	for _, l := range meta.Lessons {
		fmt.Fprintf(&b, "  %d. %s\n", l.Number, l.Title)
	}

	return &Result{
		Text:    strings.TrimRight(b.String(), "\n"),
		Sources: []Source{{CourseTitle: meta.Title}},
	}, nil
}
