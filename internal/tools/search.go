package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/retrieval"
)

// NoResults is a sentinel tool result, not an error: the model can still
// answer gracefully when the corpus has nothing to offer.
const NoResults = "No relevant content found."

// Searcher is the slice of the retrieval service the tools need.
type Searcher interface {
	ResolveCourse(ctx context.Context, name string) (string, error)
	Search(ctx context.Context, query string, opts *retrieval.SearchOptions) ([]retrieval.SearchResult, error)
	CourseOutline(ctx context.Context, name string) (*retrieval.CourseMeta, error)
}

// SearchTool resolves an optional course-name filter against the catalog and
// runs a filtered content search. Sources for the chunks used are returned on
// the Result, scoped to this execution only.
type SearchTool struct {
	searcher Searcher
}

func NewSearchTool(s Searcher) *SearchTool {
	return &SearchTool{searcher: s}
}

func (t *SearchTool) Definition() Definition {
	return Definition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		Schema: Schema{
			Properties: map[string]Property{
				"query": {
					Type:        "string",
					Description: "What to search for in the course content",
				},
				"course_name": {
					Type:        "string",
					Description: "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": {
					Type:        "integer",
					Description: "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

func (t *SearchTool) Execute(ctx context.Context, args map[string]any) (*Result, error) {
	query, ok := stringArg(args, "query")
	if !ok {
		return nil, fmt.Errorf("missing query")
	}

	var opts retrieval.SearchOptions
	if name, ok := stringArg(args, "course_name"); ok && name != "" {
		title, err := t.searcher.ResolveCourse(ctx, name)
		switch {
		case errors.Is(err, retrieval.ErrEmptyCatalog), errors.Is(err, retrieval.ErrNoMatch):
			return &Result{Text: NoResults}, nil
		case err != nil:
			return nil, err
		}
		opts.CourseTitle = &title
	}
	if n, ok := intArg(args, "lesson_number"); ok {
		opts.LessonNumber = &n
	}

	results, err := t.searcher.Search(ctx, query, &opts)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Result{Text: NoResults}, nil
	}

	var blocks []string
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		lesson := r.LessonNumber
		blocks = append(blocks, fmt.Sprintf("[%s - Lesson %d]\n%s", r.CourseTitle, lesson, r.Content))
		sources = append(sources, Source{CourseTitle: r.CourseTitle, LessonNumber: &lesson})
	}
	return &Result{Text: strings.Join(blocks, "\n\n"), Sources: sources}, nil
}
