package weaviate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/weaviate/weaviate/entities/models"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/retrieval"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/vector"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/worker"
)

// Store keeps both indexes in Weaviate: one CourseCatalog object per course
// (vector = title embedding) and one CourseChunk object per content chunk.
// Vectors are supplied externally; the classes use no vectorizer.
type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	return vector.EnsureSchema(ctx, vector.NewWeaviateClientAdapter(s.client))
}

func (s *Store) AddCourse(ctx context.Context, meta retrieval.CourseMeta, vec []float32) error {
	lessonsJSON, err := json.Marshal(meta.Lessons)
	if err != nil {
		return err
	}
	_, err = s.client.Data().Creator().
		WithClassName(vector.ClassCourseCatalog).
		WithProperties(map[string]interface{}{
			"title":       meta.Title,
			"instructor":  meta.Instructor,
			"link":        meta.Link,
			"lessonsJson": string(lessonsJSON),
		}).
		WithVector(vec).
		Do(ctx)
	return err
}

func (s *Store) StoreChunk(ctx context.Context, chunk worker.Chunk) error {
	_, err := s.client.Data().Creator().
		WithClassName(vector.ClassCourseChunk).
		WithProperties(map[string]interface{}{
			"content":      chunk.Content,
			"courseTitle":  chunk.CourseTitle,
			"lessonNumber": chunk.LessonNumber,
			"chunkIndex":   chunk.ChunkIndex,
		}).
		WithVector(chunk.Vector).
		Do(ctx)
	return err
}

// Resolve returns the top-1 catalog entry by vector distance, or nil when the
// catalog has no entries.
func (s *Store) Resolve(ctx context.Context, vec []float32) (*retrieval.CourseMatch, error) {
	nv := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "title"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassCourseCatalog).
		WithNearVector(nv).
		WithLimit(1).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	objects := objectsFor(res.Data, vector.ClassCourseCatalog)
	if len(objects) == 0 {
		return nil, nil
	}

	props, ok := objects[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected catalog payload shape")
	}

	match := &retrieval.CourseMatch{}
	if title, ok := props["title"].(string); ok {
		match.Title = title
	}
	if additional, ok := props["_additional"].(map[string]interface{}); ok {
		if d, ok := additional["distance"].(float64); ok {
			match.Distance = float32(d)
		}
	}
	return match, nil
}

func (s *Store) GetCourse(ctx context.Context, title string) (*retrieval.CourseMeta, error) {
	where := filters.Where().
		WithPath([]string{"title"}).
		WithOperator(filters.Equal).
		WithValueString(title)

	fields := []graphql.Field{
		{Name: "title"},
		{Name: "instructor"},
		{Name: "link"},
		{Name: "lessonsJson"},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassCourseCatalog).
		WithWhere(where).
		WithLimit(1).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	objects := objectsFor(res.Data, vector.ClassCourseCatalog)
	if len(objects) == 0 {
		return nil, nil
	}
	props, ok := objects[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected catalog payload shape")
	}

	meta := &retrieval.CourseMeta{}
	if v, ok := props["title"].(string); ok {
		meta.Title = v
	}
	if v, ok := props["instructor"].(string); ok {
		meta.Instructor = v
	}
	if v, ok := props["link"].(string); ok {
		meta.Link = v
	}
	if v, ok := props["lessonsJson"].(string); ok && v != "" {
		if err := json.Unmarshal([]byte(v), &meta.Lessons); err != nil {
			return nil, fmt.Errorf("decode lessons: %w", err)
		}
	}
	return meta, nil
}

// Search ranks chunks by ascending vector distance, restricted by whatever
// filter fields are set. Weaviate keeps ties in insertion order.
func (s *Store) Search(ctx context.Context, vec []float32, filter retrieval.ChunkFilter, limit int) ([]retrieval.SearchResult, error) {
	nv := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "content"},
		{Name: "courseTitle"},
		{Name: "lessonNumber"},
		{Name: "chunkIndex"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
	}

	get := s.client.GraphQL().Get().
		WithClassName(vector.ClassCourseChunk).
		WithNearVector(nv).
		WithLimit(limit).
		WithFields(fields...)

	if where := buildWhere(filter); where != nil {
		get = get.WithWhere(where)
	}

	res, err := get.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var results []retrieval.SearchResult
	for _, c := range objectsFor(res.Data, vector.ClassCourseChunk) {
		props, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		result := retrieval.SearchResult{}
		if v, ok := props["content"].(string); ok {
			result.Content = v
		}
		if v, ok := props["courseTitle"].(string); ok {
			result.CourseTitle = v
		}
		if v, ok := props["lessonNumber"].(float64); ok {
			result.LessonNumber = int(v)
		}
		if v, ok := props["chunkIndex"].(float64); ok {
			result.ChunkIndex = int(v)
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				result.Distance = float32(d)
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func buildWhere(filter retrieval.ChunkFilter) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder
	if filter.CourseTitle != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{"courseTitle"}).
			WithOperator(filters.Equal).
			WithValueString(filter.CourseTitle))
	}
	if filter.LessonNumber != nil {
		operands = append(operands, filters.Where().
			WithPath([]string{"lessonNumber"}).
			WithOperator(filters.Equal).
			WithValueInt(int64(*filter.LessonNumber)))
	}

	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(operands)
	}
}

func objectsFor(data map[string]models.JSONObject, className string) []interface{} {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	objects, _ := get[className].([]interface{})
	return objects
}
