package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

const (
	ClassCourseCatalog = "CourseCatalog"
	ClassCourseChunk   = "CourseChunk"
)

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema checks if the required classes exist and creates them if not.
// Both classes carry externally computed vectors, so the vectorizer is "none".
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	classes := []struct {
		name        string
		description string
		properties  []*models.Property
	}{
		{
			name:        ClassCourseCatalog,
			description: "Course identity record used for fuzzy name resolution",
			properties: []*models.Property{
				{Name: "title", DataType: []string{"string"}}, // unique key, exact match
				{Name: "instructor", DataType: []string{"text"}},
				{Name: "link", DataType: []string{"string"}},
				{Name: "lessonsJson", DataType: []string{"text"}},
			},
		},
		{
			name:        ClassCourseChunk,
			description: "A chunk of course material",
			properties: []*models.Property{
				{Name: "content", DataType: []string{"text"}},
				{Name: "courseTitle", DataType: []string{"string"}}, // exact match filter
				{Name: "lessonNumber", DataType: []string{"int"}},
				{Name: "chunkIndex", DataType: []string{"int"}},
			},
		},
	}

	for _, c := range classes {
		exists, err := client.ClassExists(ctx, c.name)
		if err != nil {
			return err
		}

		if !exists {
			class := &models.Class{
				Class:       c.name,
				Description: c.description,
				Vectorizer:  "none",
				Properties:  c.properties,
			}
			if err := client.CreateClass(ctx, class); err != nil {
				return err
			}
			continue
		}

		// Class exists, check for missing properties
		class, err := client.GetClass(ctx, c.name)
		if err != nil {
			return err
		}

		existingProps := make(map[string]bool)
		for _, p := range class.Properties {
			existingProps[p.Name] = true
		}

		for _, p := range c.properties {
			if !existingProps[p.Name] {
				if err := client.AddProperty(ctx, c.name, p); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
