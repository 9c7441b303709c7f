package ingest

import (
	"fmt"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/text"
)

// Chunk is the unit of retrieval. Content carries a course/lesson context
// header so the chunk is self-describing when surfaced out of context.
type Chunk struct {
	CourseTitle  string
	LessonNumber int
	ChunkIndex   int
	Content      string
}

// Chunks windows every lesson body into overlapping chunks. Chunk indexes are
// contiguous per lesson starting at 0; an empty lesson body yields no chunks.
func (d *Document) Chunks(chunkSize, overlap int) []Chunk {
	var out []Chunk
	for _, b := range d.Bodies {
		for i, w := range text.Window(b.Text, chunkSize, overlap) {
			out = append(out, Chunk{
				CourseTitle:  d.Course.Title,
				LessonNumber: b.Lesson.Number,
				ChunkIndex:   i,
				Content:      fmt.Sprintf("Course %s Lesson %d content: %s", d.Course.Title, b.Lesson.Number, w),
			})
		}
	}
	return out
}
