package worker

type ChunkEmbedPayload struct {
	CourseTitle  string `json:"course_title"`
	LessonNumber int    `json:"lesson_number"`
	ChunkIndex   int    `json:"chunk_index"`
	Content      string `json:"content"`

	CorrelationID string `json:"correlation_id"`
}
