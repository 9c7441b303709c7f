package course

import (
	"time"

	"github.com/google/uuid"
)

// Course is the relational record of an ingested course. The vector indexes
// hold the searchable representation; this row is the durable inventory used
// for dedupe and the catalog endpoint.
type Course struct {
	ID           uuid.UUID
	Title        string
	Instructor   string
	Link         string
	LessonTitles []string
	LessonLinks  []string
	CreatedAt    time.Time
}
