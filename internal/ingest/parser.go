package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Expected document shape:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: <lesson title>
//	Lesson Link: <url>
//	<lesson content>
//
//	Lesson 1: ...
type Course struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []Lesson
}

type Lesson struct {
	Number int
	Title  string
	Link   string
}

// LessonBody pairs a lesson with its raw transcript text.
type LessonBody struct {
	Lesson Lesson
	Text   string
}

type Document struct {
	Course Course
	Bodies []LessonBody
}

// ParseError marks a malformed document. Ingestion skips the document and
// continues with the rest of the corpus.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "malformed course document: " + e.Reason
}

const (
	titlePrefix      = "Course Title:"
	linkPrefix       = "Course Link:"
	instructorPrefix = "Course Instructor:"
	lessonLinkPrefix = "Lesson Link:"
)

var lessonMarkerRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// Parse reads a course document: a three-line header followed by lesson
// blocks. Any of the three header fields missing or blank is a ParseError.
// Leading content before the first lesson marker becomes a synthetic Lesson 0.
func Parse(r io.Reader) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(lines) < 3 {
		return nil, &ParseError{Reason: "incomplete header"}
	}

	header := func(line, prefix string) (string, bool) {
		if !strings.HasPrefix(line, prefix) {
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
	}

	doc := &Document{}
	var ok bool
	if doc.Course.Title, ok = header(lines[0], titlePrefix); !ok || doc.Course.Title == "" {
		return nil, &ParseError{Reason: "missing course title"}
	}
	if doc.Course.Link, ok = header(lines[1], linkPrefix); !ok || doc.Course.Link == "" {
		return nil, &ParseError{Reason: "missing course link"}
	}
	if doc.Course.Instructor, ok = header(lines[2], instructorPrefix); !ok || doc.Course.Instructor == "" {
		return nil, &ParseError{Reason: "missing course instructor"}
	}

	var (
		current *LessonBody
		leading []string
		body    []string
	)

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.TrimSpace(strings.Join(body, "\n"))
		doc.Course.Lessons = append(doc.Course.Lessons, current.Lesson)
		doc.Bodies = append(doc.Bodies, *current)
		current = nil
		body = nil
	}

	i := 3
	for i < len(lines) {
		line := lines[i]
		if m := lessonMarkerRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			number, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, &ParseError{Reason: fmt.Sprintf("bad lesson number %q", m[1])}
			}
			current = &LessonBody{Lesson: Lesson{Number: number, Title: strings.TrimSpace(m[2])}}
			// Optional link line directly under the marker.
			if i+1 < len(lines) {
				if link, ok := header(strings.TrimSpace(lines[i+1]), lessonLinkPrefix); ok {
					current.Lesson.Link = link
					i++
				}
			}
			i++
			continue
		}
		if current == nil {
			leading = append(leading, line)
		} else {
			body = append(body, line)
		}
		i++
	}
	flush()

	if intro := strings.TrimSpace(strings.Join(leading, "\n")); intro != "" {
		if len(doc.Bodies) > 0 && doc.Bodies[0].Lesson.Number == 0 {
			// An explicit Lesson 0 absorbs the stray leading text.
			doc.Bodies[0].Text = strings.TrimSpace(intro + "\n" + doc.Bodies[0].Text)
		} else {
			synthetic := LessonBody{Lesson: Lesson{Number: 0, Title: "Introduction"}, Text: intro}
			doc.Bodies = append([]LessonBody{synthetic}, doc.Bodies...)
			doc.Course.Lessons = append([]Lesson{synthetic.Lesson}, doc.Course.Lessons...)
		}
	}

	return doc, nil
}
