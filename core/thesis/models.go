package thesis

import (
	"path"
	"strings"
	"time"
)

type Thesis struct {
	ID               string    `json:"id"`
	StudentID        string    `json:"student_id"`
	SupervisorID     string    `json:"supervisor_id"`
	TopicID          string    `json:"topic_id"`
	Title            string    `json:"title"` // name of the topic, read only
	ShortDescription string    `json:"short_description"`
	File             string    `json:"file"` // storage key
	Finished         bool      `json:"finished"`
	FinishedDate     time.Time `json:"finished_date"` // zero until finished
	CreatedAt        time.Time `json:"created_at"`    // UTC
}

type Defense struct {
	ID            string    `json:"id"`
	ThesisID      string    `json:"thesis_id"`
	Date          time.Time `json:"date"`
	Successful    bool      `json:"successful"`
	SecondDefense bool      `json:"second_defense"`
}

// QueryFilter applies AND operation on its set fields.
type QueryFilter struct {
	StudentID    string
	SupervisorID string
	TopicID      string
}

// FileKey returns the storage key of a thesis document: theses/<student id>/<file name>.
func FileKey(studentID, filename string) string {
	return path.Join("theses", studentID, CleanFilename(filename))
}

// CleanFilename strips any directory from an uploaded file name.
func CleanFilename(filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	return name
}
