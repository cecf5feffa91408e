package week

import (
	"fmt"
	"time"
)

type TaskZone string

const (
	ZonePlanning TaskZone = "planning"
	ZoneFocus    TaskZone = "focus"
	ZoneFrozen   TaskZone = "frozen"
	ZoneDone     TaskZone = "done"
)

type Category string

const (
	CategoryRegular  Category = "regular"
	CategoryDeadline Category = "ddl"
	CategoryLeisure  Category = "leisure"
)

func ParseCategory(value string) (Category, error) {
	switch c := Category(value); c {
	case CategoryRegular, CategoryDeadline, CategoryLeisure:
		return c, nil
	}
	return "", fmt.Errorf("unknown task category: %q", value)
}

type Task struct {
	Id          string
	DayKey      string
	Title       string
	Description string
	Category    Category
	// Order is meaningful in the planning and frozen zones.
	Order     int
	Zone      TaskZone
	StartedAt *time.Time
	EndedAt   *time.Time
	// CompletedOrder numbers done tasks in the order they were finished.
	CompletedOrder int
	Steps          []string
	Attachments    []Attachment
}

// Attachment is opaque binary data carried along with a task.
type Attachment struct {
	Id        string    `json:"id"`
	FileName  string    `json:"fileName"`
	FileType  string    `json:"fileType"`
	Data      []byte    `json:"data,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Number is the display label of a task, e.g. "T03".
func (t Task) Number() string {
	return fmt.Sprintf("T%02d", t.Order)
}
