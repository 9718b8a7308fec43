package models

// TaskCategory groups catalog entries by the kind of action they require.
type TaskCategory string

const (
	CategoryWebsite TaskCategory = "Website"
	CategoryVideo   TaskCategory = "Video"
	CategorySurvey  TaskCategory = "Survey"
)

// Task is a catalog entry a user can complete for points. The catalog is
// read-only for users; staff with manage_tasks maintain it.
type Task struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	Category        TaskCategory `json:"category"`
	Points          int          `json:"points"`
	DurationSeconds int          `json:"duration_seconds,omitempty"` // for timed tasks, 0 when untimed
	URL             string       `json:"url"`
}

// DummyTask receives a catalog entry from a JSON request before it is
// validated and converted to a Task.
type DummyTask struct {
	Title           string `json:"title" validate:"required,min=3,max=120"`
	Category        string `json:"category" validate:"required,oneof=Website Video Survey"`
	Points          int    `json:"points" validate:"required,gt=0"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	URL             string `json:"url" validate:"required,url"`
}
