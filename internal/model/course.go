package model

// Course is a top-level learning unit. Lessons point at it through
// Lesson.Course.
type Course struct {
	Document `bson:",inline"`
	Videos   []Video `json:"videos" bson:"videos"`
}

// Lesson belongs to a course by reference only; the store does not
// enforce that the course exists.
type Lesson struct {
	Document    `bson:",inline"`
	Course      string       `json:"course,omitempty" bson:"course,omitempty"`
	Videos      []Video      `json:"videos" bson:"videos"`
	Attachments []Attachment `json:"attachments" bson:"attachments"`
}

// Kinds name the document types in error codes, log fields and
// collection names.
const (
	KindCourse = "course"
	KindLesson = "lesson"
)
