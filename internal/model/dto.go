package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by the name clients send them under:
// the json key, or the path parameter name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "param"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// DocumentIDRequest addresses a single document by its path id.
//
// Path-only fields are hidden from the JSON decoder, otherwise echo's
// body binding would let an "id" key replace the route parameter.
type DocumentIDRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
}

func (r *DocumentIDRequest) Validate() error {
	return validate.Struct(r)
}

// EmptyRequest is used by routes that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

type VideoPayload struct {
	Name string `json:"videoname" validate:"omitempty,max=200"`
	URL  string `json:"urls" validate:"required,url"`
}

type AttachmentPayload struct {
	Name string `json:"filename" validate:"omitempty,max=200"`
	URL  string `json:"url" validate:"required,url"`
}

type CreateCourseRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description" validate:"required"`
	Videos      []VideoPayload `json:"videos" validate:"omitempty,dive"`
}

func (r *CreateCourseRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	return validate.Struct(r)
}

// Course builds the document to store for ownerID.
func (r *CreateCourseRequest) Course(ownerID string) *Course {
	return &Course{
		Document: Document{Title: r.Title, Description: r.Description, Owner: ownerID},
		Videos:   videos(r.Videos),
	}
}

type CreateLessonRequest struct {
	Title       string              `json:"title" validate:"required,max=200"`
	Description string              `json:"description" validate:"required"`
	Course      string              `json:"course" validate:"omitempty,max=64"`
	Videos      []VideoPayload      `json:"videos" validate:"omitempty,dive"`
	Attachments []AttachmentPayload `json:"attachments" validate:"omitempty,dive"`
}

func (r *CreateLessonRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Course = strings.TrimSpace(r.Course)
	return validate.Struct(r)
}

// Lesson builds the document to store for ownerID.
func (r *CreateLessonRequest) Lesson(ownerID string) *Lesson {
	attachments := make([]Attachment, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		attachments = append(attachments, Attachment{Name: a.Name, URL: a.URL})
	}

	return &Lesson{
		Document:    Document{Title: r.Title, Description: r.Description, Owner: ownerID},
		Course:      r.Course,
		Videos:      videos(r.Videos),
		Attachments: attachments,
	}
}

func videos(in []VideoPayload) []Video {
	out := make([]Video, 0, len(in))
	for _, v := range in {
		out = append(out, Video{Name: v.Name, URL: v.URL})
	}
	return out
}

// AddCommentRequest adds a comment to the document with path id ID.
// Name and Avatar are display details chosen by the client.
type AddCommentRequest struct {
	ID     string `param:"id" json:"-" validate:"required"`
	Text   string `json:"text" validate:"required,max=300"`
	Name   string `json:"name" validate:"omitempty,max=100"`
	Avatar string `json:"avatar" validate:"omitempty,url"`
}

func (r *AddCommentRequest) Validate() error {
	r.Text = strings.TrimSpace(r.Text)
	return validate.Struct(r)
}

type RemoveCommentRequest struct {
	ID        string `param:"id" json:"-" validate:"required"`
	CommentID string `param:"comment_id" json:"-" validate:"required"`
}

func (r *RemoveCommentRequest) Validate() error {
	return validate.Struct(r)
}
