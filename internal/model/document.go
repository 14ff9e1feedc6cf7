// Package model holds the documents persisted by the repositories and
// returned by the API.
//
// Courses and lessons share one shape, Document: an owned, titled record
// that users can like and comment on. Kind-specific fields live on the
// wrapping Course and Lesson types.
package model

import "time"

// Entity is implemented by every persisted document kind.
// Base exposes the shared fields so generic code can work on them.
type Entity interface {
	Base() *Document
}

// Video is a named link to a video.
type Video struct {
	Name string `json:"videoname" bson:"videoname"`
	URL  string `json:"urls" bson:"urls"`
}

// Attachment is a named link to a downloadable file.
type Attachment struct {
	Name string `json:"filename" bson:"filename"`
	URL  string `json:"url" bson:"url"`
}

// Comment is a sub-record of a document. ID is assigned by the
// repository and is unique within the parent's comments.
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	User      string    `json:"user" bson:"user"`
	Text      string    `json:"text" bson:"text"`
	Name      string    `json:"name" bson:"name"`
	Avatar    string    `json:"avatar" bson:"avatar"`
	CreatedAt time.Time `json:"date" bson:"date"`
}

// Like records that User likes the parent document.
type Like struct {
	User string `json:"user" bson:"user"`
}

// Document is the shared base of courses and lessons.
//
// Comments and Likes are kept newest first. Owner is set once at
// creation and decides who may delete the document.
type Document struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Owner       string    `json:"user" bson:"user"`
	Comments    []Comment `json:"comments" bson:"comments"`
	Likes       []Like    `json:"likes" bson:"likes"`
	CreatedAt   time.Time `json:"date" bson:"date"`
}

func (d *Document) Base() *Document {
	return d
}

// Normalize replaces nil sequences with empty ones so documents are
// stored and rendered with [] instead of null.
func (d *Document) Normalize() {
	if d.Comments == nil {
		d.Comments = []Comment{}
	}
	if d.Likes == nil {
		d.Likes = []Like{}
	}
}

// IsOwnedBy reports whether userID created the document.
func (d *Document) IsOwnedBy(userID string) bool {
	return d.Owner == userID
}

// LikedBy reports whether userID is present in Likes.
func (d *Document) LikedBy(userID string) bool {
	for _, like := range d.Likes {
		if like.User == userID {
			return true
		}
	}
	return false
}

// AddLike prepends a like for userID. It returns false, leaving Likes
// untouched, when userID already likes the document.
func (d *Document) AddLike(userID string) bool {
	if d.LikedBy(userID) {
		return false
	}
	d.Likes = append([]Like{{User: userID}}, d.Likes...)
	return true
}

// RemoveLike removes the like of userID. It returns false when there is none.
func (d *Document) RemoveLike(userID string) bool {
	for i, like := range d.Likes {
		if like.User == userID {
			d.Likes = append(d.Likes[:i:i], d.Likes[i+1:]...)
			return true
		}
	}
	return false
}

// AddComment prepends comment.
func (d *Document) AddComment(comment Comment) {
	d.Comments = append([]Comment{comment}, d.Comments...)
}

// RemoveComment removes the comment with the given id. It returns false
// when no comment matches.
func (d *Document) RemoveComment(commentID string) bool {
	for i, comment := range d.Comments {
		if comment.ID == commentID {
			d.Comments = append(d.Comments[:i:i], d.Comments[i+1:]...)
			return true
		}
	}
	return false
}
