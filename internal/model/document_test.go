package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDocumentLikes(t *testing.T) {
	doc := &Document{}
	doc.Normalize()

	if !doc.AddLike("a") {
		t.Fatal("expected first like to be added")
	}
	if !doc.AddLike("b") {
		t.Fatal("expected second like to be added")
	}
	if doc.AddLike("a") {
		t.Fatal("expected duplicate like to be rejected")
	}
	if len(doc.Likes) != 2 || doc.Likes[0].User != "b" {
		t.Fatalf("expected newest like first, got %#v", doc.Likes)
	}

	if !doc.RemoveLike("a") {
		t.Fatal("expected like to be removed")
	}
	if doc.RemoveLike("a") {
		t.Fatal("expected second removal to fail")
	}
	if len(doc.Likes) != 1 || doc.Likes[0].User != "b" {
		t.Fatalf("unexpected likes after removal: %#v", doc.Likes)
	}
}

func TestDocumentComments(t *testing.T) {
	doc := &Document{}
	doc.AddComment(Comment{ID: "1", Text: "first"})
	doc.AddComment(Comment{ID: "2", Text: "second"})

	if doc.Comments[0].ID != "2" {
		t.Fatalf("expected newest comment first, got %#v", doc.Comments)
	}

	if doc.RemoveComment("missing") {
		t.Fatal("expected removal of unknown comment to fail")
	}
	if len(doc.Comments) != 2 {
		t.Fatalf("comments changed on failed removal: %#v", doc.Comments)
	}

	if !doc.RemoveComment("1") {
		t.Fatal("expected removal by id")
	}
	if len(doc.Comments) != 1 || doc.Comments[0].ID != "2" {
		t.Fatalf("wrong comment removed: %#v", doc.Comments)
	}
}

func TestRemoveLikeDoesNotAliasOriginal(t *testing.T) {
	doc := &Document{Likes: []Like{{User: "a"}, {User: "b"}, {User: "c"}}}
	original := doc.Likes

	doc.RemoveLike("a")

	if original[0].User != "a" {
		t.Fatalf("removal mutated the original backing array: %#v", original)
	}
}

func TestCourseJSONShape(t *testing.T) {
	course := Course{Document: Document{ID: "c1", Title: "Algebra", Owner: "u1"}}
	course.Normalize()

	raw, err := json.Marshal(course)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	body := string(raw)

	for _, want := range []string{`"id":"c1"`, `"user":"u1"`, `"likes":[]`, `"comments":[]`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestEntityBase(t *testing.T) {
	var entity Entity = &Lesson{Document: Document{ID: "l1"}, Course: "c1"}
	if entity.Base().ID != "l1" {
		t.Fatalf("Base() returned wrong document: %#v", entity.Base())
	}
}
