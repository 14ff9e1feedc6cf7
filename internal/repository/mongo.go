package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/coursehub/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDocumentRepository keeps each document kind in its own collection.
// Ids are ObjectID hex strings.
type MongoDocumentRepository[T model.Entity] struct {
	collection *mongo.Collection
}

func NewMongoDocumentRepository[T model.Entity](db *mongo.Database, collection string) *MongoDocumentRepository[T] {
	return &MongoDocumentRepository[T]{collection: db.Collection(collection)}
}

func (r *MongoDocumentRepository[T]) List(ctx context.Context) ([]T, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoDocumentRepository[T]) find(ctx context.Context, filter bson.M) ([]T, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", r.collection.Name(), err)
	}

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.collection.Name(), err)
	}
	return docs, nil
}

func (r *MongoDocumentRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var doc T
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("find %s %s: %w", r.collection.Name(), id, err)
	}
	return doc, nil
}

func (r *MongoDocumentRepository[T]) Create(ctx context.Context, doc T) (T, error) {
	base := doc.Base()
	base.ID = primitive.NewObjectID().Hex()
	if base.CreatedAt.IsZero() {
		// BSON dates carry milliseconds.
		base.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	base.Normalize()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		var zero T
		return zero, fmt.Errorf("insert into %s: %w", r.collection.Name(), err)
	}
	return doc, nil
}

func (r *MongoDocumentRepository[T]) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", r.collection.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoDocumentRepository[T]) AddLike(ctx context.Context, id, userID string) (T, error) {
	filter := bson.M{"_id": id, "likes.user": bson.M{"$ne": userID}}
	update := bson.M{"$push": bson.M{"likes": prepend(model.Like{User: userID})}}
	return r.update(ctx, id, filter, update, ErrAlreadyLiked)
}

func (r *MongoDocumentRepository[T]) RemoveLike(ctx context.Context, id, userID string) (T, error) {
	filter := bson.M{"_id": id, "likes.user": userID}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": userID}}}
	return r.update(ctx, id, filter, update, ErrNotLiked)
}

func (r *MongoDocumentRepository[T]) AddComment(ctx context.Context, id string, comment model.Comment) (T, error) {
	comment.ID = primitive.NewObjectID().Hex()
	comment.CreatedAt = comment.CreatedAt.Truncate(time.Millisecond)

	update := bson.M{"$push": bson.M{"comments": prepend(comment)}}
	return r.update(ctx, id, bson.M{"_id": id}, update, ErrNotFound)
}

func (r *MongoDocumentRepository[T]) RemoveComment(ctx context.Context, id, commentID string) (T, error) {
	filter := bson.M{"_id": id, "comments._id": commentID}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}}
	return r.update(ctx, id, filter, update, ErrCommentNotFound)
}

// update applies update to the document matched by filter and returns
// the result. When nothing matched, the document either does not exist
// (ErrNotFound) or failed the precondition in filter (miss).
func (r *MongoDocumentRepository[T]) update(ctx context.Context, id string, filter, update bson.M, miss error) (T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc T
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return doc, fmt.Errorf("update %s %s: %w", r.collection.Name(), id, err)
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return doc, fmt.Errorf("count %s %s: %w", r.collection.Name(), id, err)
	}
	if n == 0 {
		return doc, ErrNotFound
	}
	return doc, miss
}

func prepend(item any) bson.M {
	return bson.M{"$each": bson.A{item}, "$position": 0}
}

// MongoLessonRepository adds the course lookup to the lessons collection.
type MongoLessonRepository struct {
	*MongoDocumentRepository[*model.Lesson]
}

func NewMongoLessonRepository(db *mongo.Database) *MongoLessonRepository {
	return &MongoLessonRepository{
		MongoDocumentRepository: NewMongoDocumentRepository[*model.Lesson](db, "lessons"),
	}
}

func (r *MongoLessonRepository) ListByCourse(ctx context.Context, courseID string) ([]*model.Lesson, error) {
	return r.find(ctx, bson.M{"course": courseID})
}
