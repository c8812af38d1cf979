package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Pranaykumar222/CampusConnect/internal/apperr"
	"github.com/Pranaykumar222/CampusConnect/internal/models"
)

type MongoMessageRepo struct {
	coll *mongo.Collection
}

func NewMongoMessageRepo(db *mongo.Database) *MongoMessageRepo {
	coll := db.Collection("messages")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("chat_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &MongoMessageRepo{coll: coll}
}

func (r *MongoMessageRepo) Insert(ctx context.Context, msg *models.Message) error {
	msg.CreatedAt = time.Now().UTC()
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

func (r *MongoMessageRepo) Get(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoMessageRepo) List(ctx context.Context, chatID string) ([]*models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *MongoMessageRepo) CountUnread(ctx context.Context, chatID, userID string) (int64, error) {
	filter := bson.M{
		"chat_id":   chatID,
		"sender_id": bson.M{"$ne": userID},
		"read_by":   bson.M{"$ne": userID},
	}
	return r.coll.CountDocuments(ctx, filter)
}

func (r *MongoMessageRepo) MarkAllSeen(ctx context.Context, chatID, userID string) error {
	filter := bson.M{
		"chat_id":   chatID,
		"sender_id": bson.M{"$ne": userID},
		"read_by":   bson.M{"$ne": userID},
	}
	// $addToSet keeps read_by monotonic; re-running is a no-op.
	update := bson.M{"$addToSet": bson.M{"read_by": userID}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *MongoMessageRepo) DeleteByChat(ctx context.Context, chatID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"chat_id": chatID})
	return err
}
