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

type MongoConnectionRepo struct {
	coll *mongo.Collection
}

func NewMongoConnectionRepo(db *mongo.Database) *MongoConnectionRepo {
	coll := db.Collection("connections")
	// The unique index over the sorted pair key is what closes the race
	// between two near-simultaneous requests for the same pair.
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "pair_key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("pair_key_uidx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &MongoConnectionRepo{coll: coll}
}

func (r *MongoConnectionRepo) Insert(ctx context.Context, conn *models.Connection) error {
	now := time.Now().UTC()
	conn.CreatedAt = now
	conn.UpdatedAt = now
	conn.PairKey = models.PairKey(conn.RequesterID, conn.ReceiverID)
	_, err := r.coll.InsertOne(ctx, conn)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.ErrDuplicate
	}
	return err
}

func (r *MongoConnectionRepo) Get(ctx context.Context, id string) (*models.Connection, error) {
	var c models.Connection
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoConnectionRepo) FindByPair(ctx context.Context, userA, userB string) (*models.Connection, error) {
	var c models.Connection
	filter := bson.M{"pair_key": models.PairKey(userA, userB)}
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoConnectionRepo) UpdateStatus(ctx context.Context, id, status string) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *MongoConnectionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *MongoConnectionRepo) ListAccepted(ctx context.Context, userID string) ([]*models.Connection, error) {
	filter := bson.M{
		"status": models.ConnectionAccepted,
		"$or": []bson.M{
			{"requester_id": userID},
			{"receiver_id": userID},
		},
	}
	return r.list(ctx, filter)
}

func (r *MongoConnectionRepo) ListPendingFor(ctx context.Context, receiverID string) ([]*models.Connection, error) {
	filter := bson.M{"receiver_id": receiverID, "status": models.ConnectionPending}
	return r.list(ctx, filter)
}

func (r *MongoConnectionRepo) list(ctx context.Context, filter bson.M) ([]*models.Connection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Connection
	for cur.Next(ctx) {
		var c models.Connection
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}
