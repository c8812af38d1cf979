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

type MongoChatRepo struct {
	coll *mongo.Collection
}

func NewMongoChatRepo(db *mongo.Database) *MongoChatRepo {
	coll := db.Collection("chats")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "participants", Value: 1}},
		Options: options.Index().SetName("participants_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &MongoChatRepo{coll: coll}
}

func (r *MongoChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, chat)
	return err
}

func (r *MongoChatRepo) Get(ctx context.Context, id string) (*models.Chat, error) {
	var c models.Chat
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoChatRepo) ListForUser(ctx context.Context, userID string) ([]*models.Chat, error) {
	filter := bson.M{"participants": userID}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []*models.Chat
	for cur.Next(ctx) {
		var c models.Chat
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

func (r *MongoChatRepo) FindDirect(ctx context.Context, userA, userB string) (*models.Chat, error) {
	filter := bson.M{
		"type":         models.ChatDirect,
		"participants": bson.M{"$all": []string{userA, userB}},
	}
	var c models.Chat
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoChatRepo) SetLastMessage(ctx context.Context, chatID, messageID string) error {
	update := bson.M{"$set": bson.M{
		"last_message_id": messageID,
		"updated_at":      time.Now().UTC(),
	}}
	_, err := r.coll.UpdateByID(ctx, chatID, update)
	return err
}

func (r *MongoChatRepo) Rename(ctx context.Context, chatID, name string) error {
	update := bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}}
	_, err := r.coll.UpdateByID(ctx, chatID, update)
	return err
}

func (r *MongoChatRepo) AddParticipant(ctx context.Context, chatID, userID string) error {
	update := bson.M{
		"$addToSet": bson.M{"participants": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.coll.UpdateByID(ctx, chatID, update)
	return err
}

func (r *MongoChatRepo) RemoveParticipant(ctx context.Context, chatID, userID string) error {
	update := bson.M{
		"$pull": bson.M{"participants": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	_, err := r.coll.UpdateByID(ctx, chatID, update)
	return err
}

func (r *MongoChatRepo) Delete(ctx context.Context, chatID string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": chatID})
	return err
}
