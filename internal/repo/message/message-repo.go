package message_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/xenn00/campus-chat/internal/entity"
	app_error "github.com/xenn00/campus-chat/internal/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	databaseName   = "campus_chat"
	collectionName = "messages"
)

type MessageRepo struct {
	Mongo *mongo.Client
}

func NewMessageRepo(client *mongo.Client) MessageRepoContract {
	return &MessageRepo{Mongo: client}
}

func (r *MessageRepo) collection() *mongo.Collection {
	return r.Mongo.Database(databaseName).Collection(collectionName)
}

func (r *MessageRepo) Append(ctx context.Context, msg *entity.Message) (bson.ObjectID, *app_error.AppError) {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	if _, err := r.collection().InsertOne(ctx, msg); err != nil {
		return bson.NilObjectID, app_error.Persistence(fmt.Sprintf("failed to store message: %v", err))
	}
	return msg.ID, nil
}

func (r *MessageRepo) ListByRoom(ctx context.Context, channelID int64) ([]*entity.Message, *app_error.AppError) {
	cur, err := r.collection().Find(ctx,
		bson.M{"roomId": channelID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, app_error.Persistence(fmt.Sprintf("failed to fetch messages: %v", err))
	}
	defer cur.Close(ctx)

	var messages []*entity.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, app_error.Persistence(fmt.Sprintf("failed to decode messages: %v", err))
	}

	return messages, nil
}
