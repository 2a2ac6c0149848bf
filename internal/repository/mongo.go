package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/indranuj17/FeedlinerX/internal/common"
	"github.com/indranuj17/FeedlinerX/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository implements the user store against a MongoDB
// collection. Messages are an embedded array inside each user document.
type MongoUserRepository struct {
	Coll *mongo.Collection
}

// NewMongoUserRepository creates a MongoUserRepository over coll.
func NewMongoUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{Coll: coll}
}

// withoutMessages keeps lookups from loading whole inboxes.
var withoutMessages = options.FindOne().SetProjection(bson.M{"messages": 0})

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := r.Coll.FindOne(ctx, filter, withoutMessages).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// FindByID returns the user with the given id.
func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByUsername returns the user holding username, verified or not.
func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// FindVerifiedByUsername returns the verified user holding username.
func (r *MongoUserRepository) FindVerifiedByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username, "isVerified": true})
}

// FindByEmail returns the user registered with email.
func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

// FindByIdentifier returns the user whose username or email equals identifier.
func (r *MongoUserRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": strings.ToLower(identifier)},
	}})
}

// Create inserts a new user with an empty inbox.
func (r *MongoUserRepository) Create(ctx context.Context, u *models.User) error {
	doc := *u
	// $push needs an array, never null.
	doc.Messages = []models.Message{}
	if _, err := r.Coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflictFor(err.Error())
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// UpdatePending rewrites the credentials and verification code of an
// unverified user. Verified users are never touched.
func (r *MongoUserRepository) UpdatePending(ctx context.Context, id, username, passwordHash, code string, expiry time.Time) error {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"_id": id, "isVerified": false},
		bson.M{"$set": bson.M{
			"username":         username,
			"password":         passwordHash,
			"verifyCode":       code,
			"verifyCodeExpiry": expiry,
		}},
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflictFor(err.Error())
		}
		return fmt.Errorf("update pending user: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// MarkVerified flags the user as verified.
func (r *MongoUserRepository) MarkVerified(ctx context.Context, id string) error {
	return r.setField(ctx, id, "isVerified", true)
}

// SetAcceptingMessages sets the accepting-messages flag.
func (r *MongoUserRepository) SetAcceptingMessages(ctx context.Context, id string, accept bool) error {
	return r.setField(ctx, id, "isAcceptingMessages", accept)
}

func (r *MongoUserRepository) setField(ctx context.Context, id, field string, value any) error {
	res, err := r.Coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("set %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// AppendMessage atomically appends msg to the end of the user's inbox.
func (r *MongoUserRepository) AppendMessage(ctx context.Context, userID string, msg models.Message) error {
	res, err := r.Coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$push": bson.M{"messages": msg}})
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Messages returns the user's inbox in insertion order.
func (r *MongoUserRepository) Messages(ctx context.Context, userID string) ([]models.Message, error) {
	var doc struct {
		Messages []models.Message `bson:"messages"`
	}
	opts := options.FindOne().SetProjection(bson.M{"messages": 1})
	if err := r.Coll.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("load messages: %w", err)
	}
	if doc.Messages == nil {
		return []models.Message{}, nil
	}
	return doc.Messages, nil
}

// DeleteMessage atomically pulls the message with messageID out of the
// user's inbox.
func (r *MongoUserRepository) DeleteMessage(ctx context.Context, userID, messageID string) error {
	res, err := r.Coll.UpdateOne(ctx,
		bson.M{"_id": userID, "messages.id": messageID},
		bson.M{"$pull": bson.M{"messages": bson.M{"id": messageID}}},
	)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if res.ModifiedCount == 0 {
		return common.ErrMessageNotFound
	}
	return nil
}

// DeleteExpiredPending removes unverified users whose code expired before cutoff.
func (r *MongoUserRepository) DeleteExpiredPending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.Coll.DeleteMany(ctx, bson.M{
		"isVerified":       false,
		"verifyCodeExpiry": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, fmt.Errorf("delete expired pending: %w", err)
	}
	return res.DeletedCount, nil
}
