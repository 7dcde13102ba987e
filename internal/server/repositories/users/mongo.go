package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

const userCollection = "users"

type userDocument struct {
	ID              string    `bson:"_id"`
	Email           string    `bson:"email"`
	PasswordHash    string    `bson:"password_hash"`
	IsEmailVerified bool      `bson:"is_email_verified"`
	CreatedAt       time.Time `bson:"created_at"`
}

func toDocument(u *models.User) userDocument {
	return userDocument{
		ID:              u.ID,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
	}
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:              d.ID,
		Email:           d.Email,
		PasswordHash:    d.PasswordHash,
		IsEmailVerified: d.IsEmailVerified,
		CreatedAt:       d.CreatedAt,
	}
}

// MongoRepository stores users in a MongoDB collection with a unique index
// on email.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository binds the repository to db and makes sure the unique
// email index exists.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (*MongoRepository, error) {
	coll := db.Collection(userCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, storageError("create email index", err)
	}

	return &MongoRepository{coll: coll}, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "find user by id", bson.M{"_id": id})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "find user by email", bson.M{"email": email})
}

func (r *MongoRepository) findOne(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, storageError(op, err)
	}
	return doc.toModel(), nil
}

func (r *MongoRepository) Save(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()

	if _, err := r.coll.InsertOne(ctx, toDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrEmailAlreadyUsed
		}
		return nil, storageError("insert user", err)
	}
	return user, nil
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": passwordHash}},
	)
	if err != nil {
		return storageError("update password", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrUserNotFound
	}
	return nil
}
