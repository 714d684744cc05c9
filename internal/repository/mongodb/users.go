package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

// ErrUserNotFound indicates no account exists for an id.
var ErrUserNotFound = errors.New("user not found")

// UserRepository reads the user directory. Accounts are managed elsewhere.
type UserRepository struct {
	coll *mongo.Collection
}

// NewUserRepository wraps the users collection.
func NewUserRepository(coll *mongo.Collection) *UserRepository {
	return &UserRepository{coll: coll}
}

// FindByID loads one account.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return u, ErrUserNotFound
	}
	if err != nil {
		return u, fmt.Errorf("find user %s: %w", id.Hex(), err)
	}
	return u, nil
}

// Owners resolves user ids to display names. Unknown ids are absent from the result.
func (r *UserRepository) Owners(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Owner, error) {
	owners := make(map[primitive.ObjectID]models.Owner, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "email", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find owners: %w", err)
	}
	var found []models.Owner
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode owners: %w", err)
	}
	for _, o := range found {
		owners[o.ID] = o
	}
	return owners, nil
}
