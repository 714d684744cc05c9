package testutil

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/meatmarket/internal/domain/models"
)

// ErrUnknownUser is returned by Directory.FindByID for missing accounts.
var ErrUnknownUser = errors.New("unknown user")

// Directory is an in-memory user directory.
type Directory struct {
	Users map[primitive.ObjectID]models.User
}

// NewDirectory indexes users by id.
func NewDirectory(users ...models.User) *Directory {
	d := &Directory{Users: make(map[primitive.ObjectID]models.User, len(users))}
	for _, u := range users {
		d.Users[u.ID] = u
	}
	return d
}

// FindByID returns the account with id.
func (d *Directory) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := d.Users[id]
	if !ok {
		return models.User{}, ErrUnknownUser
	}
	return u, nil
}

// Owners resolves known ids to owners.
func (d *Directory) Owners(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Owner, error) {
	out := make(map[primitive.ObjectID]models.Owner, len(ids))
	for _, id := range ids {
		if u, ok := d.Users[id]; ok {
			out[id] = u.Owner()
		}
	}
	return out, nil
}
