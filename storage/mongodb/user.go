package mongodb

import (
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sayansi/core/user"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Username     string    `bson:"username"`
	Email        string    `bson:"email,omitempty"`
	IsActive     bool      `bson:"is_active"`
	Roles        []string  `bson:"roles,omitempty"`
	PasswordHash []byte    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
	LastLogin    time.Time `bson:"last_login,omitempty"`
}

func newUserDoc(usr user.User) userDoc {
	return userDoc{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     usr.Username,
		Email:        usr.Email,
		IsActive:     usr.IsActive,
		Roles:        usr.Roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt,
		UpdatedAt:    usr.UpdatedAt,
		LastLogin:    usr.LastLogin,
	}
}

func (doc userDoc) user() user.User {
	return user.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Username:     doc.Username,
		Email:        doc.Email,
		IsActive:     doc.IsActive,
		Roles:        doc.Roles,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		LastLogin:    doc.LastLogin,
	}
}

type userRepository struct {
	coll *mongo.Collection
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *mongo.Database) user.Repository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string) error {
	ctx, cancel := opCtx()
	defer cancel()

	if username != "" {
		n, err := repo.coll.CountDocuments(ctx, bson.M{"username": username})
		if err != nil {
			return errors.Wrap(err, "counting usernames")
		}
		if n > 0 {
			return user.ErrUsernameExists
		}
	}
	if email != "" {
		n, err := repo.coll.CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			return errors.Wrap(err, "counting emails")
		}
		if n > 0 {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, newUserDoc(usr)); err != nil {
		if isDupErr(err) {
			// the unique index cannot tell us which field collided; look it up
			if uErr := repo.CheckUsernameUniqueness(usr.Username, usr.Email); uErr != nil {
				return user.User{}, uErr
			}
			return user.User{}, user.ErrUsernameExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := repo.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	var docs []userDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding users")
	}

	users := make([]user.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.user())
	}
	return users, nil
}

func (repo *userRepository) getOne(filter bson.M) (user.User, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc userDoc
	if err := repo.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return doc.user(), nil
}

func (repo *userRepository) GetUserByID(id string) (user.User, error) {
	return repo.getOne(bson.M{"_id": id})
}

func (repo *userRepository) GetUserByUsername(username string) (user.User, error) {
	return repo.getOne(bson.M{"username": username})
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.getOne(bson.M{"email": email})
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	return repo.getOne(bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": username},
	}})
}

func (repo *userRepository) updateOne(id string, update bson.M) (user.User, error) {
	ctx, cancel := opCtx()
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return doc.user(), nil
}

func (repo *userRepository) UpdateUserPassword(id string, hash []byte) (user.User, error) {
	return repo.updateOne(id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
}

func (repo *userRepository) SetUserLastLogin(id string, lastLogin time.Time) (user.User, error) {
	return repo.updateOne(id, bson.M{"$set": bson.M{"last_login": lastLogin}})
}
