package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/sayansi/core"
)

// Collections
const (
	usersCollection         = "users"
	contactsCollection      = "contacts"
	registrationsCollection = "registrations"
	schoolsCollection       = "schools"
	mentorsCollection       = "mentors"
	candidatesCollection    = "candidates"

	documentsBucket = "documents"

	opTimeout = 5 * time.Second
)

func Open(conf *core.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	if err = ping(client); err != nil {
		return nil, err
	}
	return client.Database(conf.Database.Name), nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		err = client.Ping(ctx, readpref.Primary())
		cancel()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// EnsureIndexes creates the unique and sort indexes the adapters rely on.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := opCtx()
	defer cancel()

	unique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true)}
	}
	sparseUnique := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys, Options: options.Index().SetUnique(true).SetSparse(true)}
	}
	plain := func(keys bson.D) mongo.IndexModel {
		return mongo.IndexModel{Keys: keys}
	}

	for coll, models := range map[string][]mongo.IndexModel{
		usersCollection: {
			unique(bson.D{{Key: "username", Value: 1}}),
			sparseUnique(bson.D{{Key: "email", Value: 1}}),
		},
		contactsCollection: {
			plain(bson.D{{Key: "created_at", Value: -1}}),
		},
		registrationsCollection: {
			plain(bson.D{{Key: "created_at", Value: -1}}),
		},
		schoolsCollection: {
			// the code is the _id; uniqueness comes for free
			plain(bson.D{{Key: "created_at", Value: -1}}),
		},
		mentorsCollection: {
			plain(bson.D{{Key: "school_code", Value: 1}}),
			plain(bson.D{{Key: "created_at", Value: -1}}),
		},
		candidatesCollection: {
			unique(bson.D{{Key: "seat_number", Value: 1}}),
			plain(bson.D{{Key: "mentor_code", Value: 1}}),
			plain(bson.D{{Key: "created_at", Value: -1}}),
		},
	} {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// isDupErr reports whether err is a unique index violation.
func isDupErr(err error) bool {
	var wErr mongo.WriteException
	if errors.As(err, &wErr) {
		for _, we := range wErr.WriteErrors {
			if we.Code == 11000 {
				return true
			}
		}
	}
	return false
}
