package mongodb_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/storage/mongodb"
	"github.com/trezcool/sayansi/storage/storagetest"
)

// TestRepositoryContract runs the shared storage suite against a real database.
// Set SAYANSI_TEST_MONGO_URI to enable it; each subtest gets a throwaway database.
func TestRepositoryContract(t *testing.T) {
	uri := os.Getenv("SAYANSI_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SAYANSI_TEST_MONGO_URI not set")
	}

	var n int
	storagetest.Run(t, func(t *testing.T) storagetest.Adapters {
		n++
		conf := core.NewConfig()
		conf.Database.URI = uri
		conf.Database.Name = fmt.Sprintf("sayansi_test_%d_%d", time.Now().UnixNano(), n)

		db, err := mongodb.Open(conf)
		if err != nil {
			t.Fatalf("Open(): %v", err)
		}
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = db.Drop(ctx)
			_ = db.Client().Disconnect(ctx)
		})

		if err = mongodb.EnsureIndexes(db); err != nil {
			t.Fatalf("EnsureIndexes(): %v", err)
		}
		files, err := mongodb.NewFileStore(db)
		if err != nil {
			t.Fatalf("NewFileStore(): %v", err)
		}
		return storagetest.Adapters{
			Users:         mongodb.NewUserRepository(db),
			Contacts:      mongodb.NewContactRepository(db),
			Registrations: mongodb.NewRegistrationRepository(db),
			Enroll:        mongodb.NewEnrollRepository(db),
			Files:         files,
		}
	})
}
