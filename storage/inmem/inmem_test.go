package inmemdb_test

import (
	"testing"

	inmemdb "github.com/trezcool/sayansi/storage/inmem"
	"github.com/trezcool/sayansi/storage/storagetest"
)

func TestRepositoryContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Adapters {
		db, err := inmemdb.Open()
		if err != nil {
			t.Fatalf("Open(): %v", err)
		}
		return storagetest.Adapters{
			Users:         inmemdb.NewUserRepository(db),
			Contacts:      inmemdb.NewContactRepository(db),
			Registrations: inmemdb.NewRegistrationRepository(db),
			Enroll:        inmemdb.NewEnrollRepository(db),
			Files:         inmemdb.NewFileStore(db),
		}
	})
}
