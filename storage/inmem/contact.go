package inmemdb

import (
	"github.com/trezcool/sayansi/core/contact"
)

type contactRepository struct {
	db *contactTable
}

var _ contact.Repository = (*contactRepository)(nil)

func NewContactRepository(db *DB) contact.Repository {
	return &contactRepository{db: db.contacts}
}

func (repo *contactRepository) CreateContact(c contact.Contact) (contact.Contact, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table = append(repo.db.table, c)
	return c, nil
}

func (repo *contactRepository) QueryAllContacts() ([]contact.Contact, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// most recent first
	contacts := make([]contact.Contact, 0, len(repo.db.table))
	for i := len(repo.db.table) - 1; i >= 0; i-- {
		contacts = append(contacts, repo.db.table[i])
	}
	return contacts, nil
}

func (repo *contactRepository) CountContacts() (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return int64(len(repo.db.table)), nil
}
