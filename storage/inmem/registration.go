package inmemdb

import (
	"github.com/trezcool/sayansi/core/registration"
)

type registrationRepository struct {
	db *registrationTable
}

var _ registration.Repository = (*registrationRepository)(nil)

func NewRegistrationRepository(db *DB) registration.Repository {
	return &registrationRepository{db: db.registrations}
}

func (repo *registrationRepository) CreateRegistration(r registration.Registration) (registration.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.table = append(repo.db.table, r)
	return r, nil
}

func (repo *registrationRepository) QueryAllRegistrations() ([]registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	// most recent first
	regs := make([]registration.Registration, 0, len(repo.db.table))
	for i := len(repo.db.table) - 1; i >= 0; i-- {
		regs = append(regs, repo.db.table[i])
	}
	return regs, nil
}

func (repo *registrationRepository) GetRegistrationByID(id string) (registration.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, r := range repo.db.table {
		if r.ID == id {
			return r, nil
		}
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) CountRegistrations() (int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return int64(len(repo.db.table)), nil
}
