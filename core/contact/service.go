package contact

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("contact not found")

type (
	Repository interface {
		CreateContact(c Contact) (Contact, error)
		// QueryAllContacts returns all contacts, most recent first.
		QueryAllContacts() ([]Contact, error)
		CountContacts() (int64, error)
	}

	Service interface {
		Create(nc NewContact) (Contact, error)
		QueryAll() ([]Contact, error)
		Count() (int64, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(nc NewContact) (Contact, error) {
	c := Contact{
		ID:         uuid.New().String(),
		FirstName:  nc.FirstName,
		LastName:   nc.LastName,
		Email:      nc.Email,
		GradeLevel: nc.GradeLevel,
		Message:    nc.Message,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateContact(c)
}

func (svc *service) QueryAll() ([]Contact, error) {
	return svc.repo.QueryAllContacts()
}

func (svc *service) Count() (int64, error) {
	return svc.repo.CountContacts()
}
