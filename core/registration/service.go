package registration

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("registration not found")

type (
	Repository interface {
		CreateRegistration(r Registration) (Registration, error)
		// QueryAllRegistrations returns all registrations, most recent first.
		QueryAllRegistrations() ([]Registration, error)
		GetRegistrationByID(id string) (Registration, error)
		CountRegistrations() (int64, error)
	}

	Service interface {
		Create(nr NewRegistration) (Registration, error)
		QueryAll() ([]Registration, error)
		GetByID(id string) (Registration, error)
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

func (svc *service) Create(nr NewRegistration) (Registration, error) {
	r := Registration{
		ID:            uuid.New().String(),
		StudentName:   nr.StudentName,
		Email:         nr.Email,
		Phone:         nr.Phone,
		GradeLevel:    nr.GradeLevel,
		SchoolName:    nr.SchoolName,
		ParentName:    nr.ParentName,
		ParentPhone:   nr.ParentPhone,
		Address:       nr.Address,
		ExamType:      nr.ExamType,
		PaymentStatus: PaymentPending,
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateRegistration(r)
}

func (svc *service) QueryAll() ([]Registration, error) {
	return svc.repo.QueryAllRegistrations()
}

func (svc *service) GetByID(id string) (Registration, error) {
	return svc.repo.GetRegistrationByID(id)
}

func (svc *service) Count() (int64, error) {
	return svc.repo.CountRegistrations()
}
