package enroll

import (
	"fmt"
	"io"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/sayansi/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrSchoolNotFound    = errors.New("school not found")
	ErrMentorNotFound    = errors.New("mentor not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrDeadlinePassed    = errors.New("the candidate registration deadline has passed")
	ErrSchoolCodeExists  = errors.New("a school with this code already exists")
	ErrMentorCodeExists  = errors.New("a mentor with this code already exists")
	ErrSeatNumberExists  = errors.New("a candidate with this seat number already exists")

	errSchoolCodeUnknown = "no school registered with this code"
	errMentorCodeUnknown = "no mentor registered with this code"
	errDocTooBig         = "document exceeds the maximum allowed size"
)

type (
	Repository interface {
		// CreateSchool fails with ErrSchoolCodeExists when the code is taken.
		CreateSchool(s School) (School, error)
		GetSchoolByCode(code string) (School, error)
		SchoolCodeExists(code string) (bool, error)
		// QueryAllSchools returns all schools, most recent first.
		QueryAllSchools() ([]School, error)
		CountSchools() (int64, error)

		// CreateMentor fails with ErrMentorCodeExists when the code is taken.
		CreateMentor(m Mentor) (Mentor, error)
		GetMentorByCode(code string) (Mentor, error)
		MentorCodeExists(code string) (bool, error)
		// QueryAllMentors returns all mentors, most recent first.
		QueryAllMentors() ([]Mentor, error)
		CountMentors() (int64, error)

		// CreateCandidate fails with ErrSeatNumberExists when the seat number is taken.
		CreateCandidate(c Candidate) (Candidate, error)
		GetCandidateByID(id string) (Candidate, error)
		SeatNumberExists(seat string) (bool, error)
		// FilterCandidates applies AND operation on available CandidateFilter fields,
		// most recent first. An empty filter returns all candidates.
		FilterCandidates(filter CandidateFilter) ([]Candidate, error)
		CountCandidates() (int64, error)
		SetCandidateHallTicket(id string, issued bool) (Candidate, error)
	}

	Service interface {
		RegisterSchool(ns NewSchool) (School, error)
		GetSchoolByCode(code string) (School, error)
		QueryAllSchools() ([]School, error)
		CountSchools() (int64, error)

		RegisterMentor(nm NewMentor) (Mentor, error)
		GetMentorByCode(code string) (Mentor, error)
		QueryAllMentors() ([]Mentor, error)
		CountMentors() (int64, error)

		RegisterCandidate(nc NewCandidate) (Candidate, error)
		GetCandidateByID(id string) (Candidate, error)
		FilterCandidates(filter CandidateFilter) ([]Candidate, error)
		CountCandidates() (int64, error)
		SetHallTicketIssued(id string, issued bool) (Candidate, error)
		OpenDocument(id string) (core.File, io.ReadCloser, error)
	}

	service struct {
		conf    *core.Config
		repo    Repository
		files   core.FileStore
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(conf *core.Config, repo Repository, files core.FileStore, mailSvc core.EmailService) Service {
	return &service{
		conf:    conf,
		repo:    repo,
		files:   files,
		mailSvc: mailSvc,
	}
}

// Schools

func (svc *service) RegisterSchool(ns NewSchool) (School, error) {
	code, err := newUniqueCode(SchoolCodePrefix, svc.repo.SchoolCodeExists)
	if err != nil {
		return School{}, errors.Wrap(err, "generating school code")
	}
	s := School{
		Code:             code,
		Name:             ns.Name,
		Address:          ns.Address,
		Contact:          ns.Contact,
		PrincipalName:    ns.PrincipalName,
		PrincipalContact: ns.PrincipalContact,
		Email:            ns.Email,
		CreatedAt:        time.Now().UTC(),
	}
	s, err = svc.repo.CreateSchool(s)
	if err != nil {
		return School{}, err
	}
	svc.sendSchoolWelcomeMail(s)
	return s, nil
}

func (svc *service) GetSchoolByCode(code string) (School, error) {
	return svc.repo.GetSchoolByCode(core.CleanString(code))
}

func (svc *service) QueryAllSchools() ([]School, error) {
	return svc.repo.QueryAllSchools()
}

func (svc *service) CountSchools() (int64, error) {
	return svc.repo.CountSchools()
}

// Mentors

func (svc *service) RegisterMentor(nm NewMentor) (Mentor, error) {
	// the referenced school code must have been issued
	exists, err := svc.repo.SchoolCodeExists(nm.SchoolCode)
	if err != nil {
		return Mentor{}, errors.Wrap(err, "checking school code")
	}
	if !exists {
		return Mentor{}, core.NewValidationError(
			ErrSchoolNotFound,
			core.FieldError{Field: "school_code", Error: errSchoolCodeUnknown},
		)
	}

	code, err := newUniqueCode(MentorCodePrefix, svc.repo.MentorCodeExists)
	if err != nil {
		return Mentor{}, errors.Wrap(err, "generating mentor code")
	}
	m := Mentor{
		Code:          code,
		SchoolCode:    nm.SchoolCode,
		Name:          nm.Name,
		Email:         nm.Email,
		Contact:       nm.Contact,
		Qualification: nm.Qualification,
		Experience:    nm.Experience,
		Subject:       nm.Subject,
		CreatedAt:     time.Now().UTC(),
	}
	m, err = svc.repo.CreateMentor(m)
	if err != nil {
		return Mentor{}, err
	}
	svc.sendMentorWelcomeMail(m)
	return m, nil
}

func (svc *service) GetMentorByCode(code string) (Mentor, error) {
	return svc.repo.GetMentorByCode(core.CleanString(code))
}

func (svc *service) QueryAllMentors() ([]Mentor, error) {
	return svc.repo.QueryAllMentors()
}

func (svc *service) CountMentors() (int64, error) {
	return svc.repo.CountMentors()
}

// Candidates

func (svc *service) RegisterCandidate(nc NewCandidate) (Candidate, error) {
	// hard cutoff, no matter how valid the rest of the submission is
	if NowFunc().After(svc.conf.Enroll.CandidateDeadline) {
		return Candidate{}, ErrDeadlinePassed
	}

	// the referenced mentor code must have been issued
	exists, err := svc.repo.MentorCodeExists(nc.MentorCode)
	if err != nil {
		return Candidate{}, errors.Wrap(err, "checking mentor code")
	}
	if !exists {
		return Candidate{}, core.NewValidationError(
			ErrMentorNotFound,
			core.FieldError{Field: "mentor_code", Error: errMentorCodeUnknown},
		)
	}

	if err = svc.checkUploadSizes(nc); err != nil {
		return Candidate{}, err
	}

	// documents are stored first; a failed insert must not leave orphans behind
	photo, err := svc.files.SaveFile(nc.Photo.Filename, nc.Photo.ContentType, nc.Photo.Content)
	if err != nil {
		return Candidate{}, errors.Wrap(err, "storing photo")
	}
	signature, err := svc.files.SaveFile(nc.Signature.Filename, nc.Signature.ContentType, nc.Signature.Content)
	if err != nil {
		_ = svc.files.DeleteFile(photo.ID)
		return Candidate{}, errors.Wrap(err, "storing signature")
	}

	seat, err := newUniqueSeatNumber(svc.conf.Enroll.CandidateDeadline.Year(), svc.repo.SeatNumberExists)
	if err != nil {
		svc.deleteDocuments(photo.ID, signature.ID)
		return Candidate{}, errors.Wrap(err, "generating seat number")
	}

	c := Candidate{
		ID:          uuid.New().String(),
		SeatNumber:  seat,
		MentorCode:  nc.MentorCode,
		Name:        nc.Name,
		DateOfBirth: nc.DateOfBirth,
		Gender:      nc.Gender,
		Email:       nc.Email,
		Contact:     nc.Contact,
		Address:     nc.Address,
		GradeLevel:  nc.GradeLevel,
		SchoolName:  nc.SchoolName,
		PhotoID:     photo.ID,
		SignatureID: signature.ID,
		CreatedAt:   time.Now().UTC(),
	}
	c, err = svc.repo.CreateCandidate(c)
	if err != nil {
		svc.deleteDocuments(photo.ID, signature.ID)
		return Candidate{}, err
	}
	svc.sendCandidateConfirmationMail(c)
	return c, nil
}

func (svc *service) GetCandidateByID(id string) (Candidate, error) {
	return svc.repo.GetCandidateByID(id)
}

func (svc *service) FilterCandidates(filter CandidateFilter) ([]Candidate, error) {
	return svc.repo.FilterCandidates(filter)
}

func (svc *service) CountCandidates() (int64, error) {
	return svc.repo.CountCandidates()
}

func (svc *service) SetHallTicketIssued(id string, issued bool) (Candidate, error) {
	return svc.repo.SetCandidateHallTicket(id, issued)
}

func (svc *service) OpenDocument(id string) (core.File, io.ReadCloser, error) {
	return svc.files.OpenFile(id)
}

func (svc *service) checkUploadSizes(nc NewCandidate) error {
	maxSize := svc.conf.Enroll.MaxUploadSize
	var flds []core.FieldError
	if nc.Photo == nil {
		flds = append(flds, core.FieldError{Field: "photo", Error: photoRequiredText})
	}
	if nc.Signature == nil {
		flds = append(flds, core.FieldError{Field: "signature", Error: signatureRequiredText})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	if nc.Photo.Size > maxSize {
		flds = append(flds, core.FieldError{Field: "photo", Error: errDocTooBig})
	}
	if nc.Signature.Size > maxSize {
		flds = append(flds, core.FieldError{Field: "signature", Error: errDocTooBig})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (svc *service) deleteDocuments(ids ...string) {
	for _, id := range ids {
		_ = svc.files.DeleteFile(id)
	}
}

// Mails

func (svc *service) sendSchoolWelcomeMail(s School) {
	if s.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: s.Name, Address: s.Email}},
		Subject: "School Registration Confirmed",
		BodyStr: fmt.Sprintf(
			"Dear %s,\r\n\r\n"+
				"Your school has been registered for the %s program.\r\n"+
				"Your school code is: %s\r\n\r\n"+
				"Share this code with your mentors; they will need it to register.",
			s.Name, svc.conf.AppName, s.Code,
		),
	})
}

func (svc *service) sendMentorWelcomeMail(m Mentor) {
	if m.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: m.Name, Address: m.Email}},
		Subject: "Mentor Registration Confirmed",
		BodyStr: fmt.Sprintf(
			"Dear %s,\r\n\r\n"+
				"You have been registered as a mentor for the %s program.\r\n"+
				"Your mentor code is: %s\r\n\r\n"+
				"Share this code with your candidates; they will need it to register.",
			m.Name, svc.conf.AppName, m.Code,
		),
	})
}

func (svc *service) sendCandidateConfirmationMail(c Candidate) {
	if c.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: c.Name, Address: c.Email}},
		Subject: "Candidate Registration Confirmed",
		BodyStr: fmt.Sprintf(
			"Dear %s,\r\n\r\n"+
				"Your registration for the %s program has been received.\r\n"+
				"Your seat number is: %s\r\n\r\n"+
				"Keep it safe; you will need it on exam day and to collect your hall ticket.",
			c.Name, svc.conf.AppName, c.SeatNumber,
		),
	})
}
