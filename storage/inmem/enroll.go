package inmemdb

import (
	"strings"

	"github.com/trezcool/sayansi/core/enroll"
)

type enrollRepository struct {
	schools    *schoolTable
	mentors    *mentorTable
	candidates *candidateTable
}

var _ enroll.Repository = (*enrollRepository)(nil)

func NewEnrollRepository(db *DB) enroll.Repository {
	return &enrollRepository{
		schools:    db.schools,
		mentors:    db.mentors,
		candidates: db.candidates,
	}
}

// Schools

func (repo *enrollRepository) CreateSchool(s enroll.School) (enroll.School, error) {
	repo.schools.mutex.Lock()
	defer repo.schools.mutex.Unlock()

	for _, row := range repo.schools.table {
		if row.Code == s.Code {
			return enroll.School{}, enroll.ErrSchoolCodeExists
		}
	}
	repo.schools.table = append(repo.schools.table, s)
	return s, nil
}

func (repo *enrollRepository) GetSchoolByCode(code string) (enroll.School, error) {
	repo.schools.mutex.RLock()
	defer repo.schools.mutex.RUnlock()

	for _, s := range repo.schools.table {
		if s.Code == code {
			return s, nil
		}
	}
	return enroll.School{}, enroll.ErrSchoolNotFound
}

func (repo *enrollRepository) SchoolCodeExists(code string) (bool, error) {
	_, err := repo.GetSchoolByCode(code)
	if err == enroll.ErrSchoolNotFound {
		return false, nil
	}
	return err == nil, err
}

func (repo *enrollRepository) QueryAllSchools() ([]enroll.School, error) {
	repo.schools.mutex.RLock()
	defer repo.schools.mutex.RUnlock()

	// most recent first
	schools := make([]enroll.School, 0, len(repo.schools.table))
	for i := len(repo.schools.table) - 1; i >= 0; i-- {
		schools = append(schools, repo.schools.table[i])
	}
	return schools, nil
}

func (repo *enrollRepository) CountSchools() (int64, error) {
	repo.schools.mutex.RLock()
	defer repo.schools.mutex.RUnlock()
	return int64(len(repo.schools.table)), nil
}

// Mentors

func (repo *enrollRepository) CreateMentor(m enroll.Mentor) (enroll.Mentor, error) {
	repo.mentors.mutex.Lock()
	defer repo.mentors.mutex.Unlock()

	for _, row := range repo.mentors.table {
		if row.Code == m.Code {
			return enroll.Mentor{}, enroll.ErrMentorCodeExists
		}
	}
	repo.mentors.table = append(repo.mentors.table, m)
	return m, nil
}

func (repo *enrollRepository) GetMentorByCode(code string) (enroll.Mentor, error) {
	repo.mentors.mutex.RLock()
	defer repo.mentors.mutex.RUnlock()

	for _, m := range repo.mentors.table {
		if m.Code == code {
			return m, nil
		}
	}
	return enroll.Mentor{}, enroll.ErrMentorNotFound
}

func (repo *enrollRepository) MentorCodeExists(code string) (bool, error) {
	_, err := repo.GetMentorByCode(code)
	if err == enroll.ErrMentorNotFound {
		return false, nil
	}
	return err == nil, err
}

func (repo *enrollRepository) QueryAllMentors() ([]enroll.Mentor, error) {
	repo.mentors.mutex.RLock()
	defer repo.mentors.mutex.RUnlock()

	// most recent first
	mentors := make([]enroll.Mentor, 0, len(repo.mentors.table))
	for i := len(repo.mentors.table) - 1; i >= 0; i-- {
		mentors = append(mentors, repo.mentors.table[i])
	}
	return mentors, nil
}

func (repo *enrollRepository) CountMentors() (int64, error) {
	repo.mentors.mutex.RLock()
	defer repo.mentors.mutex.RUnlock()
	return int64(len(repo.mentors.table)), nil
}

// Candidates

func (repo *enrollRepository) CreateCandidate(c enroll.Candidate) (enroll.Candidate, error) {
	repo.candidates.mutex.Lock()
	defer repo.candidates.mutex.Unlock()

	for _, row := range repo.candidates.table {
		if row.SeatNumber == c.SeatNumber {
			return enroll.Candidate{}, enroll.ErrSeatNumberExists
		}
	}
	repo.candidates.table = append(repo.candidates.table, c)
	return c, nil
}

func (repo *enrollRepository) GetCandidateByID(id string) (enroll.Candidate, error) {
	repo.candidates.mutex.RLock()
	defer repo.candidates.mutex.RUnlock()

	for _, c := range repo.candidates.table {
		if c.ID == id {
			return c, nil
		}
	}
	return enroll.Candidate{}, enroll.ErrCandidateNotFound
}

func (repo *enrollRepository) CountCandidates() (int64, error) {
	repo.candidates.mutex.RLock()
	defer repo.candidates.mutex.RUnlock()
	return int64(len(repo.candidates.table)), nil
}

func (repo *enrollRepository) SeatNumberExists(seat string) (bool, error) {
	repo.candidates.mutex.RLock()
	defer repo.candidates.mutex.RUnlock()

	for _, c := range repo.candidates.table {
		if c.SeatNumber == seat {
			return true, nil
		}
	}
	return false, nil
}

func (repo *enrollRepository) FilterCandidates(filter enroll.CandidateFilter) ([]enroll.Candidate, error) {
	repo.candidates.mutex.RLock()
	defer repo.candidates.mutex.RUnlock()

	// most recent first
	candidates := make([]enroll.Candidate, 0, len(repo.candidates.table))
	for i := len(repo.candidates.table) - 1; i >= 0; i-- {
		if c := repo.candidates.table[i]; matchesFilter(c, filter) {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

func (repo *enrollRepository) SetCandidateHallTicket(id string, issued bool) (enroll.Candidate, error) {
	repo.candidates.mutex.Lock()
	defer repo.candidates.mutex.Unlock()

	for i, c := range repo.candidates.table {
		if c.ID == id {
			repo.candidates.table[i].HallTicketIssued = issued
			return repo.candidates.table[i], nil
		}
	}
	return enroll.Candidate{}, enroll.ErrCandidateNotFound
}

func matchesFilter(c enroll.Candidate, filter enroll.CandidateFilter) bool {
	if filter.IsEmpty() {
		return true
	}
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !(strings.Contains(strings.ToLower(c.Name), search) ||
			strings.Contains(strings.ToLower(c.SeatNumber), search) ||
			strings.Contains(strings.ToLower(c.Email), search)) {
			return false
		}
	}
	if filter.GradeLevel != "" && c.GradeLevel != filter.GradeLevel {
		return false
	}
	if filter.MentorCode != "" && c.MentorCode != filter.MentorCode {
		return false
	}
	if filter.HallTicketIssued != nil && c.HallTicketIssued != *filter.HallTicketIssued {
		return false
	}
	return true
}
