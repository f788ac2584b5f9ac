package inmemdb

import (
	"sync"

	"github.com/trezcool/sayansi/core"
	"github.com/trezcool/sayansi/core/contact"
	"github.com/trezcool/sayansi/core/enroll"
	"github.com/trezcool/sayansi/core/registration"
	"github.com/trezcool/sayansi/core/user"
)

// DB is the development/test storage: a set of mutex-guarded tables.
// The same uniqueness rules as the document-store variant are enforced in code
// so both adapters behave identically.
type (
	DB struct {
		users         *userTable
		contacts      *contactTable
		registrations *registrationTable
		schools       *schoolTable
		mentors       *mentorTable
		candidates    *candidateTable
		files         *fileTable
	}

	userTable struct {
		table map[string]*user.User
		mutex sync.RWMutex
	}

	contactTable struct {
		table []contact.Contact // append-only, insertion order
		mutex sync.RWMutex
	}

	registrationTable struct {
		table []registration.Registration
		mutex sync.RWMutex
	}

	schoolTable struct {
		table []enroll.School
		mutex sync.RWMutex
	}

	mentorTable struct {
		table []enroll.Mentor
		mutex sync.RWMutex
	}

	candidateTable struct {
		table []enroll.Candidate
		mutex sync.RWMutex
	}

	fileTable struct {
		table map[string]*fileRow
		mutex sync.RWMutex
	}

	fileRow struct {
		info    core.File
		content []byte
	}
)

func Open() (*DB, error) {
	db := &DB{
		users:         &userTable{table: make(map[string]*user.User)},
		contacts:      &contactTable{},
		registrations: &registrationTable{},
		schools:       &schoolTable{},
		mentors:       &mentorTable{},
		candidates:    &candidateTable{},
		files:         &fileTable{table: make(map[string]*fileRow)},
	}
	return db, nil
}
