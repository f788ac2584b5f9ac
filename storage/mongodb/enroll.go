package mongodb

import (
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sayansi/core/enroll"
)

type (
	addressDoc struct {
		Street string `bson:"street"`
		City   string `bson:"city"`
		State  string `bson:"state"`
		PIN    string `bson:"pin"`
	}

	schoolDoc struct {
		Code             string     `bson:"_id"`
		Name             string     `bson:"name"`
		Address          addressDoc `bson:"address"`
		Contact          string     `bson:"contact"`
		PrincipalName    string     `bson:"principal_name"`
		PrincipalContact string     `bson:"principal_contact"`
		Email            string     `bson:"email,omitempty"`
		CreatedAt        time.Time  `bson:"created_at"`
	}

	mentorDoc struct {
		Code          string    `bson:"_id"`
		SchoolCode    string    `bson:"school_code"`
		Name          string    `bson:"name"`
		Email         string    `bson:"email,omitempty"`
		Contact       string    `bson:"contact"`
		Qualification string    `bson:"qualification"`
		Experience    string    `bson:"experience"`
		Subject       string    `bson:"subject"`
		CreatedAt     time.Time `bson:"created_at"`
	}

	candidateDoc struct {
		ID               string     `bson:"_id"`
		SeatNumber       string     `bson:"seat_number"`
		MentorCode       string     `bson:"mentor_code"`
		Name             string     `bson:"name"`
		DateOfBirth      string     `bson:"date_of_birth"`
		Gender           string     `bson:"gender"`
		Email            string     `bson:"email,omitempty"`
		Contact          string     `bson:"contact"`
		Address          addressDoc `bson:"address"`
		GradeLevel       string     `bson:"grade_level"`
		SchoolName       string     `bson:"school_name"`
		PhotoID          string     `bson:"photo_id"`
		SignatureID      string     `bson:"signature_id"`
		HallTicketIssued bool       `bson:"hall_ticket_issued"`
		CreatedAt        time.Time  `bson:"created_at"`
	}
)

func newAddressDoc(a enroll.Address) addressDoc {
	return addressDoc{Street: a.Street, City: a.City, State: a.State, PIN: a.PIN}
}

func (doc addressDoc) address() enroll.Address {
	return enroll.Address{Street: doc.Street, City: doc.City, State: doc.State, PIN: doc.PIN}
}

func newSchoolDoc(s enroll.School) schoolDoc {
	return schoolDoc{
		Code:             s.Code,
		Name:             s.Name,
		Address:          newAddressDoc(s.Address),
		Contact:          s.Contact,
		PrincipalName:    s.PrincipalName,
		PrincipalContact: s.PrincipalContact,
		Email:            s.Email,
		CreatedAt:        s.CreatedAt,
	}
}

func (doc schoolDoc) school() enroll.School {
	return enroll.School{
		Code:             doc.Code,
		Name:             doc.Name,
		Address:          doc.Address.address(),
		Contact:          doc.Contact,
		PrincipalName:    doc.PrincipalName,
		PrincipalContact: doc.PrincipalContact,
		Email:            doc.Email,
		CreatedAt:        doc.CreatedAt,
	}
}

func newMentorDoc(m enroll.Mentor) mentorDoc {
	return mentorDoc{
		Code:          m.Code,
		SchoolCode:    m.SchoolCode,
		Name:          m.Name,
		Email:         m.Email,
		Contact:       m.Contact,
		Qualification: m.Qualification,
		Experience:    m.Experience,
		Subject:       m.Subject,
		CreatedAt:     m.CreatedAt,
	}
}

func (doc mentorDoc) mentor() enroll.Mentor {
	return enroll.Mentor{
		Code:          doc.Code,
		SchoolCode:    doc.SchoolCode,
		Name:          doc.Name,
		Email:         doc.Email,
		Contact:       doc.Contact,
		Qualification: doc.Qualification,
		Experience:    doc.Experience,
		Subject:       doc.Subject,
		CreatedAt:     doc.CreatedAt,
	}
}

func newCandidateDoc(c enroll.Candidate) candidateDoc {
	return candidateDoc{
		ID:               c.ID,
		SeatNumber:       c.SeatNumber,
		MentorCode:       c.MentorCode,
		Name:             c.Name,
		DateOfBirth:      c.DateOfBirth,
		Gender:           c.Gender,
		Email:            c.Email,
		Contact:          c.Contact,
		Address:          newAddressDoc(c.Address),
		GradeLevel:       c.GradeLevel,
		SchoolName:       c.SchoolName,
		PhotoID:          c.PhotoID,
		SignatureID:      c.SignatureID,
		HallTicketIssued: c.HallTicketIssued,
		CreatedAt:        c.CreatedAt,
	}
}

func (doc candidateDoc) candidate() enroll.Candidate {
	return enroll.Candidate{
		ID:               doc.ID,
		SeatNumber:       doc.SeatNumber,
		MentorCode:       doc.MentorCode,
		Name:             doc.Name,
		DateOfBirth:      doc.DateOfBirth,
		Gender:           doc.Gender,
		Email:            doc.Email,
		Contact:          doc.Contact,
		Address:          doc.Address.address(),
		GradeLevel:       doc.GradeLevel,
		SchoolName:       doc.SchoolName,
		PhotoID:          doc.PhotoID,
		SignatureID:      doc.SignatureID,
		HallTicketIssued: doc.HallTicketIssued,
		CreatedAt:        doc.CreatedAt,
	}
}

type enrollRepository struct {
	schools    *mongo.Collection
	mentors    *mongo.Collection
	candidates *mongo.Collection
}

var _ enroll.Repository = (*enrollRepository)(nil)

func NewEnrollRepository(db *mongo.Database) enroll.Repository {
	return &enrollRepository{
		schools:    db.Collection(schoolsCollection),
		mentors:    db.Collection(mentorsCollection),
		candidates: db.Collection(candidatesCollection),
	}
}

func exists(coll *mongo.Collection, filter bson.M) (bool, error) {
	ctx, cancel := opCtx()
	defer cancel()

	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "counting documents")
	}
	return n > 0, nil
}

// Schools

func (repo *enrollRepository) CreateSchool(s enroll.School) (enroll.School, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := repo.schools.InsertOne(ctx, newSchoolDoc(s)); err != nil {
		if isDupErr(err) {
			return enroll.School{}, enroll.ErrSchoolCodeExists
		}
		return enroll.School{}, errors.Wrap(err, "inserting school")
	}
	return s, nil
}

func (repo *enrollRepository) GetSchoolByCode(code string) (enroll.School, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc schoolDoc
	if err := repo.schools.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return enroll.School{}, enroll.ErrSchoolNotFound
		}
		return enroll.School{}, errors.Wrap(err, "finding school")
	}
	return doc.school(), nil
}

func (repo *enrollRepository) SchoolCodeExists(code string) (bool, error) {
	return exists(repo.schools, bson.M{"_id": code})
}

func (repo *enrollRepository) QueryAllSchools() ([]enroll.School, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := repo.schools.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying schools")
	}
	var docs []schoolDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding schools")
	}

	schools := make([]enroll.School, 0, len(docs))
	for _, doc := range docs {
		schools = append(schools, doc.school())
	}
	return schools, nil
}

func (repo *enrollRepository) CountSchools() (int64, error) {
	ctx, cancel := opCtx()
	defer cancel()

	n, err := repo.schools.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "counting schools")
}

// Mentors

func (repo *enrollRepository) CreateMentor(m enroll.Mentor) (enroll.Mentor, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := repo.mentors.InsertOne(ctx, newMentorDoc(m)); err != nil {
		if isDupErr(err) {
			return enroll.Mentor{}, enroll.ErrMentorCodeExists
		}
		return enroll.Mentor{}, errors.Wrap(err, "inserting mentor")
	}
	return m, nil
}

func (repo *enrollRepository) GetMentorByCode(code string) (enroll.Mentor, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc mentorDoc
	if err := repo.mentors.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return enroll.Mentor{}, enroll.ErrMentorNotFound
		}
		return enroll.Mentor{}, errors.Wrap(err, "finding mentor")
	}
	return doc.mentor(), nil
}

func (repo *enrollRepository) MentorCodeExists(code string) (bool, error) {
	return exists(repo.mentors, bson.M{"_id": code})
}

func (repo *enrollRepository) QueryAllMentors() ([]enroll.Mentor, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := repo.mentors.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying mentors")
	}
	var docs []mentorDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding mentors")
	}

	mentors := make([]enroll.Mentor, 0, len(docs))
	for _, doc := range docs {
		mentors = append(mentors, doc.mentor())
	}
	return mentors, nil
}

func (repo *enrollRepository) CountMentors() (int64, error) {
	ctx, cancel := opCtx()
	defer cancel()

	n, err := repo.mentors.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "counting mentors")
}

// Candidates

func (repo *enrollRepository) CreateCandidate(c enroll.Candidate) (enroll.Candidate, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := repo.candidates.InsertOne(ctx, newCandidateDoc(c)); err != nil {
		if isDupErr(err) {
			return enroll.Candidate{}, enroll.ErrSeatNumberExists
		}
		return enroll.Candidate{}, errors.Wrap(err, "inserting candidate")
	}
	return c, nil
}

func (repo *enrollRepository) GetCandidateByID(id string) (enroll.Candidate, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc candidateDoc
	if err := repo.candidates.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return enroll.Candidate{}, enroll.ErrCandidateNotFound
		}
		return enroll.Candidate{}, errors.Wrap(err, "finding candidate")
	}
	return doc.candidate(), nil
}

func (repo *enrollRepository) CountCandidates() (int64, error) {
	ctx, cancel := opCtx()
	defer cancel()

	n, err := repo.candidates.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "counting candidates")
}

func (repo *enrollRepository) SeatNumberExists(seat string) (bool, error) {
	return exists(repo.candidates, bson.M{"seat_number": seat})
}

func (repo *enrollRepository) FilterCandidates(filter enroll.CandidateFilter) ([]enroll.Candidate, error) {
	ctx, cancel := opCtx()
	defer cancel()

	query := bson.M{}
	if filter.Search != "" {
		re := primitive.Regex{Pattern: filter.Search, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": re},
			bson.M{"seat_number": re},
			bson.M{"email": re},
		}
	}
	if filter.GradeLevel != "" {
		query["grade_level"] = filter.GradeLevel
	}
	if filter.MentorCode != "" {
		query["mentor_code"] = filter.MentorCode
	}
	if filter.HallTicketIssued != nil {
		query["hall_ticket_issued"] = *filter.HallTicketIssued
	}

	cur, err := repo.candidates.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying candidates")
	}
	var docs []candidateDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding candidates")
	}

	candidates := make([]enroll.Candidate, 0, len(docs))
	for _, doc := range docs {
		candidates = append(candidates, doc.candidate())
	}
	return candidates, nil
}

func (repo *enrollRepository) SetCandidateHallTicket(id string, issued bool) (enroll.Candidate, error) {
	ctx, cancel := opCtx()
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"hall_ticket_issued": issued}}

	var doc candidateDoc
	if err := repo.candidates.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return enroll.Candidate{}, enroll.ErrCandidateNotFound
		}
		return enroll.Candidate{}, errors.Wrap(err, "updating candidate")
	}
	return doc.candidate(), nil
}
