package mongodb

import (
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sayansi/core/registration"
)

type registrationDoc struct {
	ID            string    `bson:"_id"`
	StudentName   string    `bson:"student_name"`
	Email         string    `bson:"email"`
	Phone         string    `bson:"phone"`
	GradeLevel    string    `bson:"grade_level"`
	SchoolName    string    `bson:"school_name"`
	ParentName    string    `bson:"parent_name"`
	ParentPhone   string    `bson:"parent_phone"`
	Address       string    `bson:"address"`
	ExamType      string    `bson:"exam_type"`
	PaymentStatus string    `bson:"payment_status"`
	CreatedAt     time.Time `bson:"created_at"`
}

func newRegistrationDoc(r registration.Registration) registrationDoc {
	return registrationDoc{
		ID:            r.ID,
		StudentName:   r.StudentName,
		Email:         r.Email,
		Phone:         r.Phone,
		GradeLevel:    r.GradeLevel,
		SchoolName:    r.SchoolName,
		ParentName:    r.ParentName,
		ParentPhone:   r.ParentPhone,
		Address:       r.Address,
		ExamType:      r.ExamType,
		PaymentStatus: r.PaymentStatus,
		CreatedAt:     r.CreatedAt,
	}
}

func (doc registrationDoc) registration() registration.Registration {
	return registration.Registration{
		ID:            doc.ID,
		StudentName:   doc.StudentName,
		Email:         doc.Email,
		Phone:         doc.Phone,
		GradeLevel:    doc.GradeLevel,
		SchoolName:    doc.SchoolName,
		ParentName:    doc.ParentName,
		ParentPhone:   doc.ParentPhone,
		Address:       doc.Address,
		ExamType:      doc.ExamType,
		PaymentStatus: doc.PaymentStatus,
		CreatedAt:     doc.CreatedAt,
	}
}

type registrationRepository struct {
	coll *mongo.Collection
}

var _ registration.Repository = (*registrationRepository)(nil)

func NewRegistrationRepository(db *mongo.Database) registration.Repository {
	return &registrationRepository{coll: db.Collection(registrationsCollection)}
}

func (repo *registrationRepository) CreateRegistration(r registration.Registration) (registration.Registration, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, newRegistrationDoc(r)); err != nil {
		return registration.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return r, nil
}

func (repo *registrationRepository) QueryAllRegistrations() ([]registration.Registration, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := repo.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	var docs []registrationDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding registrations")
	}

	regs := make([]registration.Registration, 0, len(docs))
	for _, doc := range docs {
		regs = append(regs, doc.registration())
	}
	return regs, nil
}

func (repo *registrationRepository) GetRegistrationByID(id string) (registration.Registration, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc registrationDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return registration.Registration{}, registration.ErrNotFound
		}
		return registration.Registration{}, errors.Wrap(err, "finding registration")
	}
	return doc.registration(), nil
}

func (repo *registrationRepository) CountRegistrations() (int64, error) {
	ctx, cancel := opCtx()
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "counting registrations")
}
