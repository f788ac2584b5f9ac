package mongodb

import (
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sayansi/core/contact"
)

type contactDoc struct {
	ID         string    `bson:"_id"`
	FirstName  string    `bson:"first_name"`
	LastName   string    `bson:"last_name"`
	Email      string    `bson:"email"`
	GradeLevel string    `bson:"grade_level"`
	Message    string    `bson:"message"`
	CreatedAt  time.Time `bson:"created_at"`
}

func newContactDoc(c contact.Contact) contactDoc {
	return contactDoc{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Email:      c.Email,
		GradeLevel: c.GradeLevel,
		Message:    c.Message,
		CreatedAt:  c.CreatedAt,
	}
}

func (doc contactDoc) contact() contact.Contact {
	return contact.Contact{
		ID:         doc.ID,
		FirstName:  doc.FirstName,
		LastName:   doc.LastName,
		Email:      doc.Email,
		GradeLevel: doc.GradeLevel,
		Message:    doc.Message,
		CreatedAt:  doc.CreatedAt,
	}
}

type contactRepository struct {
	coll *mongo.Collection
}

var _ contact.Repository = (*contactRepository)(nil)

func NewContactRepository(db *mongo.Database) contact.Repository {
	return &contactRepository{coll: db.Collection(contactsCollection)}
}

func (repo *contactRepository) CreateContact(c contact.Contact) (contact.Contact, error) {
	ctx, cancel := opCtx()
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, newContactDoc(c)); err != nil {
		return contact.Contact{}, errors.Wrap(err, "inserting contact")
	}
	return c, nil
}

func (repo *contactRepository) QueryAllContacts() ([]contact.Contact, error) {
	ctx, cancel := opCtx()
	defer cancel()

	cur, err := repo.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying contacts")
	}
	var docs []contactDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding contacts")
	}

	contacts := make([]contact.Contact, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, doc.contact())
	}
	return contacts, nil
}

func (repo *contactRepository) CountContacts() (int64, error) {
	ctx, cancel := opCtx()
	defer cancel()

	n, err := repo.coll.CountDocuments(ctx, bson.M{})
	return n, errors.Wrap(err, "counting contacts")
}
