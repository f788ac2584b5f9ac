package mongodb

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/sayansi/core"
)

// fileStore keeps uploaded documents in a GridFS bucket.
type fileStore struct {
	bucket *gridfs.Bucket
	files  *mongo.Collection // the bucket's .files metadata collection
}

var _ core.FileStore = (*fileStore)(nil)

func NewFileStore(db *mongo.Database) (core.FileStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(documentsBucket))
	if err != nil {
		return nil, errors.Wrap(err, "creating GridFS bucket")
	}
	return &fileStore{
		bucket: bucket,
		files:  db.Collection(documentsBucket + ".files"),
	}, nil
}

type fileDoc struct {
	ID         string    `bson:"_id"`
	Length     int64     `bson:"length"`
	UploadDate time.Time `bson:"uploadDate"`
	Filename   string    `bson:"filename"`
	Metadata   struct {
		ContentType string `bson:"content_type"`
	} `bson:"metadata"`
}

func (doc fileDoc) file() core.File {
	return core.File{
		ID:          doc.ID,
		Name:        doc.Filename,
		ContentType: doc.Metadata.ContentType,
		Size:        doc.Length,
		CreatedAt:   doc.UploadDate.UTC(),
	}
}

func (store *fileStore) SaveFile(name, contentType string, r io.Reader) (core.File, error) {
	id := uuid.New().String()
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	if err := store.bucket.UploadFromStreamWithID(id, name, r, opts); err != nil {
		return core.File{}, errors.Wrap(err, "uploading file")
	}
	return store.getFile(id)
}

func (store *fileStore) OpenFile(id string) (core.File, io.ReadCloser, error) {
	f, err := store.getFile(id)
	if err != nil {
		return core.File{}, nil, err
	}
	stream, err := store.bucket.OpenDownloadStream(id)
	if err != nil {
		return core.File{}, nil, errors.Wrap(err, "opening download stream")
	}
	return f, stream, nil
}

func (store *fileStore) DeleteFile(id string) error {
	if err := store.bucket.Delete(id); err != nil {
		if err == gridfs.ErrFileNotFound {
			return core.ErrFileNotFound
		}
		return errors.Wrap(err, "deleting file")
	}
	return nil
}

func (store *fileStore) getFile(id string) (core.File, error) {
	ctx, cancel := opCtx()
	defer cancel()

	var doc fileDoc
	if err := store.files.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return core.File{}, core.ErrFileNotFound
		}
		return core.File{}, errors.Wrap(err, "finding file")
	}
	return doc.file(), nil
}
