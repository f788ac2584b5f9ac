package inmemdb

import (
	"bytes"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/sayansi/core"
)

type fileStore struct {
	db *fileTable
}

var _ core.FileStore = (*fileStore)(nil)

func NewFileStore(db *DB) core.FileStore {
	return &fileStore{db: db.files}
}

func (store *fileStore) SaveFile(name, contentType string, r io.Reader) (core.File, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return core.File{}, errors.Wrap(err, "reading file content")
	}

	f := core.File{
		ID:          uuid.New().String(),
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(content)),
		CreatedAt:   time.Now().UTC(),
	}

	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()
	store.db.table[f.ID] = &fileRow{info: f, content: content}
	return f, nil
}

func (store *fileStore) OpenFile(id string) (core.File, io.ReadCloser, error) {
	store.db.mutex.RLock()
	defer store.db.mutex.RUnlock()

	row, ok := store.db.table[id]
	if !ok {
		return core.File{}, nil, core.ErrFileNotFound
	}
	return row.info, io.NopCloser(bytes.NewReader(row.content)), nil
}

func (store *fileStore) DeleteFile(id string) error {
	store.db.mutex.Lock()
	defer store.db.mutex.Unlock()

	if _, ok := store.db.table[id]; !ok {
		return core.ErrFileNotFound
	}
	delete(store.db.table, id)
	return nil
}
