package jobs

import (
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/vmihailenco/msgpack/v5"
)

// History persists finished jobs in a LevelDB directory. Keys are job ids, which are time
// ordered, so iteration runs oldest to newest.
type History struct {
	db *leveldb.DB
}

// OpenHistory opens or creates the history at dir.
func OpenHistory(dir string) (*History, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("opening job history %s: %w", dir, err)
	}
	return &History{db: db}, nil
}

// Put stores or replaces a job record.
func (h *History) Put(job Job) error {
	data, err := msgpack.Marshal(&job)
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.ID, err)
	}
	return h.db.Put([]byte(job.ID), data, nil)
}

// Get returns a stored job record.
func (h *History) Get(id string) (Job, error) {
	data, err := h.db.Get([]byte(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, err
	}
	var job Job
	if err := msgpack.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("decoding job %s: %w", id, err)
	}
	return job, nil
}

// List returns up to limit records, newest first. A limit of zero returns all.
func (h *History) List(limit int) ([]Job, error) {
	iter := h.db.NewIterator(nil, nil)
	defer iter.Release()

	var out []Job
	for ok := iter.Last(); ok; ok = iter.Prev() {
		var job Job
		if err := msgpack.Unmarshal(iter.Value(), &job); err != nil {
			return nil, fmt.Errorf("decoding job %s: %w", iter.Key(), err)
		}
		out = append(out, job)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, iter.Error()
}

// Close releases the database.
func (h *History) Close() error {
	return h.db.Close()
}
