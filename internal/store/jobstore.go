package store

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"vidtrack/internal/config"
	"vidtrack/internal/model"
)

const (
	jobKeyPrefix  = "job:"
	userKeyPrefix = "user:"
	maxConflicts  = 3
)

// JobStore keeps job records keyed by job id, plus a per-user index ordered
// by request timestamp (newest first) and then job id.
type JobStore struct {
	db       *badger.DB
	pageSize int
	logger   *logrus.Entry
}

func NewJobStore(conf *config.StoreConfig, logger *logrus.Entry) (*JobStore, error) {
	opts := badger.DefaultOptions(conf.Dir)
	if conf.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	db, err := badger.Open(opts.WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("open job store: %w", err)
	}
	pageSize := conf.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return &JobStore{
		db:       db,
		pageSize: pageSize,
		logger:   logger.WithField("component", "jobstore"),
	}, nil
}

func (s *JobStore) Close() error {
	return s.db.Close()
}

func jobKey(jobId string) []byte {
	return []byte(jobKeyPrefix + jobId)
}

// userPrefix hex-encodes the user id so no id can reach into another user's key range.
func userPrefix(userId string) []byte {
	return []byte(userKeyPrefix + hex.EncodeToString([]byte(userId)) + "\x00")
}

// indexKey sorts ascending as (request_timestamp desc, job_id asc) within a user.
func indexKey(userId string, requestTimestamp uint64, jobId string) []byte {
	inverted := math.MaxUint64 - requestTimestamp
	return append(userPrefix(userId), fmt.Sprintf("%016x%s", inverted, jobId)...)
}

func getJob(txn *badger.Txn, jobId string) (*model.JobRecord, error) {
	item, err := txn.Get(jobKey(jobId))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", model.ErrNotFound, jobId)
		}
		return nil, err
	}
	job := &model.JobRecord{}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, job)
	})
	if err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobId, err)
	}
	return job, nil
}

func setJob(txn *badger.Txn, job *model.JobRecord) error {
	val, err := json.Marshal(job)
	if err != nil {
		return err
	}
	if err := txn.Set(jobKey(job.JobId), val); err != nil {
		return err
	}
	return txn.Set(indexKey(job.UserId, job.RequestTimestamp, job.JobId), []byte(job.JobId))
}

func (s *JobStore) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < maxConflicts; i++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debugf("transaction conflict, retry %d", i+1)
	}
	return err
}

// Put writes the record, replacing any previous record with the same job id.
func (s *JobStore) Put(job *model.JobRecord) error {
	return s.update(func(txn *badger.Txn) error {
		old, err := getJob(txn, job.JobId)
		if err == nil {
			if err := txn.Delete(indexKey(old.UserId, old.RequestTimestamp, old.JobId)); err != nil {
				return err
			}
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}
		return setJob(txn, job)
	})
}

func (s *JobStore) Get(jobId string) (*model.JobRecord, error) {
	var job *model.JobRecord
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		job, err = getJob(txn, jobId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (s *JobStore) modify(jobId string, fn func(job *model.JobRecord)) error {
	return s.update(func(txn *badger.Txn) error {
		job, err := getJob(txn, jobId)
		if err != nil {
			return err
		}
		fn(job)
		return setJob(txn, job)
	})
}

// UpdateStatus overwrites the status unconditionally and returns the one it replaced.
func (s *JobStore) UpdateStatus(jobId string, status model.JobStatus) (model.JobStatus, error) {
	var previous model.JobStatus
	err := s.modify(jobId, func(job *model.JobRecord) {
		previous = job.Status
		job.Status = status
	})
	return previous, err
}

func (s *JobStore) UpdateSummary(jobId string, summary model.TrackingSummary) error {
	return s.modify(jobId, func(job *model.JobRecord) {
		job.TrackingSummary = &summary
	})
}

func (s *JobStore) UpdateMetadata(jobId string, metadata model.VideoMetadata) error {
	return s.modify(jobId, func(job *model.JobRecord) {
		job.VideoMetadata = &metadata
	})
}

func (s *JobStore) Delete(jobId string) error {
	return s.update(func(txn *badger.Txn) error {
		job, err := getJob(txn, jobId)
		if err != nil {
			return err
		}
		if err := txn.Delete(indexKey(job.UserId, job.RequestTimestamp, job.JobId)); err != nil {
			return err
		}
		return txn.Delete(jobKey(jobId))
	})
}

// QueryByUser returns up to one page of the user's jobs, newest first, starting
// strictly after cursor. The returned cursor is nil when no jobs remain.
func (s *JobStore) QueryByUser(userId string, cursor *model.PaginationCursor) ([]*model.JobRecord, *model.PaginationCursor, error) {
	prefix := userPrefix(userId)
	start := prefix
	var after []byte
	if cursor != nil {
		after = indexKey(cursor.UserId, cursor.RequestTimestamp, cursor.JobId)
		start = after
	}

	jobs := make([]*model.JobRecord, 0, s.pageSize)
	more := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(start); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			if after != nil && bytes.Equal(key, after) {
				continue
			}
			if len(jobs) == s.pageSize {
				more = true
				return nil
			}

			var jobId string
			err := it.Item().Value(func(val []byte) error {
				jobId = string(val)
				return nil
			})
			if err != nil {
				return err
			}
			job, err := getJob(txn, jobId)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					s.logger.Warnf("dangling index entry for job %s", jobId)
					continue
				}
				return err
			}
			jobs = append(jobs, job)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if !more || len(jobs) == 0 {
		return jobs, nil, nil
	}
	return jobs, jobs[len(jobs)-1].Cursor(), nil
}
