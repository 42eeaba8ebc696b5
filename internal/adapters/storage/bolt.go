package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cwilkins507/my-portfolio/internal/domain"
)

const quizBucket = "quiz_sessions"

const openTimeout = time.Second

// Bolt stores quiz snapshots as JSON in a bbolt file, one key per session.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the database at path and makes sure the bucket
// exists. Parent directories are created as needed.
func NewBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create quiz store dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("open quiz store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(quizBucket)); err != nil {
			return fmt.Errorf("create bucket %s: %w", quizBucket, err)
		}

		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Load reads the snapshot for sessionID.
func (b *Bolt) Load(_ context.Context, sessionID string) (snap domain.QuizSnapshot, found bool, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bts := tx.Bucket([]byte(quizBucket)).Get([]byte(sessionID))
		if bts == nil {
			return nil
		}

		if err := json.Unmarshal(bts, &snap); err != nil {
			return fmt.Errorf("unmarshal snapshot %s: %w", sessionID, err)
		}

		found = true

		return nil
	})
	if err != nil {
		return domain.QuizSnapshot{}, false, fmt.Errorf("view quiz store: %w", err)
	}

	return snap, found, nil
}

// Save writes snap under sessionID.
func (b *Bolt) Save(_ context.Context, sessionID string, snap domain.QuizSnapshot) error {
	bts, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(quizBucket)).Put([]byte(sessionID), bts)
	})
	if err != nil {
		return fmt.Errorf("update quiz store: %w", err)
	}

	return nil
}

// Delete removes sessionID. bbolt treats a missing key as success.
func (b *Bolt) Delete(_ context.Context, sessionID string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(quizBucket)).Delete([]byte(sessionID))
	})
	if err != nil {
		return fmt.Errorf("update quiz store: %w", err)
	}

	return nil
}

// Name implements ports.HealthChecker.
func (b *Bolt) Name() string { return "quiz-store" }

// Check implements ports.HealthChecker by opening a read transaction.
func (b *Bolt) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return b.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(quizBucket)) == nil {
			return fmt.Errorf("bucket %s missing", quizBucket)
		}

		return nil
	})
}

// Close closes the database file.
func (b *Bolt) Close() error { return b.db.Close() }
