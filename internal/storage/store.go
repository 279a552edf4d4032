package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/shelf/internal/catalog"
	"github.com/pders01/shelf/internal/validation"
)

var favoritesBucket = []byte("favorites")

// ErrNotFound is returned when a favorite does not exist.
var ErrNotFound = errors.New("favorite not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	dbPath, err := validation.NewPermissiveFilePathValidator().ValidateFile(dbPath)
	if err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(favoritesBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveFavorite stores book. Re-saving an existing favorite keeps its
// original position.
func (s *Store) SaveFavorite(book catalog.BookSummary) error {
	if book.ID == "" {
		return fmt.Errorf("favorite has no id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(favoritesBucket)
		key := []byte(book.ID)

		rec := FavoriteRecord{Book: book, AddedAt: time.Now()}
		if existing := b.Get(key); existing != nil {
			var old FavoriteRecord
			if err := json.Unmarshal(existing, &old); err == nil {
				rec.Seq = old.Seq
				rec.AddedAt = old.AddedAt
			}
		}
		if rec.Seq == 0 {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			rec.Seq = seq
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *Store) GetFavorite(id string) (*FavoriteRecord, error) {
	var rec FavoriteRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(favoritesBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteFavorite removes a favorite. Deleting a missing id is not an error.
func (s *Store) DeleteFavorite(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(favoritesBucket).Delete([]byte(id))
	})
}

// ListFavorites returns stored favorites in the order they were added.
// Undecodable entries are skipped.
func (s *Store) ListFavorites() ([]catalog.BookSummary, error) {
	var recs []FavoriteRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(favoritesBucket).ForEach(func(_ []byte, v []byte) error {
			var rec FavoriteRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil
			}
			recs = append(recs, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Seq < recs[j].Seq
	})

	books := make([]catalog.BookSummary, 0, len(recs))
	for _, r := range recs {
		books = append(books, r.Book)
	}
	return books, nil
}

func (s *Store) CountFavorites() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(favoritesBucket).Stats().KeyN
		return nil
	})
	return n, err
}
