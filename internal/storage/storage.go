package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"
)

const analysisPrefix = "analysis/"

// Analysis is a cached search result for one position.
type Analysis struct {
	Key        uint64    `json:"key"`
	FEN        string    `json:"fen"`
	BestMove   string    `json:"best_move"`
	Score      int       `json:"score"`
	Depth      int       `json:"depth"`
	Nodes      uint64    `json:"nodes"`
	SearchedAt time.Time `json:"searched_at"`
}

// Storage wraps BadgerDB for the analysis cache. Values are JSON
// compressed with zstd.
type Storage struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens (or creates) the store in dir. An empty dir uses the
// database directory under GetDataDir.
func Open(dir string) (*Storage, error) {
	if dir == "" {
		var err error
		if dir, err = GetDatabaseDir(); err != nil {
			return nil, err
		}
	}
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Storage, error) {
	opts.Logger = nil // Disable logging

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	db, err := badger.Open(opts)
	if err != nil {
		encoder.Close()
		decoder.Close()
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Storage{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.encoder.Close()
	s.decoder.Close()
	s.db = nil
	return err
}

func analysisKey(key uint64) []byte {
	return fmt.Appendf(nil, "%s%016x", analysisPrefix, key)
}

func (s *Storage) encode(a *Analysis) ([]byte, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return s.encoder.EncodeAll(data, nil), nil
}

func (s *Storage) decode(val []byte) (*Analysis, error) {
	data, err := s.decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress analysis: %w", err)
	}
	a := new(Analysis)
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return a, nil
}

// SaveAnalysis stores a under a.Key, replacing any earlier record.
// A zero SearchedAt is set to now.
func (s *Storage) SaveAnalysis(a *Analysis) error {
	if a.SearchedAt.IsZero() {
		a.SearchedAt = time.Now()
	}
	data, err := s.encode(a)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(analysisKey(a.Key), data)
	})
}

// LoadAnalysis returns the record stored for key. ok is false when there
// is none.
func (s *Storage) LoadAnalysis(key uint64) (a *Analysis, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(analysisKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			a, err = s.decode(val)
			return err
		})
	})
	return a, a != nil, err
}

// DeleteAnalysis removes the record for key. Deleting a missing key is
// not an error.
func (s *Storage) DeleteAnalysis(key uint64) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(analysisKey(key))
	})
}

// ListAnalyses returns every stored record in ascending key order.
func (s *Storage) ListAnalyses() ([]*Analysis, error) {
	var list []*Analysis
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(analysisPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				a, err := s.decode(val)
				if err != nil {
					return err
				}
				list = append(list, a)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return list, err
}
