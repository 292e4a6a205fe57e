package store

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Aljumaily/hlcd-search/hlcd"
	"github.com/Aljumaily/hlcd-search/logging"
	"github.com/Aljumaily/hlcd-search/rand"
)

var logger = logging.MustGetLogger("store")

const (
	resultPrefix = "result/"
	// fingerprintLength is the size in bytes of a record fingerprint
	fingerprintLength = 16
)

// ErrCorruptRecord is returned when a cached record does not match its fingerprint
var ErrCorruptRecord = errors.New("cached record is corrupt")

// Record is a finished search as it is cached. The encoding is not versioned.
type Record struct {
	N                int           `json:"n"`
	K                int           `json:"k"`
	D                int           `json:"d"`
	Base             int           `json:"base"`
	HLCD             bool          `json:"hlcd"`
	Found            bool          `json:"found"`
	Rows             []string      `json:"rows"`
	RecursiveCalls   uint64        `json:"recursive_calls"`
	CandidatesTested uint64        `json:"candidates_tested"`
	Elapsed          time.Duration `json:"elapsed"`
	SearchedAt       time.Time     `json:"searched_at"`
	// Fingerprint is the hex SHAKE256 digest of the code and its rows
	Fingerprint string `json:"fingerprint"`
}

// NewRecord captures a search result
func NewRecord(r *hlcd.Result) *Record {
	rec := &Record{
		N:                r.Params.N(),
		K:                r.Params.K(),
		D:                r.Params.D(),
		Base:             r.Params.Base(),
		HLCD:             r.Params.IsHLCD(),
		Found:            r.Found,
		RecursiveCalls:   r.RecursiveCalls,
		CandidatesTested: r.CandidatesTested,
		Elapsed:          r.Elapsed,
		SearchedAt:       time.Now().UTC(),
	}
	for _, row := range r.Matrix.Digits() {
		digits := make([]byte, len(row))
		for i, d := range row {
			digits[i] = '0' + d
		}
		rec.Rows = append(rec.Rows, string(digits))
	}
	rec.Fingerprint = rec.fingerprint()
	return rec
}

func (r *Record) fingerprint() string {
	code := fmt.Sprintf("%d/%d/%d/%d/%t/%t", r.N, r.K, r.D, r.Base, r.HLCD, r.Found)
	return hex.EncodeToString(rand.SHAKE256(fingerprintLength, []byte(code), []byte(strings.Join(r.Rows, "/"))))
}

// Matrix rebuilds the generator matrix of the record
func (r *Record) Matrix() (*hlcd.Matrix, error) {
	digits := make([][]byte, len(r.Rows))
	for i, row := range r.Rows {
		digits[i] = make([]byte, len(row))
		for j := 0; j < len(row); j++ {
			digits[i][j] = row[j] - '0'
		}
	}
	m, err := hlcd.NewMatrixFromDigits(r.Base, digits)
	if err != nil {
		return nil, errors.WithMessage(err, "corrupt cached matrix")
	}
	if m.Rows() != r.K || m.Cols() != r.N {
		return nil, errors.Errorf("cached matrix is %d x %d, expected %d x %d", m.Rows(), m.Cols(), r.K, r.N)
	}
	if r.Fingerprint != r.fingerprint() {
		return nil, errors.Wrapf(ErrCorruptRecord, "fingerprint of %s does not match", r.Code())
	}
	return m, nil
}

// Code is the record's code in the "[n, k, d]_b" notation
func (r *Record) Code() string {
	return fmt.Sprintf("[%d, %d, %d]_%d", r.N, r.K, r.D, r.Base)
}

// Store caches search results in a leveldb database keyed by the code parameters
type Store struct {
	mutex     sync.RWMutex
	db        *leveldb.DB
	path      string
	readOpts  *opt.ReadOptions
	writeOpts *opt.WriteOptions
}

// Open opens or creates the database at path
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "error opening leveldb at [%s]", path)
	}
	return newStore(db, path), nil
}

// OpenInMemory opens a database that lives as long as the process
func OpenInMemory() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "error opening in-memory leveldb")
	}
	return newStore(db, ""), nil
}

func newStore(db *leveldb.DB, path string) *Store {
	return &Store{
		db:        db,
		path:      path,
		readOpts:  &opt.ReadOptions{},
		writeOpts: &opt.WriteOptions{Sync: true},
	}
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.db.Close(); err != nil {
		logger.Errorf("Error closing leveldb [%s]: %s", s.path, err)
		return errors.Wrap(err, "error closing leveldb")
	}
	return nil
}

func key(params hlcd.CodeParameters) []byte {
	return []byte(resultPrefix + params.Key())
}

// Put records a finished search
func (s *Store) Put(r *hlcd.Result) error {
	value, err := json.Marshal(NewRecord(r))
	if err != nil {
		return errors.Wrap(err, "error encoding search result")
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()
	k := key(r.Params)
	if err := s.db.Put(k, value, s.writeOpts); err != nil {
		logger.Errorf("Error writing leveldb key [%s]", k)
		return errors.Wrapf(err, "error writing leveldb key [%s]", k)
	}
	return nil
}

// Get returns the cached result for params, or nil when there is none
func (s *Store) Get(params hlcd.CodeParameters) (*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	k := key(params)
	value, err := s.db.Get(k, s.readOpts)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error retrieving leveldb key [%s]", k)
	}

	rec := &Record{}
	if err := json.Unmarshal(value, rec); err != nil {
		return nil, errors.Wrapf(err, "error decoding leveldb key [%s]", k)
	}
	return rec, nil
}

// Delete removes the cached result for params. Deleting a missing result is not an error.
func (s *Store) Delete(params hlcd.CodeParameters) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	if err := s.db.Delete(key(params), s.writeOpts); err != nil {
		return errors.Wrapf(err, "error deleting leveldb key [%s]", key(params))
	}
	return nil
}

// List returns every cached record in key order
func (s *Store) List() ([]*Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	itr := s.db.NewIterator(util.BytesPrefix([]byte(resultPrefix)), s.readOpts)
	defer itr.Release()

	var records []*Record
	for itr.Next() {
		rec := &Record{}
		if err := json.Unmarshal(itr.Value(), rec); err != nil {
			return nil, errors.Wrapf(err, "error decoding leveldb key [%s]", itr.Key())
		}
		records = append(records, rec)
	}
	return records, errors.Wrap(itr.Error(), "error iterating over cached results")
}
