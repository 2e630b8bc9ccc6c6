package studify

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Storage keys. All history is stored under these global keys regardless of
// which user is signed in; per-user partitioning is an accepted limitation
// of the single-user scope.
const (
	keyUser         = "studify_user"
	keyQuizHistory  = "studify_quiz_history"
	keyEssayHistory = "studify_essay_history"
)

// Store is the persistence layer: a sqlite-backed key-value table holding
// JSON-encoded records for the user slot and the two history logs.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenStore opens (creating if needed) the sqlite database at dbPath.
func OpenStore(dbPath string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{db: db, log: log}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	query := `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to execute %s: %w", query, err)
	}
	return nil
}

// Get returns the raw JSON stored under key. The second return is false when
// the key is absent.
func (s *Store) Get(key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// Set stores value under key, overwriting any previous value.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	_, err = s.db.Exec("INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)", key, string(data))
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *Store) Remove(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// SaveUser overwrites the current user slot.
func (s *Store) SaveUser(user User) error {
	return s.Set(keyUser, user)
}

// CurrentUser returns the signed-in user, or nil when nobody is signed in.
func (s *Store) CurrentUser() (*User, error) {
	raw, ok, err := s.Get(keyUser)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		// Corrupt slot reads as signed out rather than crashing.
		s.warnCorrupt(keyUser, err)
		return nil, nil
	}
	return &user, nil
}

// ClearUser removes the current user slot.
func (s *Store) ClearUser() error {
	return s.Remove(keyUser)
}

// QuizHistory returns all quiz results, newest first. A missing or corrupt
// value reads as an empty history.
func (s *Store) QuizHistory() ([]QuizResult, error) {
	return getList[QuizResult](s, keyQuizHistory)
}

// AppendQuizResult prepends result to the quiz history. The append is a
// single read-modify-write; across concurrent writers the last write wins.
func (s *Store) AppendQuizResult(result QuizResult) error {
	history, err := s.QuizHistory()
	if err != nil {
		return err
	}
	history = append([]QuizResult{result}, history...)
	return s.Set(keyQuizHistory, history)
}

// EssayHistory returns all essay results, newest first.
func (s *Store) EssayHistory() ([]EssayResult, error) {
	return getList[EssayResult](s, keyEssayHistory)
}

// AppendEssayResult prepends result to the essay history.
func (s *Store) AppendEssayResult(result EssayResult) error {
	history, err := s.EssayHistory()
	if err != nil {
		return err
	}
	history = append([]EssayResult{result}, history...)
	return s.Set(keyEssayHistory, history)
}

// getList reads the JSON array under key. Unmarshal can populate the slice
// partially before hitting a syntax error mid-array, so a corrupt value is
// discarded wholesale and reads as empty.
func getList[T any](s *Store, key string) ([]T, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		s.warnCorrupt(key, err)
		return nil, nil
	}
	return list, nil
}

func (s *Store) warnCorrupt(key string, err error) {
	if s.log != nil {
		s.log.Warn("corrupt stored value, treating as empty",
			zap.String("key", key), zap.Error(err))
	}
}
