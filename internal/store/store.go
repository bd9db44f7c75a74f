package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database and provides access to
// repositories. Every mutable record is updated through single-key
// atomic upserts (INSERT ... ON CONFLICT DO UPDATE).
type Store struct {
	db *sql.DB
}

// Open creates a Store connected to the SQLite database at dsn.
// It applies recommended pragmas and creates missing tables.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ProgressRepo returns the course-progress repository.
func (s *Store) ProgressRepo() ProgressRepo { return &progressRepo{db: s.db} }

// QuizResultRepo returns the quiz-history repository.
func (s *Store) QuizResultRepo() QuizResultRepo { return &quizResultRepo{db: s.db} }

// MasteryRepo returns the concept-mastery repository.
func (s *Store) MasteryRepo() MasteryRepo { return &masteryRepo{db: s.db} }

// ActivityRepo returns the daily-activity/streak repository.
func (s *Store) ActivityRepo() ActivityRepo { return &activityRepo{db: s.db} }

// SessionRepo returns the learning-session repository.
func (s *Store) SessionRepo() SessionRepo { return &sessionRepo{db: s.db} }

// EventRepo returns the LLM request event repository.
func (s *Store) EventRepo() EventRepo { return &eventRepo{db: s.db} }

// applyPragmas configures SQLite for single-user durability and
// concurrency.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_progress (
			course_id TEXT PRIMARY KEY,
			completion_percentage REAL NOT NULL DEFAULT 0,
			modules_completed INTEGER NOT NULL DEFAULT 0,
			total_modules INTEGER NOT NULL DEFAULT 0,
			concepts_completed INTEGER NOT NULL DEFAULT 0,
			total_concepts INTEGER NOT NULL DEFAULT 0,
			time_spent_minutes INTEGER NOT NULL DEFAULT 0,
			current_module_idx INTEGER NOT NULL DEFAULT 0,
			current_concept_idx INTEGER NOT NULL DEFAULT 0,
			last_accessed TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			quiz_id TEXT NOT NULL,
			course_id TEXT NOT NULL,
			module_id TEXT NOT NULL,
			module_title TEXT NOT NULL DEFAULT '',
			score REAL NOT NULL,
			correct_count INTEGER NOT NULL,
			total_questions INTEGER NOT NULL,
			weak_concepts TEXT NOT NULL DEFAULT '[]',
			feedback TEXT NOT NULL DEFAULT '',
			passed INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quiz_results_course
			ON quiz_results(course_id, completed_at DESC)`,
		`CREATE TABLE IF NOT EXISTS concept_mastery (
			course_id TEXT NOT NULL,
			concept_id TEXT NOT NULL,
			mastery_level REAL NOT NULL DEFAULT 0,
			questions_asked INTEGER NOT NULL DEFAULT 0,
			times_reviewed INTEGER NOT NULL DEFAULT 0,
			last_reviewed TEXT NOT NULL,
			PRIMARY KEY (course_id, concept_id)
		)`,
		`CREATE TABLE IF NOT EXISTS daily_activity (
			date TEXT PRIMARY KEY,
			minutes_learned INTEGER NOT NULL DEFAULT 0,
			concepts_completed INTEGER NOT NULL DEFAULT 0,
			quizzes_taken INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS learning_streak (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			last_activity_date TEXT
		)`,
		`INSERT OR IGNORE INTO learning_streak (id, current_streak, longest_streak)
			VALUES (1, 0, 0)`,
		`CREATE TABLE IF NOT EXISTS learning_sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			course_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			duration_minutes INTEGER NOT NULL DEFAULT 0,
			concepts_covered INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS llm_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			purpose TEXT NOT NULL DEFAULT '',
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms INTEGER NOT NULL DEFAULT 0,
			success INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT '',
			request_body TEXT NOT NULL DEFAULT '',
			response_body TEXT NOT NULL DEFAULT ''
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. SENSEI_DB environment variable
// 2. $XDG_DATA_HOME/sensei/sensei.db
// 3. ~/.local/share/sensei/sensei.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SENSEI_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "sensei", "sensei.db")
	return p, EnsureDir(p)
}

// DefaultCourseDir resolves the course library directory next to the
// database file.
func DefaultCourseDir() (string, error) {
	dbPath, err := DefaultDBPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(dbPath), "courses"), nil
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
