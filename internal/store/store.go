// Package store persists the household's urgent todos in a local SQLite
// database and serves them to the panel from an in-memory snapshot.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pinpanel/internal/config"
	"pinpanel/internal/engine"
)

// TaskStore is a SQLite-backed engine.TodoSource. Reads are served from a
// snapshot reloaded after every mutation, so list rendering never touches
// the database.
type TaskStore struct {
	db *sql.DB

	mu    sync.RWMutex
	todos []engine.UrgentTodo
}

// Open opens the database at dbPath, creating file and schema on first run,
// and loads the initial snapshot.
func Open(dbPath string) (*TaskStore, error) {
	if dbPath == "" {
		return nil, errors.New(config.ErrStoreOpen)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), config.DirPermUserRWX); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	db.SetMaxOpenConns(1)

	s := &TaskStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", config.ErrStoreOpen, err)
	}
	if err := s.LoadUrgentTodos(); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info(config.MsgStoreReady,
		config.LogKeyComponent, config.CompStore,
		config.LogKeyDB, dbPath,
		config.LogKeyCount, len(s.todos))
	return s, nil
}

// Close releases the underlying database handle.
func (s *TaskStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *TaskStore) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS urgent_todos (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	done INTEGER NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'medium',
	due_at TEXT DEFAULT NULL,
	created_at TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

// LoadUrgentTodos replaces the snapshot with the current database rows in
// insertion order.
func (s *TaskStore) LoadUrgentTodos() error {
	rows, err := s.db.Query(`SELECT id, title, done, priority, due_at FROM urgent_todos ORDER BY rowid;`)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	defer rows.Close()

	var todos []engine.UrgentTodo
	for rows.Next() {
		var t engine.UrgentTodo
		var doneInt int
		var prio string
		var dueStr sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &doneInt, &prio, &dueStr); err != nil {
			return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
		}
		t.Done = doneInt == 1
		t.Priority = engine.Priority(prio)
		if dueStr.Valid {
			if parsed, err := time.Parse(time.RFC3339, dueStr.String); err == nil {
				due := parsed
				t.DueAt = &due
			}
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}

	s.mu.Lock()
	s.todos = todos
	s.mu.Unlock()
	return nil
}

// UrgentTodos returns a copy of the snapshot. Callers may filter and sort
// it without affecting the store.
func (s *TaskStore) UrgentTodos() []engine.UrgentTodo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]engine.UrgentTodo, len(s.todos))
	copy(out, s.todos)
	return out
}

// AddTodo inserts a new open todo and refreshes the snapshot. It returns
// the generated id.
func (s *TaskStore) AddTodo(title string, priority engine.Priority, dueAt *time.Time) (string, error) {
	id := uuid.NewString()
	due := sql.NullString{}
	if dueAt != nil {
		due = sql.NullString{String: dueAt.UTC().Format(time.RFC3339), Valid: true}
	}
	created := time.Now().UTC().Format(time.RFC3339)

	if _, err := s.db.Exec(
		`INSERT INTO urgent_todos (id, title, done, priority, due_at, created_at) VALUES (?, ?, 0, ?, ?, ?);`,
		id, title, string(priority), due, created,
	); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}

	slog.Info(config.MsgTodoAdded, config.LogKeyComponent, config.CompStore, config.LogKeyID, id)
	return id, s.LoadUrgentTodos()
}

// ToggleUrgentDone flips the done state of the todo with the given id and
// refreshes the snapshot.
func (s *TaskStore) ToggleUrgentDone(id string) error {
	res, err := s.db.Exec(`UPDATE urgent_todos SET done = 1 - done WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	} else if n == 0 {
		return fmt.Errorf("%s: %s", config.ErrTodoMissing, id)
	}

	slog.Info(config.MsgTodoToggled, config.LogKeyComponent, config.CompStore, config.LogKeyID, id)
	return s.LoadUrgentTodos()
}

// DeleteTodo removes the todo with the given id and refreshes the snapshot.
func (s *TaskStore) DeleteTodo(id string) error {
	res, err := s.db.Exec(`DELETE FROM urgent_todos WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrStoreQuery, err)
	} else if n == 0 {
		return fmt.Errorf("%s: %s", config.ErrTodoMissing, id)
	}

	slog.Info(config.MsgTodoDeleted, config.LogKeyComponent, config.CompStore, config.LogKeyID, id)
	return s.LoadUrgentTodos()
}

// sqliteDSN builds a file: DSN that creates the database on first open and
// waits out short lock contention between UI and worker calls.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: path}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout("+strconv.Itoa(config.DBBusyTimeoutMS)+")")
	u.RawQuery = q.Encode()
	return u.String()
}
