package store_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinpanel/internal/config"
	"pinpanel/internal/engine"
	"pinpanel/internal/store"
)

func openTemp(t *testing.T) *store.TaskStore {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "todos.db")

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist after Open")
	assert.Empty(t, s.UrgentTodos())
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := store.Open("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrStoreOpen)
}

func TestAddTodo_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "todos.db")

	s, err := store.Open(dbPath)
	require.NoError(t, err)

	due := time.Date(2026, 9, 1, 17, 30, 0, 0, time.UTC)
	idA, err := s.AddTodo("Pick up prescription", engine.PriorityHigh, &due)
	require.NoError(t, err)
	idB, err := s.AddTodo("Water the plants", engine.PriorityLow, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := store.Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	todos := reopened.UrgentTodos()
	require.Len(t, todos, 2)

	assert.Equal(t, idA, todos[0].ID)
	assert.Equal(t, "Pick up prescription", todos[0].Title)
	assert.Equal(t, engine.PriorityHigh, todos[0].Priority)
	assert.False(t, todos[0].Done)
	require.NotNil(t, todos[0].DueAt)
	assert.True(t, todos[0].DueAt.Equal(due))

	assert.Equal(t, idB, todos[1].ID)
	assert.Equal(t, engine.PriorityLow, todos[1].Priority)
	assert.Nil(t, todos[1].DueAt)
}

func TestAddTodo_KeepsInsertionOrder(t *testing.T) {
	s := openTemp(t)

	titles := []string{"first", "second", "third", "fourth"}
	for _, title := range titles {
		_, err := s.AddTodo(title, engine.PriorityMedium, nil)
		require.NoError(t, err)
	}

	todos := s.UrgentTodos()
	require.Len(t, todos, len(titles))
	for i, title := range titles {
		assert.Equal(t, title, todos[i].Title)
	}
}

func TestToggleUrgentDone(t *testing.T) {
	s := openTemp(t)

	id, err := s.AddTodo("Call the plumber", engine.PriorityHigh, nil)
	require.NoError(t, err)

	require.NoError(t, s.ToggleUrgentDone(id))
	assert.True(t, s.UrgentTodos()[0].Done)

	require.NoError(t, s.ToggleUrgentDone(id))
	assert.False(t, s.UrgentTodos()[0].Done)
}

func TestToggleUrgentDone_UnknownID(t *testing.T) {
	s := openTemp(t)

	err := s.ToggleUrgentDone("no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrTodoMissing)
}

func TestDeleteTodo(t *testing.T) {
	s := openTemp(t)

	id, err := s.AddTodo("Temporary", engine.PriorityLow, nil)
	require.NoError(t, err)
	_, err = s.AddTodo("Keeper", engine.PriorityLow, nil)
	require.NoError(t, err)

	require.NoError(t, s.DeleteTodo(id))

	todos := s.UrgentTodos()
	require.Len(t, todos, 1)
	assert.Equal(t, "Keeper", todos[0].Title)

	err = s.DeleteTodo(id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrTodoMissing)
}

func TestUrgentTodos_ReturnsCopy(t *testing.T) {
	s := openTemp(t)

	_, err := s.AddTodo("original", engine.PriorityMedium, nil)
	require.NoError(t, err)

	leaked := s.UrgentTodos()
	leaked[0].Title = "tampered"
	leaked[0].Done = true

	fresh := s.UrgentTodos()
	assert.Equal(t, "original", fresh[0].Title)
	assert.False(t, fresh[0].Done)
}
