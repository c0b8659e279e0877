package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pinpanel/internal/config"
	"pinpanel/internal/engine"
	"pinpanel/internal/gate"
	"pinpanel/internal/server"
	"pinpanel/internal/store"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the engine.FeedFetcher interface using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// setupTestApp initializes a headless Fyne app with mocked dependencies and a
// real todo store backed by a temp file.
func setupTestApp(t *testing.T) (*PanelApp, *MockFetcher) {
	// Initialize headless driver
	a := test.NewApp()

	// Use port "0" to bind to any free port during tests
	relay := server.NewFeedRelay("0")
	fetcher := new(MockFetcher)

	st, err := store.Open(filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	g := gate.New("123", gate.NewMemorySession())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := NewPanelApp(a, ctx, relay, fetcher, g, st)

	// Default MockClock to a neutral date if not overridden by test
	app.Clock = MockClock{CurrentTime: time.Now()}

	// Manually load I18n as Run() is skipped
	app.SetupI18n()

	return app, fetcher
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _ := setupTestApp(t)

	// Case 1: English (Default)
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.UpdateLocalizer()
	assert.Equal(t, "Settings...", app.GetMsg(config.TKeyBtnSettings))

	// Case 2: French
	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyBtnSettings))
}

func TestLocalization_BirthdayFormatter(t *testing.T) {
	app, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.UpdateLocalizer()

	formatter := app.buildBirthdayFormatter()

	// Scenario 1: Age is known
	res := formatter("Alice", 30, true)
	assert.Contains(t, res, "Alice")
	assert.Contains(t, res, "30")

	// Scenario 2: Year unknown, age must not leak into the title
	res = formatter("Bob", 0, false)
	assert.Contains(t, res, "Bob")
	assert.NotContains(t, res, "(0)", "Should not display age 0 if year unknown")
}

// -----------------------------------------------------------------------------
// Configuration & Preferences Tests
// -----------------------------------------------------------------------------

func TestConfiguration_Mapping(t *testing.T) {
	app, _ := setupTestApp(t)

	// Set Fyne Preferences
	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefFeedURL, "https://secure.example.com/feed.json")
	app.Preferences.SetString(config.PrefUsername, "admin")
	app.Preferences.SetString(config.PrefContactsPath, "/data/family.vcf")

	// Map to engine Config
	cfg := app.loadRefreshConfig()

	assert.Equal(t, config.SourceModeWeb, cfg.Mode)
	assert.Equal(t, "https://secure.example.com/feed.json", cfg.FeedURL)
	assert.Equal(t, "admin", cfg.FeedUser)
	assert.Equal(t, "/data/family.vcf", cfg.ContactsPath)
}

func TestConfiguration_WorkerSignal(t *testing.T) {
	app, _ := setupTestApp(t)
	app.watchPreferences()

	// Capture signal
	signalReceived := make(chan bool)
	go func() {
		select {
		case key := <-app.configChan:
			signalReceived <- key == config.PrefInterval
		case <-time.After(500 * time.Millisecond):
			signalReceived <- false
		}
	}()

	// Trigger change
	app.Preferences.SetInt(config.PrefInterval, 120)

	assert.True(t, <-signalReceived, "Changing interval should notify background worker")
}

// -----------------------------------------------------------------------------
// Refresh Logic Integration Tests
// -----------------------------------------------------------------------------

func TestPerformRefresh_Success(t *testing.T) {
	app, fetcher := setupTestApp(t)

	app.Clock = MockClock{CurrentTime: time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC)}

	feed := `{"ok":true,"items":[{"id":"a1","title":"Dentist","date":"2026-09-02","start":"14:30","durationMin":45}]}`
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(bytes.NewBufferString(feed)), nil)

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefFeedURL, "http://test.local")

	app.performRefresh(true)

	fetcher.AssertExpectations(t)

	items := app.CurrentAppointments()
	require.Len(t, items, 1)
	assert.Equal(t, "Dentist", items[0].Title)
	assert.Equal(t, "2026-09-02", items[0].Date)
}

func TestPerformRefresh_FailureKeepsLastKnown(t *testing.T) {
	app, fetcher := setupTestApp(t)

	seed := []engine.Appointment{
		{ID: "keep", Title: "School run", Date: "2026-09-03", Start: "08:15", DurationMin: 30},
	}
	app.ApptMut.Lock()
	app.Appointments = seed
	app.ApptMut.Unlock()

	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	app.Preferences.SetString(config.PrefSourceMode, config.SourceModeWeb)
	app.Preferences.SetString(config.PrefFeedURL, "http://test.local")

	app.performRefresh(false)

	fetcher.AssertExpectations(t)

	items := app.CurrentAppointments()
	require.Len(t, items, 1)
	assert.Equal(t, "School run", items[0].Title, "Failed refresh must keep the last known collection")
}

// -----------------------------------------------------------------------------
// Gate / View Swap Tests
// -----------------------------------------------------------------------------

func TestGate_UnlockSwapsView(t *testing.T) {
	app, _ := setupTestApp(t)
	app.buildMainWindow()

	require.NotNil(t, app.Window)
	assert.Equal(t, app.lock.root, app.Window.Content(), "Window must start on the lock screen")

	for _, k := range []string{"1", "2", "3"} {
		test.Tap(app.lock.keyFor(k))
	}

	assert.True(t, app.Gate.Unlocked())
	assert.Equal(t, app.panel.root, app.Window.Content(), "Unlock must swap in the panel")

	// Further keypad input must not disturb the unlocked panel.
	test.Tap(app.lock.keyFor("5"))
	assert.Empty(t, app.Gate.Entry())
	assert.Equal(t, app.panel.root, app.Window.Content())
}

func TestGate_SessionRestoreSkipsLock(t *testing.T) {
	app, _ := setupTestApp(t)

	// Unlock before the window exists, as an earlier screen of the same
	// session would have done.
	for _, r := range "123" {
		app.Gate.SubmitDigit(r)
	}
	require.True(t, app.Gate.Unlocked())

	app.buildMainWindow()
	assert.Equal(t, app.panel.root, app.Window.Content(), "Same-session unlock must bypass the lock screen")
}

func TestPanel_ToggleUpdatesCounts(t *testing.T) {
	app, _ := setupTestApp(t)

	_, err := app.Todos.AddTodo("Call plumber", engine.PriorityHigh, nil)
	require.NoError(t, err)
	_, err = app.Todos.AddTodo("Buy milk", engine.PriorityMedium, nil)
	require.NoError(t, err)

	for _, r := range "123" {
		app.Gate.SubmitDigit(r)
	}
	app.buildMainWindow()

	assert.Equal(t, app.panel.upcomingTab, app.panel.tabs.Selected(), "Upcoming is the default tab")
	assert.Equal(t, "Upcoming (0)", app.panel.upcomingTab.Text)
	assert.Equal(t, "Urgent (2)", app.panel.urgentTab.Text)

	// A row tap toggles done. The high priority row sorts first.
	app.onUrgentSelected(0)

	assert.Equal(t, "Urgent (1)", app.panel.urgentTab.Text)
	require.Len(t, app.panel.urgent, 1)
	assert.Equal(t, "Buy milk", app.panel.urgent[0].Title)
}
