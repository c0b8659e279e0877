package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/zalando/go-keyring"

	"pinpanel/internal/config"
	"pinpanel/internal/engine"
	"pinpanel/internal/gate"
	"pinpanel/internal/server"
)

// TodoStore is the store surface the panel needs: the read/toggle core the
// presenter works against, plus authoring.
type TodoStore interface {
	engine.TodoSource
	AddTodo(title string, priority engine.Priority, dueAt *time.Time) (string, error)
	DeleteTodo(id string) error
}

// PanelApp encapsulates the UI state, preferences, and background logic.
type PanelApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Relay   *server.FeedRelay
	Fetcher engine.FeedFetcher
	Clock   engine.Clock // Injected clock for testability
	Gate    *gate.AccessGate
	Todos   TodoStore

	SupportedLanguages []string
	configChan         chan string

	// Appointment snapshot, replaced wholesale by each successful refresh.
	ApptMut      sync.RWMutex
	Appointments []engine.Appointment

	lock           *lockScreen
	panel          *panelView
	settingsWindow fyne.Window
}

// NewPanelApp constructs the application and wires dependencies.
func NewPanelApp(a fyne.App, ctx context.Context, relay *server.FeedRelay, fetcher engine.FeedFetcher, g *gate.AccessGate, todos TodoStore) *PanelApp {
	return &PanelApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Relay:              relay,
		Fetcher:            fetcher,
		Clock:              engine.RealClock{}, // Default to real clock in production
		Gate:               g,
		Todos:              todos,
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
	}
}

// Run launches the relay, the background worker and the main window loop.
func (app *PanelApp) Run() {
	app.SetupI18n()
	app.watchPreferences()

	go func() {
		if err := app.Relay.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Relay.Port)))
		}
	}()

	app.buildMainWindow()
	go app.backgroundWorker()
	app.Window.ShowAndRun()
}

// buildMainWindow creates the single panel window. Content starts on the
// lock screen unless this session already unlocked.
func (app *PanelApp) buildMainWindow() {
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	w.Resize(fyne.NewSize(config.PanelWinWidth, config.PanelWinHeight))
	w.SetMaster()
	app.Window = w

	app.lock = app.newLockScreen()
	app.panel = app.newPanelView()

	// Gate callbacks may arrive from its wipe timer goroutine.
	app.Gate.SetOnChange(func() { fyne.Do(app.applyGateState) })

	// Physical keyboards reach the canvas only while no widget holds focus.
	w.Canvas().SetOnTypedRune(app.onTypedRune)
	w.Canvas().SetOnTypedKey(app.onTypedKey)

	if app.Gate.RestoreFromSession() {
		w.SetContent(app.panel.root)
		app.refreshPanel()
	} else {
		w.SetContent(app.lock.root)
		app.lock.refresh()
	}
}

// applyGateState reconciles the window content with the gate. Unlocking
// swaps in the panel exactly once; while locked it redraws the lock screen.
func (app *PanelApp) applyGateState() {
	if app.Window == nil {
		return
	}
	if app.Gate.Unlocked() {
		if app.Window.Content() != app.panel.root {
			app.Window.SetContent(app.panel.root)
			app.refreshPanel()
		}
		return
	}
	// A tapped keypad button holds focus and would swallow key presses.
	app.Window.Canvas().Unfocus()
	app.lock.refresh()
}

// watchPreferences monitors changes to settings to trigger immediate updates.
func (app *PanelApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

// backgroundWorker manages the periodic refresh schedule.
func (app *PanelApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performRefresh(false)

	// A non-positive interval parks the ticker; manual refresh stays available.
	getInterval := func() time.Duration {
		val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
		if val <= 0 {
			return 0
		}
		return time.Duration(val) * time.Minute
	}

	ticker := time.NewTicker(time.Duration(config.DefaultRefreshMin) * time.Minute)
	defer ticker.Stop()

	applyInterval := func(d time.Duration) {
		if d > 0 {
			ticker.Reset(d)
		} else {
			ticker.Stop()
		}
	}

	currentDuration := getInterval()
	applyInterval(currentDuration)

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			newDuration := getInterval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateInterval, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				applyInterval(currentDuration)
			}

		case <-ticker.C:
			app.performRefresh(false)
		}
	}
}

// performRefresh executes the feed pipeline (fetch, decode, merge) and
// publishes the result. On failure the previous collection stays in place.
func (app *PanelApp) performRefresh(manual bool) {
	slog.Info(config.MsgRefreshReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	cfg := app.loadRefreshConfig()

	loader := &engine.Loader{
		Clock:          app.Clock,
		Fetcher:        app.Fetcher,
		FormatBirthday: app.buildBirthdayFormatter(),
	}

	items, err := loader.RunRefresh(app.Ctx, cfg)
	if err != nil {
		slog.Warn(config.MsgStaleKept, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.TitleRefreshError, app.GetMsg(config.TKeyNotifError)))
		}
		return
	}

	// A slow response that lands after a newer trigger still wins here:
	// refreshes are serialized on the worker, last write is current.
	app.ApptMut.Lock()
	app.Appointments = items
	app.ApptMut.Unlock()

	if err := app.Relay.Update(items, app.Clock.Now()); err != nil {
		slog.Error(config.ErrICalEncode, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
	}

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifSuccess)))
	}

	fyne.Do(app.refreshPanel)
}

// CurrentAppointments returns a copy of the last published collection.
func (app *PanelApp) CurrentAppointments() []engine.Appointment {
	app.ApptMut.RLock()
	defer app.ApptMut.RUnlock()
	out := make([]engine.Appointment, len(app.Appointments))
	copy(out, app.Appointments)
	return out
}

// loadRefreshConfig assembles the engine configuration from UI preferences
// and the system keyring.
func (app *PanelApp) loadRefreshConfig() engine.RefreshConfig {
	cfg := engine.RefreshConfig{
		Mode:         app.Preferences.String(config.PrefSourceMode),
		FeedURL:      app.Preferences.String(config.PrefFeedURL),
		FeedUser:     app.Preferences.String(config.PrefUsername),
		LocalPath:    app.Preferences.String(config.PrefLocalPath),
		ContactsPath: app.Preferences.String(config.PrefContactsPath),
	}

	if cfg.FeedUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.FeedUser); err == nil {
			cfg.FeedPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.FeedUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}

	return cfg
}

// buildBirthdayFormatter returns a closure that localizes merged birthday
// titles.
func (app *PanelApp) buildBirthdayFormatter() engine.BirthdayFormatter {
	return func(name string, age int, yearKnown bool) string {
		if yearKnown {
			return app.GetMsgData(config.TKeyEvtBirthdayAge,
				map[string]interface{}{"Name": name, "Age": age},
				fmt.Sprintf(config.FallbackBirthdayAge, name, age))
		}
		return app.GetMsgData(config.TKeyEvtBirthday,
			map[string]interface{}{"Name": name},
			fmt.Sprintf(config.FallbackBirthday, name))
	}
}

// refreshStaticTexts re-applies localized labels after a language change.
func (app *PanelApp) refreshStaticTexts() {
	if app.Window != nil {
		app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
	}
	if app.lock != nil {
		app.lock.applyTexts()
	}
	if app.panel != nil {
		app.panel.applyTexts(app)
	}
	app.refreshPanel()
}
