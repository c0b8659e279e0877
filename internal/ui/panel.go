package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"pinpanel/internal/config"
	"pinpanel/internal/engine"
)

// panelView is the unlocked face of the window: action buttons on top, the
// two collection tabs below. The slices are the view model; refreshPanel
// recomputes them and the lists render from them.
type panelView struct {
	tabs        *container.AppTabs
	upcomingTab *container.TabItem
	urgentTab   *container.TabItem

	upcomingList  *widget.List
	urgentList    *widget.List
	emptyUpcoming *widget.Label
	emptyUrgent   *widget.Label

	refreshBtn  *widget.Button
	addBtn      *widget.Button
	settingsBtn *widget.Button

	upcoming []engine.Appointment
	urgent   []engine.UrgentTodo

	root fyne.CanvasObject
}

func (app *PanelApp) newPanelView() *panelView {
	p := &panelView{}

	p.upcomingList = widget.NewList(
		func() int { return len(p.upcoming) },
		func() fyne.CanvasObject {
			return widget.NewLabel("")
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < 0 || id >= len(p.upcoming) {
				return
			}
			o.(*widget.Label).SetText(app.formatApptRow(p.upcoming[id]))
		},
	)

	p.urgentList = widget.NewList(
		func() int { return len(p.urgent) },
		func() fyne.CanvasObject {
			deleteBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			return container.NewBorder(nil, nil, nil, deleteBtn, widget.NewLabel(""))
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id < 0 || id >= len(p.urgent) {
				return
			}
			todo := p.urgent[id]
			row := o.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(app.formatTodoRow(todo))
			row.Objects[1].(*widget.Button).OnTapped = func() {
				app.confirmDeleteTodo(todo)
			}
		},
	)
	p.urgentList.OnSelected = app.onUrgentSelected

	p.emptyUpcoming = widget.NewLabelWithStyle(app.GetMsg(config.TKeyEmptyUpcoming), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	p.emptyUrgent = widget.NewLabelWithStyle(app.GetMsg(config.TKeyEmptyUrgent), fyne.TextAlignCenter, fyne.TextStyle{Italic: true})

	p.upcomingTab = container.NewTabItem(app.GetMsg(config.TKeyTabUpcoming),
		container.NewStack(p.upcomingList, container.NewCenter(p.emptyUpcoming)))
	p.urgentTab = container.NewTabItem(app.GetMsg(config.TKeyTabUrgent),
		container.NewStack(p.urgentList, container.NewCenter(p.emptyUrgent)))

	p.tabs = container.NewAppTabs(p.upcomingTab, p.urgentTab)
	p.tabs.OnSelected = func(item *container.TabItem) {
		slog.Debug(config.MsgTabSelected,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyTab, item.Text)
	}

	p.refreshBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnRefresh), theme.ViewRefreshIcon(), func() {
		go app.performRefresh(true)
	})
	p.addBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAddTodo), theme.ContentAddIcon(), func() {
		app.showAddTodoDialog()
	})
	p.settingsBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSettings), theme.SettingsIcon(), func() {
		app.ShowSettingsWindow()
	})

	actions := container.NewHBox(p.refreshBtn, p.addBtn, layout.NewSpacer(), p.settingsBtn)
	p.root = container.NewBorder(actions, nil, nil, nil, p.tabs)

	return p
}

// refreshPanel recomputes both visible collections and the live tab counts.
// Must run on the UI goroutine.
func (app *PanelApp) refreshPanel() {
	if app.panel == nil {
		return
	}
	p := app.panel

	p.upcoming = engine.UpcomingAppointments(app.CurrentAppointments(), app.Clock.Now())
	p.urgent = engine.SortedUrgent(engine.PendingTodos(app.Todos.UrgentTodos()))

	p.upcomingTab.Text = fmt.Sprintf(config.FormatTabLabel, app.GetMsg(config.TKeyTabUpcoming), len(p.upcoming))
	p.urgentTab.Text = fmt.Sprintf(config.FormatTabLabel, app.GetMsg(config.TKeyTabUrgent), len(p.urgent))

	p.emptyUpcoming.Hidden = len(p.upcoming) != 0
	p.emptyUrgent.Hidden = len(p.urgent) != 0

	p.upcomingList.Refresh()
	p.urgentList.Refresh()
	p.tabs.Refresh()
}

// onUrgentSelected treats a row tap as a done toggle: the store flips the
// flag, then the list is rebuilt from the store's fresh state.
func (app *PanelApp) onUrgentSelected(id widget.ListItemID) {
	defer app.panel.urgentList.UnselectAll()

	if id < 0 || id >= len(app.panel.urgent) {
		return
	}
	todoID := app.panel.urgent[id].ID

	if err := app.Todos.ToggleUrgentDone(todoID); err != nil {
		slog.Error(config.ErrStoreQuery,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyID, todoID,
			config.LogKeyError, err)
		return
	}
	app.refreshPanel()
}

func (app *PanelApp) confirmDeleteTodo(todo engine.UrgentTodo) {
	dialog.ShowConfirm(app.GetMsg(config.TKeyBtnDelete), todo.Title, func(ok bool) {
		if !ok {
			return
		}
		if err := app.Todos.DeleteTodo(todo.ID); err != nil {
			slog.Error(config.ErrStoreQuery,
				config.LogKeyComponent, config.CompUI,
				config.LogKeyID, todo.ID,
				config.LogKeyError, err)
			return
		}
		app.refreshPanel()
	}, app.Window)
}

// showAddTodoDialog collects title, priority and an optional due time.
func (app *PanelApp) showAddTodoDialog() {
	titleEntry := widget.NewEntry()

	prioSelect := widget.NewSelect([]string{
		app.GetMsg(config.TKeyPrioHigh),
		app.GetMsg(config.TKeyPrioMedium),
		app.GetMsg(config.TKeyPrioLow),
	}, nil)
	prioSelect.SetSelected(app.GetMsg(config.TKeyPrioMedium))

	dueEntry := widget.NewEntry()
	dueEntry.PlaceHolder = config.PlaceholderDue

	itemTitle := widget.NewFormItem(app.GetMsg(config.TKeyLblTodoTitle), titleEntry)
	itemPrio := widget.NewFormItem(app.GetMsg(config.TKeyLblPriority), prioSelect)
	itemDue := widget.NewFormItem(app.GetMsg(config.TKeyLblDue), dueEntry)
	itemDue.HintText = app.GetMsg(config.TKeyHelpDue)

	items := []*widget.FormItem{itemTitle, itemPrio, itemDue}

	dialog.ShowForm(app.GetMsg(config.TKeyDlgAddTodo), app.GetMsg(config.TKeyBtnSave), app.GetMsg(config.TKeyBtnCancel), items, func(ok bool) {
		if !ok {
			return
		}

		title := strings.TrimSpace(titleEntry.Text)
		if title == "" {
			dialog.ShowError(errors.New(app.GetMsg(config.TKeyErrTitleReq)), app.Window)
			return
		}

		due, err := parseDueInput(dueEntry.Text)
		if err != nil {
			dialog.ShowError(errors.New(app.GetMsg(config.TKeyErrDueFormat)), app.Window)
			return
		}

		if _, err := app.Todos.AddTodo(title, app.priorityFromLabel(prioSelect.Selected), due); err != nil {
			dialog.ShowError(err, app.Window)
			return
		}
		app.refreshPanel()
	}, app.Window)
}

// parseDueInput interprets an optional "2006-01-02 15:04" local time. An
// empty or whitespace-only input means no due time.
func parseDueInput(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	layout := config.DateLayoutISO + " " + config.TimeLayoutHM
	parsed, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}
	return &parsed, nil
}

// formatApptRow renders one appointment line. All-day entries drop the
// start time, timed entries append the localized duration.
func (app *PanelApp) formatApptRow(a engine.Appointment) string {
	if a.Start == config.AllDayStart && a.DurationMin == config.AllDayDurationMin {
		return a.Date + "  " + a.Title
	}
	row := a.Date + " " + a.Start + "  " + a.Title
	if a.DurationMin > 0 {
		row += " (" + app.GetMsgData(config.TKeyMinutesShort,
			map[string]interface{}{"Count": a.DurationMin},
			fmt.Sprintf("%d min", a.DurationMin)) + ")"
	}
	return row
}

// formatTodoRow renders one todo line with its priority band and the
// optional due time. The urgent tab only feeds it open items, but the
// formatter does not rely on that.
func (app *PanelApp) formatTodoRow(t engine.UrgentTodo) string {
	glyph := config.GlyphOpen
	if t.Done {
		glyph = config.GlyphDone
	}
	row := glyph + " " + t.Title + " [" + app.priorityLabel(t.Priority) + "]"
	if t.DueAt != nil {
		layout := app.GetMsg(config.TKeyFormatDate)
		if layout == config.TKeyFormatDate {
			layout = config.DateLayoutISO + " " + config.TimeLayoutHM
		}
		when := t.DueAt.Format(layout)
		row += "  " + app.GetMsgData(config.TKeyDueAt,
			map[string]interface{}{"When": when},
			"due "+when)
	}
	return row
}

// priorityLabel maps a priority to its localized display name.
func (app *PanelApp) priorityLabel(p engine.Priority) string {
	switch p {
	case engine.PriorityHigh:
		return app.GetMsg(config.TKeyPrioHigh)
	case engine.PriorityLow:
		return app.GetMsg(config.TKeyPrioLow)
	default:
		return app.GetMsg(config.TKeyPrioMedium)
	}
}

// priorityFromLabel maps a localized display name back to the stored value.
func (app *PanelApp) priorityFromLabel(label string) engine.Priority {
	switch label {
	case app.GetMsg(config.TKeyPrioHigh):
		return engine.PriorityHigh
	case app.GetMsg(config.TKeyPrioLow):
		return engine.PriorityLow
	default:
		return engine.PriorityMedium
	}
}

// applyTexts re-applies localized labels after a language change. Tab
// titles carry live counts and are rewritten by refreshPanel instead.
func (p *panelView) applyTexts(app *PanelApp) {
	p.refreshBtn.SetText(app.GetMsg(config.TKeyBtnRefresh))
	p.addBtn.SetText(app.GetMsg(config.TKeyBtnAddTodo))
	p.settingsBtn.SetText(app.GetMsg(config.TKeyBtnSettings))
	p.emptyUpcoming.SetText(app.GetMsg(config.TKeyEmptyUpcoming))
	p.emptyUrgent.SetText(app.GetMsg(config.TKeyEmptyUrgent))
}
