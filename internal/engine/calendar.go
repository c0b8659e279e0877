package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"pinpanel/internal/config"
)

// DecodeCalendar converts an iCalendar stream into appointments. One
// malformed event is skipped rather than sinking the whole refresh; a
// malformed stream is an error and the caller keeps its previous collection.
func DecodeCalendar(r io.Reader, loc *time.Location) ([]Appointment, error) {
	dec := ical.NewDecoder(r)
	var items []Appointment

	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrICalDecode, err)
		}

		for _, ev := range cal.Events() {
			item, ok := appointmentFromEvent(ev, loc)
			if !ok {
				slog.Debug(config.MsgSkippedEvent,
					config.LogKeyComponent, config.CompEngine)
				continue
			}
			items = append(items, item)
		}
	}
	return items, nil
}

// appointmentFromEvent maps a single VEVENT. Events without a summary or a
// start date carry nothing the panel can show.
func appointmentFromEvent(ev ical.Event, loc *time.Location) (Appointment, bool) {
	title := ""
	if p := ev.Props.Get(config.PropSummary); p != nil {
		title = p.Value
	}
	if title == "" {
		return Appointment{}, false
	}

	start, err := ev.DateTimeStart(loc)
	if err != nil || start.IsZero() {
		return Appointment{}, false
	}

	// DateTimeEnd falls back to DTSTART+DURATION, and to +24h for all-day
	// events, so the subtraction covers every event shape.
	duration := config.DefaultDurationMin
	if end, err := ev.DateTimeEnd(loc); err == nil && end.After(start) {
		duration = int(end.Sub(start) / time.Minute)
	}

	id := ""
	if p := ev.Props.Get(config.PropUID); p != nil {
		id = p.Value
	}
	if id == "" {
		id = deterministicID(title, start.Format(time.RFC3339))
	}

	return Appointment{
		ID:          id,
		Title:       title,
		Date:        start.Format(config.DateLayoutISO),
		Start:       start.Format(config.TimeLayoutHM),
		DurationMin: duration,
	}, true
}

// EncodeCalendar renders a collection as a VCALENDAR so calendar apps can
// subscribe to the relay. All-day rows (birthday merges) become VALUE=DATE
// events; everything else gets a timed DTSTART/DTEND pair.
func EncodeCalendar(items []Appointment, now time.Time) ([]byte, error) {
	if len(items) == 0 {
		// A valid but empty VCALENDAR keeps subscribed clients from flagging
		// the feed as broken.
		return []byte(config.StubVCalendar), nil
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	// RFC 7986: Suggest a refresh interval (Standardized in config)
	refreshProp := ical.NewProp(config.PropRefresh)
	refreshProp.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refreshProp)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	layout := config.DateLayoutISO + " " + config.TimeLayoutHM

	for i, a := range items {
		start, err := time.ParseInLocation(layout, a.Date+" "+a.Start, now.Location())
		if err != nil {
			slog.Debug(config.MsgSkippedEvent,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyID, a.ID)
			continue
		}

		event := ical.NewEvent()

		id := a.ID
		if id == "" {
			// Published UIDs follow the hash-index@domain convention so even
			// duplicate title/time rows stay distinct for subscribers.
			id = fmt.Sprintf(config.FormatUID,
				deterministicID(a.Title, a.Date+"T"+a.Start), i, config.ICalDomain)
		}
		event.Props.SetText(config.PropUID, id)
		event.Props.SetText(config.PropSummary, a.Title)

		dtStartProp := ical.NewProp(config.PropDTStart)
		if a.Start == config.AllDayStart && a.DurationMin == config.AllDayDurationMin {
			dtStartProp.SetDate(start)
			event.Props.Set(dtStartProp)
		} else {
			dtStartProp.SetDateTime(start)
			event.Props.Set(dtStartProp)

			dtEndProp := ical.NewProp(config.PropDTEnd)
			dtEndProp.SetDateTime(start.Add(time.Duration(a.DurationMin) * time.Minute))
			event.Props.Set(dtEndProp)
		}

		event.Props.Set(dtStampProp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}
