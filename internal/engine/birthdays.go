package engine

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-vcard"

	"pinpanel/internal/config"
)

// BirthdayFormatter renders a localized row title for a merged birthday.
// Age is only meaningful when yearKnown is true.
type BirthdayFormatter func(name string, age int, yearKnown bool) string

// DecodeBirthdays projects the birthdays of a vCard stream onto the
// appointment collection: each contact with a parseable BDAY becomes an
// all-day row on its next occurrence relative to now. Malformed cards are
// skipped to maximize data recovery.
func DecodeBirthdays(ctx context.Context, r io.Reader, now time.Time, format BirthdayFormatter) ([]Appointment, error) {
	decoder := vcard.NewDecoder(r)
	stats := struct{ processed, withBday, today int }{0, 0, 0}
	var items []Appointment

	today := now.Format(config.DateLayoutISO)

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyError, err)
			continue
		}

		stats.processed++
		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birthDate, yearKnown, err := parseDate(bday.Value)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyValue, bday.Value)
			continue
		}
		stats.withBday++

		// Name Strategy: FN (Formatted) > N (Structured) > Fallback
		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil {
			name = n.Value
		}

		nextOcc, ageNext := calculateNextOccurrence(now, birthDate, yearKnown)
		date := nextOcc.Format(config.DateLayoutISO)
		if date == today {
			stats.today++
			slog.Info(config.MsgBdayToday,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, name)
		}

		title := fmt.Sprintf(config.FallbackBirthday, name)
		if format != nil {
			title = format(name, ageNext, yearKnown)
		}

		items = append(items, Appointment{
			ID:          deterministicID(name, birthDate.Format(time.RFC3339)),
			Title:       title,
			Date:        date,
			Start:       config.AllDayStart,
			DurationMin: config.AllDayDurationMin,
		})
	}

	slog.Debug("Contacts processed",
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int("total_cards", stats.processed),
			slog.Int("birthdays_found", stats.withBday),
			slog.Int("birthdays_today", stats.today),
		),
	)
	return items, nil
}

// deterministicID hashes identity inputs so merged rows keep a stable id
// across refreshes.
func deterministicID(name, date string) string {
	input := fmt.Sprintf(config.FormatHashInput, name, date, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash[:config.UIDHashLength])
}

// calculateNextOccurrence determines the next birthday date relative to 'now'.
func calculateNextOccurrence(now time.Time, birthDate time.Time, yearKnown bool) (time.Time, int) {
	currentYear := now.Year()
	// Use the location of 'now' to ensure timezone consistency.
	loc := now.Location()

	// Create a candidate date for the current year.
	// Go's time.Date normalizes Feb 29 to March 1st if currentYear is not a leap year.
	candidate := time.Date(currentYear, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)

	// Check if this candidate date is in the past (strictly before the start of today).
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if candidate.Before(todayStart) {
		// Birthday has already passed this year, next one is next year.
		candidate = time.Date(currentYear+1, birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, loc)
	}

	ageNext := 0
	if yearKnown {
		ageNext = candidate.Year() - birthDate.Year()
	}

	return candidate, ageNext
}

// parseDate handles various vCard date formats.
func parseDate(value string) (time.Time, bool, error) {
	// Full dates (Year known)
	formatsWithYear := []string{
		config.DateLayoutISO,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	// Truncated dates (Year unknown) - vCard specific
	// Safe leap year fallback
	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
