package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"pinpanel/internal/config"
)

// RefreshConfig contains all parameters required to perform a feed refresh.
type RefreshConfig struct {
	Mode         string // config.SourceModeWeb or config.SourceModeLocal
	FeedURL      string // Remote feed endpoint
	FeedUser     string // HTTP Basic Auth Username
	FeedPass     string // HTTP Basic Auth Password
	LocalPath    string // Absolute path to a .json or .ics file
	ContactsPath string // Optional .vcf whose birthdays merge into the collection
}

// Loader is the core service turning a configured source into the appointment
// collection the panel shows and the relay republishes.
type Loader struct {
	Clock   Clock       // Interface for time mocking.
	Fetcher FeedFetcher // Interface for network abstraction.

	// FormatBirthday allows the UI to inject localized titles for merged birthday rows.
	FormatBirthday BirthdayFormatter
}

// RunRefresh executes the fetch, decode and merge pipeline. On any feed
// failure it returns an error and no items, and callers keep their previous
// collection. The birthday merge is best-effort and never fails the refresh.
func (l *Loader) RunRefresh(ctx context.Context, cfg RefreshConfig) ([]Appointment, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgRefreshStart)

	reader, err := l.acquireStream(ctx, cfg)
	if err != nil {
		// If context error occurred during acquisition, return it directly.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w", config.ErrFeedFetch, err)
	}
	// Best effort close. Errors in Close() for read-only streams are rarely actionable here.
	defer func() { _ = reader.Close() }()

	// Check for early cancellation before processing
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := decodeAppointments(reader)
	if err != nil {
		return nil, err
	}

	now := l.Clock.Now()
	merged := 0
	if cfg.ContactsPath != "" {
		birthdays := l.loadBirthdays(ctx, cfg.ContactsPath, now)
		items = append(items, birthdays...)
		merged = len(birthdays)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logSuccess(items, merged, now)
	log.Debug("Refresh finished", config.LogKeyDuration, time.Since(start).Milliseconds())
	return items, nil
}

// acquireStream opens the appropriate data source based on configuration.
func (l *Loader) acquireStream(ctx context.Context, cfg RefreshConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.FeedURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if l.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return l.Fetcher.Fetch(ctx, cfg.FeedURL, cfg.FeedUser, cfg.FeedPass)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// decodeAppointments sniffs the payload format: the JSON document opens with
// '{', anything else is treated as iCalendar.
func decodeAppointments(r io.Reader) ([]Appointment, error) {
	br := bufio.NewReader(r)

	for {
		b, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrFeedDecode, err)
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrFeedDecode, err)
		}
		if b == '{' {
			return DecodeFeed(br)
		}
		return DecodeCalendar(br, time.Local)
	}
}

// loadBirthdays opens and projects the contacts file. Failures degrade to a
// warning; the feed result still applies.
func (l *Loader) loadBirthdays(ctx context.Context, path string, now time.Time) []Appointment {
	f, err := os.Open(path)
	if err != nil {
		slog.Warn(config.MsgContactsSkipped,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyPath, path,
			config.LogKeyError, err)
		return nil
	}
	defer func() { _ = f.Close() }()

	items, err := DecodeBirthdays(ctx, f, now, l.FormatBirthday)
	if err != nil {
		slog.Warn(config.MsgContactsSkipped,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeyPath, path,
			config.LogKeyError, err)
		return nil
	}
	return items
}

// logSuccess logs the final statistics of the refresh.
func (l *Loader) logSuccess(items []Appointment, merged int, now time.Time) {
	today := now.Format(config.DateLayoutISO)
	todayCount := 0
	for _, a := range items {
		if a.Date == today {
			todayCount++
		}
	}

	slog.Info(config.MsgRefreshOK,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyItems, len(items)),
			slog.Int(config.LogKeyBirthdays, merged),
			slog.Int(config.LogKeyToday, todayCount),
		),
	)
}
