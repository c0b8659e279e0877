// Package server embeds a localhost relay that republishes the panel's
// merged appointment collection to other clients on the machine: the JSON
// feed document at / and an iCalendar rendering at /calendar.ics.
package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"pinpanel/internal/config"
	"pinpanel/internal/engine"
)

// snapshot holds both rendered forms of one collection plus the metadata
// for HTTP caching. It is replaced wholesale on every refresh.
type snapshot struct {
	jsonBody     []byte
	jsonETag     string
	icsBody      []byte
	icsETag      string
	lastModified string // RFC1123 format required by HTTP headers
}

// FeedRelay serves the last successfully merged collection via HTTP.
type FeedRelay struct {
	// cache uses atomic.Pointer for lock-free reads. Clients poll often
	// while updates only arrive on refresh, so this avoids RWMutex
	// contention on the hot path (HTTP GET).
	cache atomic.Pointer[snapshot]
	Port  string
}

// NewFeedRelay creates a relay that will bind to the given localhost port.
func NewFeedRelay(port string) *FeedRelay {
	return &FeedRelay{Port: port}
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *FeedRelay) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.handleFeedRequest)
	mux.HandleFunc(config.RouteCalendar, s.handleCalendarRequest)

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompRelay,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompRelay)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Update renders items into both wire forms and swaps them in atomically.
// Until the first successful call, handlers answer 503.
func (s *FeedRelay) Update(items []engine.Appointment, now time.Time) error {
	jsonBody, err := engine.EncodeFeed(items)
	if err != nil {
		return err
	}
	icsBody, err := engine.EncodeCalendar(items, now)
	if err != nil {
		return err
	}

	item := &snapshot{
		jsonBody:     jsonBody,
		jsonETag:     etagFor(jsonBody),
		icsBody:      icsBody,
		icsETag:      etagFor(icsBody),
		lastModified: now.UTC().Format(http.TimeFormat),
	}

	// Atomic store ensures a concurrent reader sees either the old or the
	// new complete snapshot, never a partial state.
	s.cache.Store(item)

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompRelay,
		config.LogKeyCount, len(items),
		config.LogKeySizeBytes, len(jsonBody),
		config.LogKeyETag, item.jsonETag,
	)
	return nil
}

func etagFor(body []byte) string {
	hash := sha256.Sum256(body)
	return fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))
}

// handleFeedRequest serves the JSON feed document with HTTP caching support.
func (s *FeedRelay) handleFeedRequest(w http.ResponseWriter, r *http.Request) {
	// The root pattern matches every unregistered path.
	if r.URL.Path != config.RouteRoot {
		http.NotFound(w, r)
		return
	}
	s.serveCached(w, r, config.MimeJSON, func(item *snapshot) ([]byte, string) {
		return item.jsonBody, item.jsonETag
	})
}

// handleCalendarRequest serves the ICS rendering with HTTP caching support.
func (s *FeedRelay) handleCalendarRequest(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, config.MimeTextCalendar, func(item *snapshot) ([]byte, string) {
		return item.icsBody, item.icsETag
	})
}

func (s *FeedRelay) serveCached(w http.ResponseWriter, r *http.Request, mime string, pick func(*snapshot) ([]byte, string)) {
	// 1. Method Validation
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	// 2. Load Data (Atomic / Lock-Free)
	item := s.cache.Load()

	// 3. Readiness Check
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	body, etag := pick(item)

	// 4. Set Response Headers
	w.Header().Set(config.HeaderContentType, mime)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, etag)
	w.Header().Set(config.HeaderLastModified, item.lastModified)

	// 5. Check Conditional Headers (Client Caching)
	if match := r.Header.Get(config.HeaderIfNoneMatch); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					w.WriteHeader(http.StatusNotModified)
					return
				}
			}
		}
	}

	// 6. Serve Content
	if r.Method == http.MethodGet {
		if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
			slog.Error(config.ErrWriteResp,
				config.LogKeyComponent, config.CompRelay,
				config.LogKeyError, err,
			)
		}
	}
}
