// Package gate implements the passcode screen state machine that fronts the
// panel. It owns the digit entry buffer, the single exact comparison per
// full entry, the mismatch cooldown timer and the session unlock marker.
package gate

import (
	"log/slog"
	"sync"
	"time"

	"pinpanel/internal/config"
)

// AccessGate accumulates digits until the entry reaches the passcode
// length, at which point it is compared exactly once. A match unlocks for
// the rest of the session; a mismatch raises the error flag and arms a
// timer that wipes entry and flag together. Unlock never regresses: the
// type has no re-lock operation, and restoring from the session marker is
// idempotent.
//
// All methods are safe for concurrent use. The observer callback runs
// without the gate lock held and may arrive on a timer goroutine.
type AccessGate struct {
	// ClearDelay is how long a rejected entry stays on screen before the
	// wipe. Zero means config.MismatchClearDelay; tests shorten it.
	ClearDelay time.Duration

	mu       sync.Mutex
	passcode string
	session  SessionStore
	entry    string
	unlocked bool
	mismatch bool
	pending  *time.Timer
	timerGen uint64
	onChange func()
}

// New builds a locked gate for the given passcode. The session store
// carries the unlock marker across view rebuilds within one run.
func New(passcode string, session SessionStore) *AccessGate {
	return &AccessGate{
		ClearDelay: config.MismatchClearDelay,
		passcode:   passcode,
		session:    session,
	}
}

// ValidCode reports whether s is usable as a panel passcode: exactly the
// fixed length, digits only.
func ValidCode(s string) bool {
	if len(s) != config.PasscodeLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SetOnChange registers a callback fired after every observable state
// change, including the delayed wipe.
func (g *AccessGate) SetOnChange(fn func()) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// SubmitDigit appends one digit to the entry. Non-digit runes are dropped,
// as is any input while the entry is already full or the gate is unlocked.
// Filling the entry triggers the comparison.
func (g *AccessGate) SubmitDigit(r rune) {
	g.mu.Lock()
	if g.unlocked || r < '0' || r > '9' || len(g.entry) >= config.PasscodeLength {
		g.mu.Unlock()
		return
	}

	g.entry += string(r)
	if len(g.entry) == config.PasscodeLength {
		if g.entry == g.passcode {
			g.unlockLocked()
		} else {
			g.mismatch = true
			g.armWipeLocked()
			slog.Info(config.MsgGateMismatch, config.LogKeyComponent, config.CompGate)
		}
	}
	fn := g.onChange
	g.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Clear wipes the entry and error state immediately and disarms any pending
// wipe so it cannot clobber digits typed after this call.
func (g *AccessGate) Clear() {
	g.mu.Lock()
	g.cancelWipeLocked()
	changed := g.entry != "" || g.mismatch
	g.entry = ""
	g.mismatch = false
	fn := g.onChange
	g.mu.Unlock()
	if !changed {
		return
	}
	slog.Debug(config.MsgGateCleared, config.LogKeyComponent, config.CompGate)
	if fn != nil {
		fn()
	}
}

// RestoreFromSession applies the session unlock marker, returning the
// resulting unlock state. The view calls this once while mounting; extra
// calls are harmless and an already unlocked gate stays unlocked even when
// the marker is absent.
func (g *AccessGate) RestoreFromSession() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unlocked {
		return true
	}
	if g.session != nil {
		if v, ok := g.session.Get(config.SessionKeyUnlocked); ok && v == config.SessionValUnlocked {
			g.unlocked = true
			slog.Info(config.MsgGateRestored, config.LogKeyComponent, config.CompGate)
		}
	}
	return g.unlocked
}

// Unlocked reports whether the panel is open for this session.
func (g *AccessGate) Unlocked() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.unlocked
}

// Entry returns the digits accumulated so far. Callers render its length,
// never its content.
func (g *AccessGate) Entry() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.entry
}

// Mismatch reports whether the last full entry was rejected and the wipe
// has not run yet.
func (g *AccessGate) Mismatch() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mismatch
}

// unlockLocked flips the gate open after a full entry matched. Caller holds
// the lock.
func (g *AccessGate) unlockLocked() {
	g.unlocked = true
	g.mismatch = false
	g.entry = ""
	g.cancelWipeLocked()
	if g.session != nil {
		g.session.Set(config.SessionKeyUnlocked, config.SessionValUnlocked)
	}
	slog.Info(config.MsgGateUnlock, config.LogKeyComponent, config.CompGate)
}

// armWipeLocked replaces any armed timer with a fresh one. Caller holds the
// lock.
func (g *AccessGate) armWipeLocked() {
	g.cancelWipeLocked()
	gen := g.timerGen
	delay := g.ClearDelay
	if delay <= 0 {
		delay = config.MismatchClearDelay
	}
	g.pending = time.AfterFunc(delay, func() { g.wipe(gen) })
}

// cancelWipeLocked stops the armed timer and bumps the generation so a
// timer that already fired and is waiting on the lock becomes a no-op.
// Caller holds the lock.
func (g *AccessGate) cancelWipeLocked() {
	g.timerGen++
	if g.pending != nil {
		g.pending.Stop()
		g.pending = nil
	}
}

// wipe clears entry and error flag if the arming generation is still
// current. A stale timer that lost the race against Clear or a newer
// mismatch does nothing.
func (g *AccessGate) wipe(gen uint64) {
	g.mu.Lock()
	if gen != g.timerGen {
		g.mu.Unlock()
		return
	}
	g.entry = ""
	g.mismatch = false
	g.pending = nil
	fn := g.onChange
	g.mu.Unlock()
	if fn != nil {
		fn()
	}
}
