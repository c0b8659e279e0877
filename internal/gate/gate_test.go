package gate_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinpanel/internal/config"
	"pinpanel/internal/gate"
)

func newGate(t *testing.T, passcode string) (*gate.AccessGate, *gate.MemorySession) {
	t.Helper()
	sess := gate.NewMemorySession()
	g := gate.New(passcode, sess)
	g.ClearDelay = 40 * time.Millisecond
	return g, sess
}

func typeCode(g *gate.AccessGate, code string) {
	for _, r := range code {
		g.SubmitDigit(r)
	}
}

func TestSubmitDigit_Accumulates(t *testing.T) {
	g, _ := newGate(t, "123")

	g.SubmitDigit('1')
	assert.Equal(t, "1", g.Entry())

	g.SubmitDigit('2')
	assert.Equal(t, "12", g.Entry())
	assert.False(t, g.Unlocked())
	assert.False(t, g.Mismatch())
}

func TestSubmitDigit_IgnoresNonDigits(t *testing.T) {
	g, _ := newGate(t, "123")

	// '/' and ':' sit directly outside the ASCII digit range.
	for _, r := range []rune{'a', 'Z', ' ', '-', '#', '\n', '/', ':', 'é'} {
		g.SubmitDigit(r)
	}

	assert.Empty(t, g.Entry())
	assert.False(t, g.Mismatch())
}

func TestUnlock_CorrectCode(t *testing.T) {
	g, sess := newGate(t, "123")

	typeCode(g, "123")

	assert.True(t, g.Unlocked())
	assert.Empty(t, g.Entry())
	assert.False(t, g.Mismatch())

	v, ok := sess.Get(config.SessionKeyUnlocked)
	require.True(t, ok, "unlock must persist the session marker")
	assert.Equal(t, config.SessionValUnlocked, v)
}

func TestUnlock_IsMonotonic(t *testing.T) {
	g, _ := newGate(t, "123")
	typeCode(g, "123")
	require.True(t, g.Unlocked())

	// Nothing flips an unlocked gate back: not wrong digits, not Clear,
	// not a restore against a session missing the marker.
	typeCode(g, "999")
	assert.True(t, g.Unlocked())
	assert.Empty(t, g.Entry())

	g.Clear()
	assert.True(t, g.Unlocked())

	assert.True(t, g.RestoreFromSession())
	assert.True(t, g.Unlocked())
}

func TestMismatch_SetsFlagAndAutoClears(t *testing.T) {
	g, _ := newGate(t, "123")

	typeCode(g, "124")

	assert.False(t, g.Unlocked())
	assert.True(t, g.Mismatch())
	assert.Equal(t, "124", g.Entry())

	require.Eventually(t, func() bool {
		return !g.Mismatch() && g.Entry() == ""
	}, time.Second, 5*time.Millisecond, "wipe must clear entry and flag together")
	assert.False(t, g.Unlocked())
}

func TestMismatch_EntryStaysFullUntilWipe(t *testing.T) {
	g, _ := newGate(t, "123")
	g.ClearDelay = 300 * time.Millisecond

	typeCode(g, "457")
	require.True(t, g.Mismatch())

	g.SubmitDigit('1')
	assert.Equal(t, "457", g.Entry())
	assert.True(t, g.Mismatch())
}

func TestUnlock_AfterMismatchWipe(t *testing.T) {
	g, _ := newGate(t, "123")

	typeCode(g, "124")
	require.Eventually(t, func() bool {
		return g.Entry() == ""
	}, time.Second, 5*time.Millisecond)

	typeCode(g, "123")
	assert.True(t, g.Unlocked())
}

func TestClear_CancelsPendingWipe(t *testing.T) {
	g, _ := newGate(t, "123")
	g.ClearDelay = 60 * time.Millisecond

	typeCode(g, "999")
	require.True(t, g.Mismatch())

	g.Clear()
	assert.Empty(t, g.Entry())
	assert.False(t, g.Mismatch())

	// Retype inside the original window; the cancelled timer must not
	// clobber the fresh digit when its deadline passes.
	g.SubmitDigit('1')
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, "1", g.Entry())
}

func TestClear_AtEveryEntryLength(t *testing.T) {
	for _, typed := range []string{"", "9", "98", "987"} {
		g, _ := newGate(t, "123")
		typeCode(g, typed)

		g.Clear()

		assert.Empty(t, g.Entry(), "typed %q", typed)
		assert.False(t, g.Mismatch(), "typed %q", typed)
		assert.False(t, g.Unlocked(), "typed %q", typed)
	}
}

func TestRestoreFromSession(t *testing.T) {
	sess := gate.NewMemorySession()

	first := gate.New("123", sess)
	typeCode(first, "123")
	require.True(t, first.Unlocked())

	// A rebuilt gate over the same session picks the marker up once.
	second := gate.New("123", sess)
	assert.False(t, second.Unlocked())
	assert.True(t, second.RestoreFromSession())
	assert.True(t, second.Unlocked())
	assert.True(t, second.RestoreFromSession())

	fresh := gate.New("123", gate.NewMemorySession())
	assert.False(t, fresh.RestoreFromSession())
	assert.False(t, fresh.Unlocked())
}

func TestOnChange_FiresForEveryTransition(t *testing.T) {
	g, _ := newGate(t, "123")

	var mu sync.Mutex
	count := 0
	g.SetOnChange(func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	typeCode(g, "124")

	// Three digits plus the delayed wipe.
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count >= 4
	}, time.Second, 5*time.Millisecond)
	assert.Empty(t, g.Entry())
}

func TestSubmitDigit_Concurrent(t *testing.T) {
	g, _ := newGate(t, "000")
	g.ClearDelay = 5 * time.Second

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.SubmitDigit('9')
		}()
	}
	wg.Wait()

	assert.Len(t, g.Entry(), config.PasscodeLength)
	assert.True(t, g.Mismatch())
	assert.False(t, g.Unlocked())
}

func TestValidCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"123", true},
		{"000", true},
		{"999", true},
		{"12", false},
		{"1234", false},
		{"12a", false},
		{"1 3", false},
		{"", false},
		{"-12", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, gate.ValidCode(tc.code), "code %q", tc.code)
	}
}

func TestMemorySession_SetGet(t *testing.T) {
	sess := gate.NewMemorySession()

	_, ok := sess.Get("missing")
	assert.False(t, ok)

	sess.Set("k", "v1")
	v, ok := sess.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	sess.Set("k", "v2")
	v, _ = sess.Get("k")
	assert.Equal(t, "v2", v)
}
