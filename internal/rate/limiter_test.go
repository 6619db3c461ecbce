package rate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowUpToLimit(t *testing.T) {
	l := NewMemory()
	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("write:1.2.3.4", 3, time.Minute)
		require.True(t, ok, "event %d", i)
	}
	ok, retry := l.Allow("write:1.2.3.4", 3, time.Minute)
	require.False(t, ok)
	require.Greater(t, retry, time.Duration(0))
	require.LessOrEqual(t, retry, 20*time.Second)
}

func TestKeysAreIndependent(t *testing.T) {
	l := NewMemory()
	ok, _ := l.Allow("a", 1, time.Minute)
	require.True(t, ok)
	ok, _ = l.Allow("a", 1, time.Minute)
	require.False(t, ok)
	ok, _ = l.Allow("b", 1, time.Minute)
	require.True(t, ok)
}

func TestRefill(t *testing.T) {
	l := NewMemory()
	ok, _ := l.Allow("a", 1, 20*time.Millisecond)
	require.True(t, ok)
	ok, _ = l.Allow("a", 1, 20*time.Millisecond)
	require.False(t, ok)
	require.Eventually(t, func() bool {
		ok, _ := l.Allow("a", 1, 20*time.Millisecond)
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestNonPositiveLimitDisables(t *testing.T) {
	l := NewMemory()
	for i := 0; i < 100; i++ {
		ok, _ := l.Allow("a", 0, time.Minute)
		require.True(t, ok)
	}
}
