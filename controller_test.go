package unitmod

import (
	"errors"
	"testing"

	"github.com/GoCodeAlone/unitmod/klog"
	"github.com/GoCodeAlone/unitmod/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type resource struct{ released bool }

func TestController_InitThenCleanup(t *testing.T) {
	ring := klog.NewRing(16)
	payload := &resource{}
	u := &recordingUnit{payload: payload}
	c := NewController(u, newThis("hello", ring))

	assert.Equal(t, lifecycle.StateUninitialized, c.State())
	require.NoError(t, c.Init())
	assert.Equal(t, lifecycle.StateActive, c.State())

	assert.True(t, c.Cleanup())
	assert.Equal(t, lifecycle.StateUnloaded, c.State())
	assert.Equal(t, int32(1), u.cleanups.Load())
	assert.Same(t, payload, u.gotPayload.Load())

	recs := ring.Records()
	require.NotEmpty(t, recs)
	assert.Equal(t, "hello", recs[0].Source)
}

func TestController_CleanupRunsOnce(t *testing.T) {
	u := &recordingUnit{}
	c := NewController(u, newThis("u", klog.NewRing(4)))
	require.NoError(t, c.Init())

	assert.True(t, c.Cleanup())
	assert.False(t, c.Cleanup())
	assert.Equal(t, int32(1), u.cleanups.Load())
}

func TestController_InitFailure(t *testing.T) {
	u := &recordingUnit{initErr: errDependencyUnusable}
	c := NewController(u, newThis("u", klog.NewRing(4)))

	err := c.Init()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInitFailed)
	assert.ErrorIs(t, err, errDependencyUnusable)

	var initErr *InitError
	require.True(t, errors.As(err, &initErr))
	assert.Equal(t, "u", initErr.Unit)
	assert.Equal(t, `init unit "u": dependency unusable`, err.Error())

	assert.Equal(t, lifecycle.StateFailed, c.State())
	assert.ErrorIs(t, c.Err(), errDependencyUnusable)

	// no cleanup after a failed init
	assert.False(t, c.Cleanup())
	assert.Equal(t, int32(0), u.cleanups.Load())
}

func TestController_InitPanicBecomesInitError(t *testing.T) {
	u := &recordingUnit{initPanic: "kaboom"}
	c := NewController(u, newThis("u", klog.NewRing(4)))

	var err error
	assert.NotPanics(t, func() { err = c.Init() })
	assert.ErrorIs(t, err, ErrInitPanic)
	assert.Equal(t, lifecycle.StateFailed, c.State())
}

func TestController_InitOnlyOnce(t *testing.T) {
	u := &recordingUnit{}
	c := NewController(u, newThis("u", klog.NewRing(4)))
	require.NoError(t, c.Init())

	assert.ErrorIs(t, c.Init(), lifecycle.ErrInvalidTransition)
	assert.Equal(t, int32(1), u.inits.Load())
}

func TestController_CleanupPanicIsLogged(t *testing.T) {
	ring := klog.NewRing(8)
	u := UnitFunc{CleanupFunc: func(Payload) { panic("bad release") }}
	c := NewController(u, newThis("u", ring))
	require.NoError(t, c.Init())

	assert.NotPanics(t, func() { assert.True(t, c.Cleanup()) })
	assert.Equal(t, lifecycle.StateUnloaded, c.State())

	recs := ring.Records()
	require.NotEmpty(t, recs)
	last := recs[len(recs)-1]
	assert.Equal(t, klog.SeverityError, last.Severity)
	assert.Contains(t, last.Message, "bad release")
}

func TestController_History(t *testing.T) {
	c := NewController(UnitFunc{}, newThis("u", klog.NewRing(4)))
	require.NoError(t, c.Init())
	c.Cleanup()

	hist := c.History()
	require.Len(t, hist, 2)
	assert.Equal(t, lifecycle.StateActive, hist[0].To)
	assert.Equal(t, lifecycle.StateUnloaded, hist[1].To)
}
