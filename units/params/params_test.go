package params_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/unitmod"
	"github.com/GoCodeAlone/unitmod/klog"
	"github.com/GoCodeAlone/unitmod/units/params"
)

func messages(ring *klog.Ring, source string) []string {
	var out []string
	for _, r := range ring.Records() {
		if r.Source == source {
			out = append(out, r.Message)
		}
	}
	return out
}

func TestParams_DefaultGreetings(t *testing.T) {
	ring := klog.NewRing(64)
	host := unitmod.NewHost(unitmod.WithSink(ring))

	h, err := host.Load(context.Background(), params.Spec(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Hello world!",
		"0 Hello, Mom",
		"1 Hello, Mom",
		"2 Hello, Mom",
	}, messages(ring, params.Name))

	require.NoError(t, h.Unload())
	msgs := messages(ring, params.Name)
	assert.Equal(t, "Bye world!", msgs[len(msgs)-1])
}

func TestParams_Overrides(t *testing.T) {
	ring := klog.NewRing(64)
	host := unitmod.NewHost(unitmod.WithSink(ring))

	_, err := host.Load(context.Background(), params.Spec(), map[string]string{
		params.ParamHowMany: "2",
		params.ParamWhom:    "Dad",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Hello world!", "0 Hello, Dad", "1 Hello, Dad"}, messages(ring, params.Name))
}

func TestParams_ZeroAndNegativeCount(t *testing.T) {
	for _, n := range []int{0, -4} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			ring := klog.NewRing(64)
			host := unitmod.NewHost(unitmod.WithSink(ring))

			_, err := host.Load(context.Background(), params.Spec(), map[string]string{
				params.ParamHowMany: fmt.Sprint(n),
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"Hello world!"}, messages(ring, params.Name))
		})
	}
}

func TestParams_InvalidTextFailsInit(t *testing.T) {
	spec := params.Spec()
	store, err := unitmod.NewStore(spec.Params...)
	require.NoError(t, err)
	require.NoError(t, store.Write(params.ParamWhom, unitmod.BytesValue([]byte{0xff, 0xfe})))

	ring := klog.NewRing(16)
	this := unitmod.NewThisUnit(spec.Descriptor, store, klog.NewLogger(ring, params.Name))

	var payload unitmod.Payload
	require.NotPanics(t, func() {
		payload, err = spec.Unit.Init(params.Name, this)
	})
	require.ErrorIs(t, err, unitmod.ErrEncoding)
	assert.Nil(t, payload)
	assert.Equal(t, []string{"Hello world!"}, messages(ring, params.Name))
}

func TestParams_InvalidTextFailsLoad(t *testing.T) {
	host := unitmod.NewHost()

	_, err := host.Load(context.Background(), params.Spec(), map[string]string{
		params.ParamWhom: "M\xffm",
	})
	var initErr *unitmod.InitError
	require.ErrorAs(t, err, &initErr)
	assert.ErrorIs(t, err, unitmod.ErrEncoding)
	assert.ErrorIs(t, err, unitmod.ErrInitFailed)

	_, ok := host.Unit(params.Name)
	assert.False(t, ok)
}
