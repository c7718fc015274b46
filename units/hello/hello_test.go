package hello_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/unitmod"
	"github.com/GoCodeAlone/unitmod/klog"
	"github.com/GoCodeAlone/unitmod/units/hello"
)

func TestHello_LoadUnload(t *testing.T) {
	ring := klog.NewRing(16)
	host := unitmod.NewHost(unitmod.WithSink(ring))

	h, err := host.Load(context.Background(), hello.Spec(), nil)
	require.NoError(t, err)
	assert.Equal(t, "A simple hello world example", h.Descriptor().Description)
	assert.Equal(t, unitmod.LicenseGPLCompatible, h.Descriptor().License)
	require.NoError(t, h.Unload())

	var got []string
	for _, r := range ring.Records() {
		if r.Source == hello.Name {
			got = append(got, r.Message)
		}
	}
	assert.Equal(t, []string{"Hello world!", "Bye world!"}, got)
	assert.False(t, host.Tainted())
}
