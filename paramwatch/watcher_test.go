package paramwatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/unitmod"
	"github.com/GoCodeAlone/unitmod/klog"
)

func loadGreeter(t *testing.T, host *unitmod.Host, overrides map[string]string) {
	t.Helper()
	_, err := host.Load(context.Background(), unitmod.UnitSpec{
		Descriptor: unitmod.NewDescriptor("greeter", "test", "GPL", ""),
		Params: []unitmod.ParamDef{
			unitmod.IntParam("howmany", 3, 0o644, ""),
			unitmod.StringParam("whom", "Mom", 0o644, ""),
			unitmod.IntParam("fixed", 1, 0o444, ""),
		},
		Unit: unitmod.UnitFunc{},
	}, overrides)
	require.NoError(t, err)
}

func readText(t *testing.T, host *unitmod.Host, param string) string {
	t.Helper()
	h, ok := host.Unit("greeter")
	require.True(t, ok)
	v, err := h.Params().Read(param)
	require.NoError(t, err)
	return v.String()
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestReload_AppliesOnlyChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	write(t, path, "greeter:\n  howmany: 5\n  fixed: 2\n")

	host := unitmod.NewHost()
	w, err := New(path, host)
	require.NoError(t, err)
	loadGreeter(t, host, w.Initial().For("greeter"))
	assert.Equal(t, "5", readText(t, host, "howmany"))
	assert.Equal(t, "2", readText(t, host, "fixed"))

	write(t, path, "greeter:\n  howmany: 5\n  whom: Dad\n  fixed: 9\nother:\n  x: 1\n")
	res, err := w.Reload()
	require.NoError(t, err)
	assert.Equal(t, []string{"greeter.whom"}, res.Applied)
	assert.Equal(t, []string{"greeter.fixed"}, res.Failed)
	assert.Equal(t, []string{"other.x"}, res.Skipped)

	assert.Equal(t, "Dad", readText(t, host, "whom"))
	assert.Equal(t, "2", readText(t, host, "fixed"))
}

func TestReload_BadFileKeepsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.toml")
	write(t, path, "[greeter]\nhowmany = 4\n")

	ring := klog.NewRing(32)
	host := unitmod.NewHost()
	w, err := New(path, host, WithLogger(klog.NewLogger(ring, "paramwatch")))
	require.NoError(t, err)
	loadGreeter(t, host, w.Initial().For("greeter"))

	write(t, path, "[greeter\n")
	_, err = w.Reload()
	require.Error(t, err)
	assert.Equal(t, "4", readText(t, host, "howmany"))

	records := ring.Records()
	require.NotEmpty(t, records)
	assert.Equal(t, klog.SeverityError, records[len(records)-1].Severity)
}

func TestNew_UnsupportedFormat(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "params.json"), unitmod.NewHost())
	require.Error(t, err)
}

func TestWatch_AppliesOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	write(t, path, "greeter:\n  howmany: 3\n")

	host := unitmod.NewHost()
	reloaded := make(chan Result, 4)
	w, err := New(path, host,
		WithDebounce(20*time.Millisecond),
		OnReload(func(r Result, err error) {
			if err == nil {
				reloaded <- r
			}
		}),
	)
	require.NoError(t, err)
	loadGreeter(t, host, w.Initial().For("greeter"))

	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	write(t, path, "greeter:\n  howmany: 8\n")

	assert.Eventually(t, func() bool {
		return readText(t, host, "howmany") == "8"
	}, 5*time.Second, 20*time.Millisecond)

	select {
	case r := <-reloaded:
		assert.Contains(t, r.Applied, "greeter.howmany")
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestStop_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	write(t, path, "{}\n")
	w, err := New(path, unitmod.NewHost())
	require.NoError(t, err)
	require.NoError(t, w.Stop())
	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
