package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/unitmod/cmd/unithost/cmd"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	root := cmd.NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	out, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Unit host")

	out, _, err = execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "unithost v")
}

func TestInfoCommand(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, _, err := execute(t, "info")
		require.NoError(t, err)
		assert.Equal(t, "hello_params\nhello_world\nscull_basic\n", out)
	})

	t.Run("unit", func(t *testing.T) {
		out, _, err := execute(t, "info", "hello_params")
		require.NoError(t, err)
		assert.Contains(t, out, "name:           hello_params\n")
		assert.Contains(t, out, "license:        GPL v2\n")
		assert.Contains(t, out, "parm:           howmany:How many times string will be printed (int, 0644, default 3)")
		assert.Contains(t, out, "whom:What string to be printed (string, 0644, default Mom)")
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := execute(t, "info", "nope")
		assert.Error(t, err)
	})
}

func TestRunOnce(t *testing.T) {
	_, logs, err := execute(t, "run", "hello_params", "howmany=2", "whom=Dad", "--once")
	require.NoError(t, err)
	assert.Contains(t, logs, "0 Hello, Dad")
	assert.Contains(t, logs, "1 Hello, Dad")
	assert.NotContains(t, logs, "2 Hello, Dad")
	assert.Contains(t, logs, "Bye world!")
}

func TestRunOnce_ConfigAndArgs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("hello_params:\n  howmany: 1\n  whom: Sis\n"), 0o600))

	_, logs, err := execute(t, "run", "hello_world", "hello_params", "hello_params.whom=Bro",
		"--config", path, "--once", "--log-format", "json")
	require.NoError(t, err)
	assert.Contains(t, logs, `"message":"0 Hello, Bro"`)
	assert.NotContains(t, logs, "1 Hello, Bro")
}

func TestRunErrors(t *testing.T) {
	cases := map[string][]string{
		"unknown unit":       {"run", "nope", "--once"},
		"only overrides":     {"run", "x.y=1", "--once"},
		"ambiguous override": {"run", "hello_world", "hello_params", "whom=Dad", "--once"},
		"bad log format":     {"run", "hello_world", "--once", "--log-format", "xml"},
		"bad override value": {"run", "hello_params", "howmany=lots", "--once"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, args...)
			assert.Error(t, err)
		})
	}
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, cmd.PrintVersion(), "unithost v")
}
