package unitmod

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseLicense(t *testing.T) {
	tests := []struct {
		in   string
		want License
	}{
		{"GPL", LicenseGPLCompatible},
		{"GPL v2", LicenseGPLCompatible},
		{" GPL v2 ", LicenseGPLCompatible},
		{"Dual BSD/GPL", LicenseGPLCompatible},
		{"Dual MIT/GPL", LicenseGPLCompatible},
		{"GPL and additional rights", LicenseGPLCompatible},
		{"Proprietary", LicenseProprietary},
		{"BSD", LicenseUnknown},
		{"gpl", LicenseUnknown},
		{"", LicenseUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLicense(tt.in))
		})
	}
}

func TestModuleDescriptor_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d := NewDescriptor("hello_world", "Douglas Su", "GPL v2", "A simple hello world example")
		require.NoError(t, d.Validate())
		assert.False(t, d.Taints())
	})

	t.Run("proprietary is valid but taints", func(t *testing.T) {
		d := NewDescriptor("blob", "vendor", "Proprietary", "")
		require.NoError(t, d.Validate())
		assert.True(t, d.Taints())
	})

	t.Run("empty name", func(t *testing.T) {
		err := NewDescriptor("  ", "a", "GPL", "").Validate()
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("unknown license", func(t *testing.T) {
		err := NewDescriptor("x", "a", "WTFPL", "").Validate()
		require.ErrorIs(t, err, ErrUnknownLicense)

		var regErr *RegistrationError
		require.True(t, errors.As(err, &regErr))
		assert.Equal(t, "x", regErr.Unit)
		assert.Equal(t, `register unit "x": unknown license "WTFPL"`, err.Error())
	})
}

func TestProperty_ValidateDependsOnLicense(t *testing.T) {
	known := []string{"GPL", "GPL v2", "GPL and additional rights", "Dual BSD/GPL", "Dual MIT/GPL", "Dual MPL/GPL", "Proprietary"}

	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z][a-z0-9_]{0,15}`).Draw(rt, "name")
		author := rapid.String().Draw(rt, "author")

		license := rapid.SampledFrom(known).Draw(rt, "license")
		require.NoError(rt, NewDescriptor(name, author, license, "").Validate())

		other := rapid.String().Filter(func(s string) bool {
			return ParseLicense(s) == LicenseUnknown
		}).Draw(rt, "unknownLicense")
		require.ErrorIs(rt, NewDescriptor(name, author, other, "").Validate(), ErrUnknownLicense)
	})
}
