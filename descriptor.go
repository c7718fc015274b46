package unitmod

import "strings"

// License is the license class a unit declares. The host uses it as a load
// gate: unknown licenses are refused, proprietary units load but taint the
// host.
type License int

const (
	LicenseUnknown License = iota
	LicenseGPLCompatible
	LicenseProprietary
)

// gplCompatible lists the license strings accepted as GPL-compatible.
var gplCompatible = map[string]bool{
	"GPL":                       true,
	"GPL v2":                    true,
	"GPL and additional rights": true,
	"Dual BSD/GPL":              true,
	"Dual MIT/GPL":              true,
	"Dual MPL/GPL":              true,
}

// ParseLicense maps a license string to its class. Matching is exact after
// trimming surrounding whitespace.
func ParseLicense(s string) License {
	s = strings.TrimSpace(s)
	switch {
	case gplCompatible[s]:
		return LicenseGPLCompatible
	case s == "Proprietary":
		return LicenseProprietary
	default:
		return LicenseUnknown
	}
}

func (l License) String() string {
	switch l {
	case LicenseGPLCompatible:
		return "GPL-compatible"
	case LicenseProprietary:
		return "Proprietary"
	default:
		return "Unknown"
	}
}

// ModuleDescriptor is the static metadata a unit is registered under. It is
// built once and never changed.
type ModuleDescriptor struct {
	Name        string
	Author      string
	License     License
	Description string

	// LicenseText is the declared license string, kept for messages and
	// modinfo-style output.
	LicenseText string
}

// NewDescriptor builds a descriptor from a declared license string.
func NewDescriptor(name, author, license, description string) ModuleDescriptor {
	return ModuleDescriptor{
		Name:        name,
		Author:      author,
		License:     ParseLicense(license),
		LicenseText: license,
		Description: description,
	}
}

// Validate checks the constraints the descriptor can check on its own. Name
// uniqueness is the host's job.
func (d ModuleDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &RegistrationError{Unit: d.Name, Kind: ErrInvalidName}
	}
	if d.License == LicenseUnknown {
		return &RegistrationError{Unit: d.Name, Kind: ErrUnknownLicense, Detail: d.LicenseText}
	}
	return nil
}

// Taints reports whether loading the unit taints the host.
func (d ModuleDescriptor) Taints() bool {
	return d.License == LicenseProprietary
}
