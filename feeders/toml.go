package feeders

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TomlFeeder reads overrides from a TOML document with one table per unit.
type TomlFeeder struct {
	Path string
}

func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// Feed implements Feeder.
func (t TomlFeeder) Feed(o Overrides) error {
	var tree map[string]map[string]any
	if _, err := toml.DecodeFile(t.Path, &tree); err != nil {
		return fmt.Errorf("failed to read toml: %w", err)
	}
	return feedTree(o, tree)
}
