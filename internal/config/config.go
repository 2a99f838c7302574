// Package config loads the optional TOML configuration file that tunes
// the decoder's defensive limits, the PGN renderer's tag allowlist, and
// the decode-result cache's location.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the root of the TOML document.
type Config struct {
	Decoder Decoder `toml:"decoder"`
	PGN     PGN     `toml:"pgn"`
	Cache   Cache   `toml:"cache"`
}

// Decoder tunes internal/decoder's defensive limits.
type Decoder struct {
	RecursionCeiling int `toml:"recursion_ceiling"`
}

// PGN tunes internal/pgn's rendering.
type PGN struct {
	TagAllowlist []string `toml:"tag_allowlist"`
}

// Cache tunes internal/cache's on-disk location.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		Decoder: Decoder{RecursionCeiling: 256},
		Cache:   Cache{Enabled: false, Dir: "scidpgn-cache"},
	}
}

// Load reads and parses a TOML file at path, starting from Default() so
// a partial file only overrides the fields it sets.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
