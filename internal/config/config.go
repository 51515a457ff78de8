package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// Config is the bootstrap configuration one locality process needs to
// join a fleet: how to reach the directory service, how many
// localities the run expects, and this process's own addresses.
type Config struct {
	// DirectoryAddr is the base URL of the directory service, e.g.
	// "http://directory:9000".
	DirectoryAddr string `json:"directory_addr,omitempty"`

	// LocalityCount is the fixed fleet size the directory service
	// waits for before finalizing the Directory. Ignored by
	// cmd/locality (only cmd/directory needs it).
	LocalityCount int `json:"locality_count,omitempty"`

	// Listen is the local address this process's HTTP server binds.
	Listen string `json:"listen,omitempty"`

	// PublicAddr is the address other localities use to reach this
	// one, which may differ from Listen behind NAT or a container
	// port mapping.
	PublicAddr string `json:"public_addr,omitempty"`

	// NumBuckets is a per-shard bucket count setting. It is loaded and
	// merged like the other fields, but nothing in this module passes it
	// to dmap.Create, which sizes shards from numEntries or
	// WithNumBuckets.
	NumBuckets int `json:"num_buckets,omitempty"`

	// BufferThreshold is a per-destination buffer capacity setting. It
	// is loaded and merged like the other fields, but nothing in this
	// module passes it to dmap.Create, which uses WithBufferThreshold or
	// buffer.DefaultThreshold.
	BufferThreshold int `json:"buffer_threshold,omitempty"`
}

// Default returns the built-in configuration defaults, the lowest
// layer of precedence LoadFile/LoadEnv/CLI flags build on.
func Default() Config {
	return Config{
		Listen:          ":9000",
		NumBuckets:      16,
		BufferThreshold: 256,
	}
}

// LoadFile reads and merges a JSONC bootstrap file at path onto base.
// A missing file is not an error: it just leaves base unchanged, since
// a deployment may configure everything through flags and environment
// variables instead.
func LoadFile(path string, base Config) (Config, error) {
	if path == "" {
		return base, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s is not valid JSONC: %w", path, err)
	}
	var fileCfg Config
	if err := json.Unmarshal(standardized, &fileCfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return merge(base, fileCfg), nil
}

// LoadEnv overlays base with any LOCALITY_* environment variables that
// are set, following the same "only non-empty wins" merge rule as
// LoadFile.
func LoadEnv(base Config) Config {
	env := Config{
		DirectoryAddr: os.Getenv("LOCALITY_DIRECTORY_ADDR"),
		Listen:        os.Getenv("LOCALITY_LISTEN"),
		PublicAddr:    os.Getenv("LOCALITY_PUBLIC_ADDR"),
	}
	return merge(base, env)
}

func merge(base, overlay Config) Config {
	if overlay.DirectoryAddr != "" {
		base.DirectoryAddr = overlay.DirectoryAddr
	}
	if overlay.LocalityCount != 0 {
		base.LocalityCount = overlay.LocalityCount
	}
	if overlay.Listen != "" {
		base.Listen = overlay.Listen
	}
	if overlay.PublicAddr != "" {
		base.PublicAddr = overlay.PublicAddr
	}
	if overlay.NumBuckets != 0 {
		base.NumBuckets = overlay.NumBuckets
	}
	if overlay.BufferThreshold != 0 {
		base.BufferThreshold = overlay.BufferThreshold
	}
	return base
}

// Validate reports whether cfg has everything cmd/locality needs to
// start: a directory address and a public address other localities can
// reach it at.
func Validate(cfg Config) error {
	if cfg.DirectoryAddr == "" {
		return errors.New("config: directory_addr is required")
	}
	if cfg.PublicAddr == "" {
		return errors.New("config: public_addr is required")
	}
	return nil
}
