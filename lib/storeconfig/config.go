// Copyright 2026 The Irmin Authors
// SPDX-License-Identifier: Apache-2.0

package storeconfig

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/2lambda123/irmin/lib/inode"
	"github.com/2lambda123/irmin/lib/packstore"
	"github.com/2lambda123/irmin/lib/step"
)

// Ordering names the child-slot ordering policy a store was built
// with. Changing it after a store has entries changes every future
// bucket assignment without changing hashes already on disk, so it is
// meant to be fixed for the lifetime of a store.
type Ordering string

const (
	// OrderingHashBits selects step.HashBits: only valid for
	// ENTRIES <= 1024.
	OrderingHashBits Ordering = "hash-bits"
	// OrderingSeededHash selects step.SeededHash.
	OrderingSeededHash Ordering = "seeded-hash"
)

// Compression names the pack store's payload compression setting.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"
)

// Config is the on-disk YAML shape for a store's configuration.
type Config struct {
	// Entries is ENTRIES: the branching factor. Must be a power of
	// two; Hash-bits ordering additionally requires it to be <= 1024.
	Entries int `yaml:"entries"`

	// StableHash is STABLE_HASH: the size at or below which a root
	// hashes as its flat map. Must be >= Entries.
	StableHash int `yaml:"stable_hash"`

	// Ordering selects the child-slot ordering policy.
	Ordering Ordering `yaml:"ordering"`

	// Compression selects the pack store's payload compression.
	// Empty is equivalent to "none".
	Compression Compression `yaml:"compression"`
}

// Default returns the configuration used when no compression or
// ordering is specified: Hash-bits ordering, no compression. Entries
// and StableHash have no sensible default and must always come from
// the file.
func Default() Config {
	return Config{
		Ordering:    OrderingHashBits,
		Compression: CompressionNone,
	}
}

// Load loads configuration from the path named by the
// IRMIN_STORE_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit
// path. There is no fallback: if IRMIN_STORE_CONFIG is unset, this
// fails rather than guessing at a store's shape.
func Load() (Config, error) {
	path := os.Getenv("IRMIN_STORE_CONFIG")
	if path == "" {
		return Config{}, fmt.Errorf("storeconfig: IRMIN_STORE_CONFIG environment variable not set; " +
			"set it to the path of your store config file, or call LoadFile with an explicit path")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path and
// validates it.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("storeconfig: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("storeconfig: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("storeconfig: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that c describes an internally consistent store.
func (c Config) Validate() error {
	if step.Log2(c.Entries) <= 0 {
		return fmt.Errorf("entries %d must be a power of two greater than 1", c.Entries)
	}
	if c.StableHash < c.Entries {
		return fmt.Errorf("stable_hash %d must be >= entries %d", c.StableHash, c.Entries)
	}
	switch c.Ordering {
	case OrderingHashBits, OrderingSeededHash:
	default:
		return fmt.Errorf("ordering %q must be one of %q, %q", c.Ordering, OrderingHashBits, OrderingSeededHash)
	}
	switch c.Compression {
	case "", CompressionNone, CompressionLZ4, CompressionZstd:
	default:
		return fmt.Errorf("compression %q must be one of %q, %q, %q", c.Compression, CompressionNone, CompressionLZ4, CompressionZstd)
	}
	return nil
}

// InodeConfig builds an inode.Config from c, wiring in logger for the
// save path's diagnostics. It fails only if c's ordering policy
// cannot be constructed for c.Entries (Hash-bits above 1024 entries).
func (c Config) InodeConfig(logger *slog.Logger) (inode.Config, error) {
	ordering, err := c.buildOrdering()
	if err != nil {
		return inode.Config{}, err
	}
	return inode.Config{
		Entries:    c.Entries,
		StableHash: c.StableHash,
		Ordering:   ordering,
		Logger:     logger,
	}, nil
}

func (c Config) buildOrdering() (step.Ordering, error) {
	switch c.Ordering {
	case OrderingSeededHash:
		o, err := step.NewSeededHash(c.Entries)
		if err != nil {
			return nil, fmt.Errorf("storeconfig: building seeded-hash ordering: %w", err)
		}
		return o, nil
	case OrderingHashBits, "":
		o, err := step.NewHashBits(c.Entries)
		if err != nil {
			return nil, fmt.Errorf("storeconfig: building hash-bits ordering: %w", err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("storeconfig: unknown ordering %q", c.Ordering)
	}
}

// PackStoreOptions builds the packstore.Options c implies.
func (c Config) PackStoreOptions(logger *slog.Logger) packstore.Options {
	var tag packstore.CompressionTag
	switch c.Compression {
	case CompressionLZ4:
		tag = packstore.CompressionLZ4
	case CompressionZstd:
		tag = packstore.CompressionZstd
	default:
		tag = packstore.CompressionNone
	}
	return packstore.Options{Compression: tag, Logger: logger}
}
