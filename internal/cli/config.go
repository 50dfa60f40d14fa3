package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/zclosure/pkg/pipeline"
)

// Config is the CLI config file. Every field is optional; command-line flags
// override it.
//
//	[pipeline]
//	runs = 8
//	weighting = "TreeSizeWeightedMean"
//
//	[cache]
//	redis = "redis://localhost:6379/0"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//	ttl = "72h"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Pipeline pipeline.Options `toml:"pipeline"`
	Cache    CacheConfig      `toml:"cache"`
	Store    StoreConfig      `toml:"store"`
	Server   ServerConfig     `toml:"server"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	Redis    string `toml:"redis"`
}

// StoreConfig selects where saved runs live.
type StoreConfig struct {
	Dir             string   `toml:"dir"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
	TTL             duration `toml:"ttl"`
}

// ServerConfig configures "zclosure serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// duration is a time.Duration that decodes from strings like "72h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// loadConfig reads the config file at path. An empty path means the default
// location, which may be absent; an explicit path must exist. Unknown keys
// are an error so typos do not go unnoticed.
func loadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return &Config{}, nil
		}
		path = filepath.Join(dir, configFile)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}
