// Copyright 2019-2024 Xu Ruibo (hustxurb@163.com) and Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/zuoyebang/refcnt/internal/units"
)

type Config struct {
	Log    LogConfig    `toml:"log"`
	Plugin PluginConfig `toml:"plugin"`
	Soak   SoakConfig   `toml:"soak"`
	Cache  CacheConfig  `toml:"cache"`
	Arena  ArenaConfig  `toml:"arena"`
}

type LogConfig struct {
	IsDebug      bool   `toml:"is_debug"`
	LogPath      string `toml:"log_path"`
	RotationTime string `toml:"rotation_time"`
}

type PluginConfig struct {
	OpenGoPs    bool   `toml:"open_gops"`
	OpenMetrics bool   `toml:"open_metrics"`
	MetricsAddr string `toml:"metrics_addr"`
}

type SoakConfig struct {
	Workers     int            `toml:"workers"`
	Duration    units.Duration `toml:"duration"`
	OpsPerSec   int64          `toml:"ops_per_sec"`
	Keys        int            `toml:"keys"`
	PinHold     units.Duration `toml:"pin_hold"`
	ReportEvery units.Duration `toml:"report_every"`
	TrackStacks bool           `toml:"track_stacks"`
}

type CacheConfig struct {
	Capacity  int         `toml:"capacity"`
	Shards    int         `toml:"shards"`
	ValueSize units.Bytes `toml:"value_size"`
}

type ArenaConfig struct {
	ChunkSize units.Bytes `toml:"chunk_size"`
	MaxAlloc  units.Bytes `toml:"max_alloc"`
}

var GlobalConfig = NewDefaultConfig()

func NewDefaultConfig() *Config {
	c := &Config{}
	toml.Decode(DefaultConfig, c)
	return c
}

// LoadFromFile reads configFile over the defaults, applies the command-line
// overrides, and validates. An empty configFile runs on defaults alone.
func (c *Config) LoadFromFile(configFile string, workers int, duration time.Duration) error {
	if configFile != "" {
		if _, err := toml.DecodeFile(configFile, c); err != nil {
			return err
		}
	}

	if workers > 0 {
		c.Soak.Workers = workers
	}
	if duration > 0 {
		c.Soak.Duration = units.Duration(duration)
	}

	return c.Validate()
}

func (c *Config) String() string {
	var b bytes.Buffer
	e := toml.NewEncoder(&b)
	e.Indent = "    "
	e.Encode(c)
	return b.String()
}
