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
	"time"

	"github.com/cockroachdb/errors"

	"github.com/zuoyebang/refcnt/internal/log"
	"github.com/zuoyebang/refcnt/internal/units"
)

func (c *Config) Validate() error {
	if err := c.checkLogConfig(); err != nil {
		return err
	}
	if err := c.checkPluginConfig(); err != nil {
		return err
	}
	if err := c.checkSoakConfig(); err != nil {
		return err
	}
	if err := c.checkCacheConfig(); err != nil {
		return err
	}
	if err := c.checkArenaConfig(); err != nil {
		return err
	}
	return nil
}

func (c *Config) checkLogConfig() error {
	if c.Log.LogPath == "" {
		return errors.New("invalid log path")
	}
	if !log.CheckRotation(c.Log.RotationTime) {
		c.Log.RotationTime = log.DailyRotate
	}
	return nil
}

func (c *Config) checkPluginConfig() error {
	if c.Plugin.OpenMetrics && c.Plugin.MetricsAddr == "" {
		return errors.New("invalid metrics address")
	}
	return nil
}

func (c *Config) checkSoakConfig() error {
	if c.Soak.Workers < 1 {
		c.Soak.Workers = 1
	}
	if c.Soak.Workers > 1024 {
		c.Soak.Workers = 1024
	}
	if c.Soak.Duration <= 0 {
		c.Soak.Duration = units.Duration(30 * time.Second)
	}
	if c.Soak.OpsPerSec < 0 {
		return errors.New("invalid soak ops_per_sec")
	}
	if c.Soak.Keys < 16 {
		c.Soak.Keys = 16
	}
	if c.Soak.PinHold < 0 {
		c.Soak.PinHold = 0
	}
	if c.Soak.ReportEvery <= 0 {
		c.Soak.ReportEvery = units.Duration(5 * time.Second)
	}
	return nil
}

func (c *Config) checkCacheConfig() error {
	if c.Cache.Capacity < 64 {
		c.Cache.Capacity = 64
	}
	if c.Cache.Shards < 1 {
		c.Cache.Shards = 1
	}
	if c.Cache.Shards > 256 {
		c.Cache.Shards = 256
	}
	if c.Cache.ValueSize < 16 {
		c.Cache.ValueSize = 16
	}
	if c.Cache.ValueSize > 32*units.KB {
		c.Cache.ValueSize = 32 * units.KB
	}
	return nil
}

func (c *Config) checkArenaConfig() error {
	if c.Arena.ChunkSize < 64*units.KB {
		c.Arena.ChunkSize = units.Bytes(1 * units.MB)
	}
	if c.Arena.MaxAlloc < 16 {
		c.Arena.MaxAlloc = 16
	}
	if c.Arena.MaxAlloc > units.Bytes(1*units.MB) {
		c.Arena.MaxAlloc = units.Bytes(1 * units.MB)
	}
	return nil
}
