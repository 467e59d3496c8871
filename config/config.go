/*
 * Copyright 2024 caiflower Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config holds the immutable, per-process configuration for the
// HTTP/WebSocket core. All fields are optional and carry the defaults
// named in the external interface contract.
package config

import (
	"fmt"

	"github.com/caiflower/httpws/global/env"
	"github.com/caiflower/httpws/pkg/logger"
	"github.com/caiflower/httpws/pkg/tools"
)

type WebLimiter struct {
	Enable bool   `yaml:"enable"`
	Qos    int    `yaml:"qos" default:"0"`
	Kind   string `yaml:"kind" default:"tokenbucket"` // tokenbucket or fixedwindow
}

// Config is immutable once loaded; the session and handshake layers only
// ever read it.
type Config struct {
	Name                  string        `yaml:"name" default:"default"`
	BindAddress           string        `yaml:"bindAddress" default:"127.0.0.1:8080"`
	MaxHeaderBytes        int           `yaml:"maxHeaderBytes" default:"16384"`
	MaxBodyBytes          int           `yaml:"maxBodyBytes" default:"10485760"`
	KeepAliveTimeoutSecs  uint          `yaml:"keepAliveTimeoutSecs" default:"5"`
	KeepAliveMaxRequests  uint          `yaml:"keepAliveMaxRequests" default:"100"`
	HeaderReadTimeoutSecs uint          `yaml:"headerReadTimeoutSecs" default:"5"`
	BodyReadTimeoutSecs   uint          `yaml:"bodyReadTimeoutSecs" default:"30"`
	WSHeartbeatIntervalS  uint          `yaml:"wsHeartbeatIntervalSecs" default:"30"`
	WSPongTimeoutSecs     uint          `yaml:"wsPongTimeoutSecs" default:"30"`
	HeaderTraceID         string        `yaml:"headerTraceID" default:"X-Request-Id"`
	WebLimiter            WebLimiter    `yaml:"webLimiter"`
	EnableMetrics         bool          `yaml:"enableMetrics"`
	LoggerConfig          logger.Config `yaml:"logger"`
}

// Load reads a YAML file at path and fills in defaults for anything the
// file leaves zero-valued.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := tools.LoadConfig(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with every field at its documented default,
// useful for tests and for callers that don't load from a file.
func Default() *Config {
	cfg := &Config{}
	_ = tools.DoTagFunc(cfg, []tools.FnObj{{Fn: tools.SetDefaultValueIfNil}})
	return cfg
}

// Validate rejects configurations that would make the core's invariants
// impossible to hold.
func (c *Config) Validate() error {
	if c.MaxHeaderBytes <= 0 {
		return fmt.Errorf("config: maxHeaderBytes must be positive, got %d", c.MaxHeaderBytes)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: maxBodyBytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.KeepAliveMaxRequests == 0 {
		return fmt.Errorf("config: keepAliveMaxRequests must be positive")
	}
	return nil
}

// ConfigPath resolves the directory callers should look in for YAML
// configuration, honoring CONFIG_PATH the way global/env does for every
// other collaborator in this module.
func ConfigPath() string {
	return env.ConfigPath
}
