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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefault_FillsDocumentedDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1:8080", cfg.BindAddress)
	assert.Equal(t, 16384, cfg.MaxHeaderBytes)
	assert.Equal(t, 10485760, cfg.MaxBodyBytes)
	assert.Equal(t, uint(5), cfg.KeepAliveTimeoutSecs)
	assert.Equal(t, uint(100), cfg.KeepAliveMaxRequests)
	assert.Equal(t, uint(5), cfg.HeaderReadTimeoutSecs)
	assert.Equal(t, uint(30), cfg.BodyReadTimeoutSecs)
	assert.Equal(t, uint(30), cfg.WSHeartbeatIntervalS)
	assert.Equal(t, uint(30), cfg.WSPongTimeoutSecs)
	assert.Equal(t, "X-Request-Id", cfg.HeaderTraceID)
	assert.Equal(t, "tokenbucket", cfg.WebLimiter.Kind)
}

func TestValidate_RejectsZeroCaps(t *testing.T) {
	cfg := Default()
	cfg.MaxHeaderBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxBodyBytes = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.KeepAliveMaxRequests = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	assert.Nil(t, Default().Validate())
}
