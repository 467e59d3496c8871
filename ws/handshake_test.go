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

package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAccept_RFCVector(t *testing.T) {
	accept := ComputeAccept("dGhlIHNhbXBsZSBub25jZQ==")
	assert.Equal(t, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=", accept)
}

func TestIsValidKey(t *testing.T) {
	assert.True(t, IsValidKey("dGhlIHNhbXBsZSBub25jZQ=="))
	assert.False(t, IsValidKey("too-short=="))
	assert.False(t, IsValidKey("not base64!!"))
	assert.False(t, IsValidKey(""))
}
