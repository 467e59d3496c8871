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

package httperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoreError_IsSilent(t *testing.T) {
	assert.True(t, NewIO(errors.New("boom")).IsSilent())
	assert.True(t, New(ConnectionClosed, "closed").IsSilent())
	assert.False(t, NewMalformedRequest("bad").IsSilent())
}

func TestCoreError_WSCloseCode(t *testing.T) {
	assert.Equal(t, WSCloseProtocolError, NewProtocolViolation("x").WSCloseCode())
	assert.Equal(t, WSCloseUnsupported, NewUnsupported("x").WSCloseCode())
	assert.Equal(t, 0, NewMalformedRequest("x").WSCloseCode())
}

func TestCoreError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	ce := NewIO(cause)
	assert.Contains(t, ce.Error(), "root cause")
	assert.Equal(t, cause, ce.Unwrap())
}

func TestAsCoreError_WrapsPlainError(t *testing.T) {
	plain := errors.New("oops")
	ce := AsCoreError(plain)
	assert.Equal(t, KindInternal, ce.Kind)
}

func TestAsCoreError_PassesThroughCoreError(t *testing.T) {
	orig := NewTimeout("slow")
	assert.Same(t, orig, AsCoreError(orig))
}

func TestHTTPStatusMapping(t *testing.T) {
	assert.Equal(t, 400, MalformedRequest.HTTPStatus)
	assert.Equal(t, 431, HeaderTooLarge.HTTPStatus)
	assert.Equal(t, 413, PayloadTooLarge.HTTPStatus)
	assert.Equal(t, 408, Timeout.HTTPStatus)
	assert.Equal(t, 426, UpgradeRequired.HTTPStatus)
	assert.Equal(t, 0, IO.HTTPStatus)
	assert.Equal(t, 0, ConnectionClosed.HTTPStatus)
}
