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

// Package httperr carries the typed error taxonomy that the request
// parser, the frame codec, and the connection session trade in. Every
// fallible operation in this module returns one of these kinds rather
// than a bare error, so the session can decide how to respond on the
// wire without string-matching error messages.
package httperr

import (
	"net/http"

	"github.com/caiflower/httpws/pkg/tools"
)

// Kind names a class of failure the parser/codec/session can produce.
type Kind string

const (
	KindIO                Kind = "Io"
	KindConnectionClosed  Kind = "ConnectionClosed"
	KindMalformedRequest  Kind = "MalformedRequest"
	KindHeaderTooLarge    Kind = "HeaderTooLarge"
	KindPayloadTooLarge   Kind = "PayloadTooLarge"
	KindTimeout           Kind = "Timeout"
	KindUpgradeRequired   Kind = "UpgradeRequired"
	KindProtocolViolation Kind = "ProtocolViolation"
	KindUnsupported       Kind = "Unsupported"
	KindInternal          Kind = "Internal"
)

// ErrorCode pairs a Kind with the HTTP status it maps to. Two kinds,
// Io and ConnectionClosed, never reach the wire: the session ends the
// connection silently for those instead of writing a response.
type ErrorCode struct {
	Kind       Kind
	HTTPStatus int
}

var (
	IO                = &ErrorCode{Kind: KindIO, HTTPStatus: 0}
	ConnectionClosed  = &ErrorCode{Kind: KindConnectionClosed, HTTPStatus: 0}
	MalformedRequest  = &ErrorCode{Kind: KindMalformedRequest, HTTPStatus: http.StatusBadRequest}
	HeaderTooLarge    = &ErrorCode{Kind: KindHeaderTooLarge, HTTPStatus: http.StatusRequestHeaderFieldsTooLarge}
	PayloadTooLarge   = &ErrorCode{Kind: KindPayloadTooLarge, HTTPStatus: http.StatusRequestEntityTooLarge}
	Timeout           = &ErrorCode{Kind: KindTimeout, HTTPStatus: http.StatusRequestTimeout}
	UpgradeRequired   = &ErrorCode{Kind: KindUpgradeRequired, HTTPStatus: http.StatusUpgradeRequired}
	ProtocolViolation = &ErrorCode{Kind: KindProtocolViolation, HTTPStatus: 0}
	Unsupported       = &ErrorCode{Kind: KindUnsupported, HTTPStatus: 0}
	Internal          = &ErrorCode{Kind: KindInternal, HTTPStatus: http.StatusInternalServerError}
)

// WSCloseCode is the RFC 6455 close code a ProtocolViolation or
// Unsupported error maps to when the connection is a WebSocket.
const (
	WSCloseProtocolError = 1002
	WSCloseUnsupported   = 1003
)

// CoreError is the concrete type every parser/codec/session failure is
// built from. It satisfies the standard error interface and carries
// enough context for the session to decide how to respond.
type CoreError struct {
	*ErrorCode
	Message string
	Cause   error
}

func (e *CoreError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *CoreError) Unwrap() error {
	return e.Cause
}

// IsSilent reports whether the session should close the connection
// without writing any response bytes.
func (e *CoreError) IsSilent() bool {
	return e.Kind == KindIO || e.Kind == KindConnectionClosed
}

// WSCloseCode returns the RFC 6455 close code this error should be
// reported with, or 0 if it has none.
func (e *CoreError) WSCloseCode() int {
	switch e.Kind {
	case KindProtocolViolation:
		return WSCloseProtocolError
	case KindUnsupported:
		return WSCloseUnsupported
	default:
		return 0
	}
}

func New(code *ErrorCode, msg string) *CoreError {
	return &CoreError{ErrorCode: code, Message: msg}
}

func Wrap(code *ErrorCode, msg string, cause error) *CoreError {
	return &CoreError{ErrorCode: code, Message: msg, Cause: cause}
}

func NewIO(cause error) *CoreError {
	return Wrap(IO, "io error", cause)
}

func NewMalformedRequest(msg string) *CoreError {
	return New(MalformedRequest, msg)
}

func NewHeaderTooLarge(limit int) *CoreError {
	return New(HeaderTooLarge, "request header exceeds "+tools.ToString(limit)+" bytes")
}

func NewPayloadTooLarge(limit int) *CoreError {
	return New(PayloadTooLarge, "request body exceeds "+tools.ToString(limit)+" bytes")
}

func NewTimeout(msg string) *CoreError {
	return New(Timeout, msg)
}

func NewProtocolViolation(msg string) *CoreError {
	return New(ProtocolViolation, msg)
}

func NewUnsupported(msg string) *CoreError {
	return New(Unsupported, msg)
}

func NewInternal(cause error) *CoreError {
	return Wrap(Internal, "internal server error", cause)
}

// AsCoreError unwraps err into a *CoreError if possible, otherwise
// classifies it as Internal so callers always have a Kind to switch on.
func AsCoreError(err error) *CoreError {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*CoreError); ok {
		return ce
	}
	return NewInternal(err)
}
