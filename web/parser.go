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

package web

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/caiflower/httpws/httperr"
)

const (
	MaxHeaderBytes = 16384
	MaxBodyBytes   = 10 * 1024 * 1024
)

var headerTerminator = []byte("\r\n\r\n")
var crlf = []byte("\r\n")

// RequestParser accumulates bytes across one or more reads and produces
// one Request at a time. Its buffer persists across requests on the
// same connection so pipelined bytes read past one request's boundary
// survive into the next call.
type RequestParser struct {
	buf            []byte
	maxHeaderBytes int
	maxBodyBytes   int
}

// NewRequestParser returns a parser bounded by the given header/body
// caps. A zero value for either falls back to the spec defaults.
func NewRequestParser(maxHeaderBytes, maxBodyBytes int) *RequestParser {
	if maxHeaderBytes <= 0 {
		maxHeaderBytes = MaxHeaderBytes
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = MaxBodyBytes
	}
	return &RequestParser{maxHeaderBytes: maxHeaderBytes, maxBodyBytes: maxBodyBytes}
}

// Feed appends freshly read bytes to the internal buffer.
func (p *RequestParser) Feed(b []byte) {
	p.buf = append(p.buf, b...)
}

// Buffered reports how many unconsumed bytes remain.
func (p *RequestParser) Buffered() int {
	return len(p.buf)
}

// HeaderTerminatorIndex returns the index of the first byte of CRLFCRLF
// in the buffer, or -1 if not yet present.
func (p *RequestParser) HeaderTerminatorIndex() int {
	return bytes.Index(p.buf, headerTerminator)
}

// HeaderTooLarge reports whether the header block exceeds the cap,
// whether or not the terminator has been found yet: a request whose
// terminator arrives late is bounded by the accumulated buffer length,
// and one whose terminator has already arrived is bounded by the
// header block length itself (the terminator index).
func (p *RequestParser) HeaderTooLarge() bool {
	if idx := p.HeaderTerminatorIndex(); idx >= 0 {
		return idx > p.maxHeaderBytes
	}
	return len(p.buf) > p.maxHeaderBytes
}

// Empty reports whether the buffer currently holds no bytes at all,
// used to distinguish a clean ConnectionClosed from a MalformedRequest
// when the peer closes before the header terminator arrives.
func (p *RequestParser) Empty() bool {
	return len(p.buf) == 0
}

// parsedHeaders is the result of phase 2: the request line tokens plus
// the header multimap, along with how many buffer bytes phase 2 consumed
// (up to and including the terminator).
type parsedHeaders struct {
	method   Method
	target   string
	version  string
	header   *Header
	consumed int
}

// ParseHeaders implements phase 2 against a complete buffer: find the
// terminator, split on CRLF, parse the request line and header lines.
// It is also the synchronous variant used directly by tests, returning
// the residual offset into buf where headers end.
func ParseHeaders(buf []byte) (method Method, target string, version string, header *Header, consumed int, err *httperr.CoreError) {
	idx := bytes.Index(buf, headerTerminator)
	if idx < 0 {
		return "", "", "", nil, 0, httperr.New(httperr.MalformedRequest, "no header terminator in buffer")
	}

	headerBlock := buf[:idx]
	consumed = idx + len(headerTerminator)

	lines := bytes.Split(headerBlock, crlf)
	if len(lines) == 0 || len(lines[0]) == 0 {
		return "", "", "", nil, 0, httperr.NewMalformedRequest("empty request line")
	}

	tokens := strings.Split(string(lines[0]), " ")
	if len(tokens) != 3 {
		return "", "", "", nil, 0, httperr.NewMalformedRequest("request line must have exactly 3 tokens")
	}

	m, ok := ParseMethod(tokens[0])
	if !ok {
		return "", "", "", nil, 0, httperr.NewMalformedRequest("unknown method " + tokens[0])
	}

	version = tokens[2]
	if version != "HTTP/1.1" && version != "HTTP/1.0" {
		return "", "", "", nil, 0, httperr.NewMalformedRequest("unsupported version " + version)
	}

	h := NewHeader()
	for _, line := range lines[1:] {
		if len(line) == 0 {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			return "", "", "", nil, 0, httperr.NewMalformedRequest("obsolete line folding is not supported")
		}
		sep := bytes.IndexByte(line, ':')
		if sep < 0 {
			return "", "", "", nil, 0, httperr.NewMalformedRequest("header line missing colon")
		}
		name := string(bytes.TrimSpace(line[:sep]))
		if name == "" {
			return "", "", "", nil, 0, httperr.NewMalformedRequest("empty header name")
		}
		value := string(bytes.TrimSpace(line[sep+1:]))
		h.Add(name, value)
	}

	return m, tokens[1], version, h, consumed, nil
}

// ParseRequest runs all three phases against the parser's accumulated
// buffer. It is only called once HeaderTerminatorIndex has confirmed the
// terminator is present; body framing consumes whatever additional
// buffered bytes it needs, returning Incomplete-equivalent behavior by
// reporting needMore so the caller can Feed and retry.
//
// On success the consumed prefix (headers + body + chunk framing) is
// dropped from the internal buffer, leaving any pipelined remainder.
func (p *RequestParser) ParseRequest() (req *Request, needMore bool, err *httperr.CoreError) {
	method, target, version, header, headerEnd, perr := ParseHeaders(p.buf)
	if perr != nil {
		return nil, false, perr
	}

	body, bodyEnd, needMore, berr := p.frameBody(method, header, p.buf[headerEnd:])
	if berr != nil {
		return nil, false, berr
	}
	if needMore {
		return nil, true, nil
	}

	totalConsumed := headerEnd + bodyEnd
	req = &Request{Method: method, Target: target, Version: version, Header: header, Body: body}
	p.buf = append([]byte{}, p.buf[totalConsumed:]...)
	return req, false, nil
}

// frameBody implements phase 3. rest is the buffer immediately after
// the header terminator. It returns the body, how many bytes of rest
// were consumed, and whether more bytes are needed before framing can
// complete (only meaningful for Content-Length and chunked framing that
// run past the currently buffered data).
func (p *RequestParser) frameBody(method Method, header *Header, rest []byte) (body []byte, consumed int, needMore bool, err *httperr.CoreError) {
	if !method.HasBody() {
		return nil, 0, false, nil
	}

	if token, ok := header.LastToken("Transfer-Encoding"); ok && strings.EqualFold(token, "chunked") {
		return p.decodeChunked(rest)
	}

	if cl, ok := header.Get("Content-Length"); ok {
		n, perr := strconv.Atoi(cl)
		if perr != nil || n < 0 {
			return nil, 0, false, httperr.NewMalformedRequest("invalid Content-Length")
		}
		if n > p.maxBodyBytes {
			return nil, 0, false, httperr.NewPayloadTooLarge(p.maxBodyBytes)
		}
		if len(rest) < n {
			return nil, 0, true, nil
		}
		return append([]byte{}, rest[:n]...), n, false, nil
	}

	return nil, 0, false, nil
}

// decodeChunked implements the chunked transfer-coding algorithm of
// RFC 7230 §4.1 against the bytes immediately following the header
// terminator. It stops at the chunk with size 0 and any trailer block
// up to the next blank line.
func (p *RequestParser) decodeChunked(rest []byte) (body []byte, consumed int, needMore bool, err *httperr.CoreError) {
	var out []byte
	pos := 0

	for {
		lineEnd := bytes.Index(rest[pos:], crlf)
		if lineEnd < 0 {
			return nil, 0, true, nil
		}
		sizeLine := rest[pos : pos+lineEnd]
		pos += lineEnd + len(crlf)

		if i := bytes.IndexByte(sizeLine, ';'); i >= 0 {
			sizeLine = sizeLine[:i]
		}
		sizeLine = bytes.TrimSpace(sizeLine)
		size, perr := strconv.ParseUint(string(sizeLine), 16, 64)
		if perr != nil {
			return nil, 0, false, httperr.NewMalformedRequest("invalid chunk size")
		}

		if size == 0 {
			// Trailer headers, if any, up to a blank line.
			for {
				trailerEnd := bytes.Index(rest[pos:], crlf)
				if trailerEnd < 0 {
					return nil, 0, true, nil
				}
				line := rest[pos : pos+trailerEnd]
				pos += trailerEnd + len(crlf)
				if len(line) == 0 {
					break
				}
			}
			return out, pos, false, nil
		}

		if len(rest) < pos+int(size)+len(crlf) {
			return nil, 0, true, nil
		}

		if len(out)+int(size) > p.maxBodyBytes {
			return nil, 0, false, httperr.NewPayloadTooLarge(p.maxBodyBytes)
		}

		out = append(out, rest[pos:pos+int(size)]...)
		pos += int(size)

		if !bytes.HasPrefix(rest[pos:], crlf) {
			return nil, 0, false, httperr.NewMalformedRequest("missing CRLF after chunk data")
		}
		pos += len(crlf)
	}
}
