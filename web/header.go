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

import "strings"

// argsKV is one header pair, preserving the exact casing it arrived with.
// Header keeps these in an ordered slice instead of a map so duplicate
// names (Set-Cookie, Via) survive intact and insertion order is stable.
type argsKV struct {
	key   string
	value string
}

// Header is an insertion-ordered, case-insensitive multimap of header
// names to values. The zero value is an empty header set.
type Header struct {
	kv []argsKV
}

// NewHeader returns an empty Header ready to use.
func NewHeader() *Header {
	return &Header{}
}

// Add appends a header pair, keeping any existing pair with the same
// name (case-insensitively) rather than replacing it.
func (h *Header) Add(key, value string) {
	h.kv = append(h.kv, argsKV{key: key, value: value})
}

// Set replaces every existing pair with this name (case-insensitively)
// with a single pair carrying the given value.
func (h *Header) Set(key, value string) {
	h.Del(key)
	h.Add(key, value)
}

// Get returns the first value for key, case-insensitively, and whether
// any value was found.
func (h *Header) Get(key string) (string, bool) {
	for _, p := range h.kv {
		if strings.EqualFold(p.key, key) {
			return p.value, true
		}
	}
	return "", false
}

// GetAll returns every value stored under key, case-insensitively, in
// insertion order.
func (h *Header) GetAll(key string) []string {
	var values []string
	for _, p := range h.kv {
		if strings.EqualFold(p.key, key) {
			values = append(values, p.value)
		}
	}
	return values
}

// Has reports whether key is present, case-insensitively.
func (h *Header) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Del removes every pair with this name, case-insensitively.
func (h *Header) Del(key string) {
	out := h.kv[:0]
	for _, p := range h.kv {
		if !strings.EqualFold(p.key, key) {
			out = append(out, p)
		}
	}
	h.kv = out
}

// Range calls fn for every pair in insertion order.
func (h *Header) Range(fn func(key, value string)) {
	for _, p := range h.kv {
		fn(p.key, p.value)
	}
}

// Len returns the number of stored pairs, including duplicates.
func (h *Header) Len() int {
	return len(h.kv)
}

// HasToken reports whether the comma-separated value of key contains
// token as one of its comma-separated, whitespace-trimmed elements,
// case-insensitively. Used for Connection/Upgrade/Transfer-Encoding
// token matching.
func (h *Header) HasToken(key, token string) bool {
	for _, v := range h.GetAll(key) {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

// LastToken returns the last comma-separated, trimmed token of the
// first value stored under key. Used to find the final coding listed
// in a Transfer-Encoding header per RFC 7230 §3.3.1.
func (h *Header) LastToken(key string) (string, bool) {
	v, ok := h.Get(key)
	if !ok {
		return "", false
	}
	parts := strings.Split(v, ",")
	if len(parts) == 0 {
		return "", false
	}
	return strings.TrimSpace(parts[len(parts)-1]), true
}
