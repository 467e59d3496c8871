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

package metrics

import (
	"testing"
)

// TestMetrics_ObserveDoesNotPanic exercises both metric sets through one
// registration, since prometheus.MustRegister panics on a second
// registration of the same metric name within a process.
func TestMetrics_ObserveDoesNotPanic(t *testing.T) {
	http := NewHttpMetric()
	http.Observe("GET", 200, 12.5)
	http.Observe("POST", 500, 3.0)

	ws := NewWSMetric()
	ws.SessionOpened()
	ws.FrameObserved("in", "text")
	ws.SessionClosed()
}

func TestStatusLabel(t *testing.T) {
	cases := map[int]string{200: "2xx", 301: "3xx", 404: "4xx", 500: "5xx"}
	for code, want := range cases {
		if got := statusLabel(code); got != want {
			t.Fatalf("statusLabel(%d) = %s, want %s", code, got, want)
		}
	}
}
