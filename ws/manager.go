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
	"sync"
	"sync/atomic"

	"github.com/caiflower/httpws/metrics"
	"github.com/caiflower/httpws/pkg/logger"
)

// Manager tracks every live WebSocket session so the outer accept loop
// can broadcast a graceful shutdown across all of them at once. It
// implements global.DaemonResource so it can be registered with the
// process-wide resource manager the same way any other long-lived
// collaborator is.
type Manager struct {
	lock     sync.Mutex
	sessions map[int64]*Session
	nextID   int64
	logger   logger.ILog
	metric   *metrics.WSMetric
}

func NewManager(log logger.ILog) *Manager {
	if log == nil {
		log = logger.DefaultLogger()
	}
	return &Manager{sessions: make(map[int64]*Session), logger: log}
}

// WithMetric attaches a metric sink used to count sessions as they are
// tracked and untracked. Passing nil disables observation.
func (m *Manager) WithMetric(metric *metrics.WSMetric) *Manager {
	m.metric = metric
	return m
}

// Track registers a session and returns a function the caller must
// invoke once the session ends, to deregister it.
func (m *Manager) Track(s *Session) (untrack func()) {
	id := atomic.AddInt64(&m.nextID, 1)
	m.lock.Lock()
	m.sessions[id] = s
	m.lock.Unlock()
	if m.metric != nil {
		m.metric.SessionOpened()
	}

	return func() {
		m.lock.Lock()
		delete(m.sessions, id)
		m.lock.Unlock()
		if m.metric != nil {
			m.metric.SessionClosed()
		}
	}
}

// Count returns the number of currently tracked sessions.
func (m *Manager) Count() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.sessions)
}

// Name satisfies global.DaemonResource.
func (m *Manager) Name() string {
	return "ws.Manager"
}

// Start satisfies global.DaemonResource; there is nothing to start,
// sessions register themselves as connections upgrade.
func (m *Manager) Start() error {
	return nil
}

// Close sends Close(1001, "going away") to every live session and
// waits for nothing further — each session's own Serve loop tears
// itself down once its socket closes.
func (m *Manager) Close() {
	m.lock.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.lock.Unlock()

	m.logger.Info("[ws] shutting down %d session(s)", len(sessions))
	for _, s := range sessions {
		s.GoingAway()
		s.Close()
	}
}
