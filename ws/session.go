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
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/caiflower/httpws/metrics"
	"github.com/caiflower/httpws/pkg/e"
	"github.com/caiflower/httpws/pkg/logger"
	"github.com/caiflower/httpws/pkg/safego"
	"github.com/caiflower/httpws/pkg/syncx"
)

// Handler is the application-side collaborator for text/binary
// messages. Returning a non-nil frame sends it back to the client;
// returning nil sends nothing. Ping/Pong/Close never reach Handler —
// the session answers them internally.
type Handler func(frame *Frame) *Frame

// Session drives the post-upgrade frame I/O loop for one connection:
// incremental frame decode, heartbeat, and close negotiation. Writes
// from the read loop, the heartbeat ticker, and the application are
// all funneled through writeFrame so a frame is never interleaved
// with another frame's bytes.
type Session struct {
	conn    net.Conn
	handler Handler
	logger  logger.ILog
	metric  *metrics.WSMetric

	heartbeatInterval time.Duration
	pongTimeout       time.Duration

	writeLock sync.Locker
	buf       []byte
	awaitPong int32
	closeSent int32
	closed    int32
	stopHeart chan struct{}
}

// NewSession wraps an already-upgraded connection. heartbeatInterval
// and pongTimeout come from configuration; zero values fall back to
// the spec's 30-second defaults. metric may be nil, in which case frame
// and session-count observations are skipped.
func NewSession(conn net.Conn, handler Handler, heartbeatInterval, pongTimeout time.Duration, log logger.ILog, metric *metrics.WSMetric) *Session {
	if heartbeatInterval <= 0 {
		heartbeatInterval = 30 * time.Second
	}
	if pongTimeout <= 0 {
		pongTimeout = 30 * time.Second
	}
	if log == nil {
		log = logger.DefaultLogger()
	}
	return &Session{
		conn:              conn,
		handler:           handler,
		logger:            log,
		metric:            metric,
		heartbeatInterval: heartbeatInterval,
		pongTimeout:       pongTimeout,
		writeLock:         syncx.NewSpinLock(),
		stopHeart:         make(chan struct{}),
	}
}

// Serve runs the session loop until the connection closes, a protocol
// error occurs, or the heartbeat deadline expires. It blocks the
// calling goroutine — the caller is expected to already own a
// per-connection goroutine, the way web.NetpollHttpServer's onRequest
// callback does. The heartbeat ticker runs on its own goroutine,
// spawned via safego.Go.
func (s *Session) Serve() {
	defer e.OnError("ws.Session.Serve")
	defer s.cleanup()
	defer func() { s.buf = nil }()

	safego.Go(s.heartbeatLoop)

	readBuf := make([]byte, 4096)
	for {
		if atomic.LoadInt32(&s.closed) == 1 {
			return
		}

		n, err := s.conn.Read(readBuf)
		if n > 0 {
			s.buf = append(s.buf, readBuf[:n]...)
			if !s.drainFrames() {
				return
			}
		}
		if err != nil {
			s.logger.Info("[ws] connection read ended: %s", err.Error())
			return
		}
	}
}

// drainFrames decodes every complete frame currently buffered. It
// returns false if the session should stop (protocol error or close
// completed).
func (s *Session) drainFrames() bool {
	for {
		frame, consumed, derr := Decode(s.buf)
		if derr != nil {
			s.sendClose(derr.WSCloseCode(), "protocol error")
			s.Close()
			return false
		}
		if frame == nil {
			return true
		}
		s.buf = s.buf[consumed:]

		if !s.dispatch(frame) {
			return false
		}
	}
}

func (s *Session) dispatch(frame *Frame) bool {
	if s.metric != nil {
		s.metric.FrameObserved("in", opcodeLabel(frame.Opcode))
	}
	switch frame.Opcode {
	case OpText, OpBinary:
		if s.handler != nil {
			if reply := s.handler(frame); reply != nil {
				_ = s.writeFrame(reply)
			}
		}
		return true
	case OpPing:
		_ = s.writeFrame(PongFrame(frame.Payload))
		return true
	case OpPong:
		atomic.StoreInt32(&s.awaitPong, 0)
		return true
	case OpClose:
		if atomic.CompareAndSwapInt32(&s.closeSent, 0, 1) {
			if frame.HasClose {
				_ = s.writeFrame(CloseFrame(frame.CloseCode, "", true))
			} else {
				_ = s.writeFrame(CloseFrame(0, "", false))
			}
		}
		s.Close()
		return false
	default:
		return true
	}
}

// heartbeatLoop sends a Ping every interval and closes the session if
// the previous one went unanswered.
func (s *Session) heartbeatLoop() {
	ticker := time.NewTicker(s.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopHeart:
			return
		case <-ticker.C:
			if atomic.LoadInt32(&s.closed) == 1 {
				return
			}
			if atomic.LoadInt32(&s.awaitPong) == 1 {
				s.sendClose(1002, "pong timeout")
				s.Close()
				return
			}
			atomic.StoreInt32(&s.awaitPong, 1)
			_ = s.writeFrame(PingFrame(nil))
		}
	}
}

// Send queues an application-originated frame for write, serialized
// against concurrent reads and heartbeat writes.
func (s *Session) Send(frame *Frame) error {
	return s.writeFrame(frame)
}

func (s *Session) writeFrame(frame *Frame) error {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()
	if atomic.LoadInt32(&s.closed) == 1 {
		return nil
	}
	if s.metric != nil {
		s.metric.FrameObserved("out", opcodeLabel(frame.Opcode))
	}
	_, err := s.conn.Write(Encode(frame))
	return err
}

func opcodeLabel(op Opcode) string {
	switch op {
	case OpText:
		return "text"
	case OpBinary:
		return "binary"
	case OpPing:
		return "ping"
	case OpPong:
		return "pong"
	case OpClose:
		return "close"
	default:
		return "continuation"
	}
}

func (s *Session) sendClose(code int, reason string) {
	if atomic.CompareAndSwapInt32(&s.closeSent, 0, 1) {
		_ = s.writeFrame(CloseFrame(code, reason, code != 0))
	}
}

// GoingAway sends Close(1001, "going away") as part of a graceful
// shutdown initiated by the outer accept loop.
func (s *Session) GoingAway() {
	s.sendClose(1001, "going away")
}

// Close tears the session down: stops the heartbeat and closes the
// socket, which unblocks the read goroutine's Read call so it can exit
// and drop its own buffer. Safe to call more than once.
func (s *Session) Close() {
	if atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		close(s.stopHeart)
		_ = s.conn.Close()
	}
}

func (s *Session) cleanup() {
	s.Close()
}
