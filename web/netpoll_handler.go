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
	"io"
	"net"
	"time"

	"github.com/caiflower/httpws/httperr"
	golocalv1 "github.com/caiflower/httpws/pkg/golocal/v1"
	"github.com/caiflower/httpws/pkg/tools"
	"github.com/caiflower/httpws/ws"
)

const beginTime = "beginTime"

// Handler is the external collaborator that turns one parsed request
// into a response. It never touches the socket directly; the session
// owns that exclusively.
type Handler func(req *Request) *Response

// WSHandler is the external collaborator for upgraded connections.
type WSHandler func(frame *ws.Frame) *ws.Frame

// sessionState names where the Connection Session's state machine
// currently sits, mirroring the state table the core is built from.
type sessionState int

const (
	stateIdle sessionState = iota
	stateReading
	stateDispatch
	stateWriting
)

// NetpollHttpHandler drives one accepted connection's entire HTTP
// keep-alive lifecycle: the session state machine, the upgrade
// handshake, and a handoff to ws.Session once upgraded. The name is
// kept from the connection-per-goroutine handler this was adapted
// from; conn only needs to satisfy net.Conn, which netpoll.Connection
// does.
type NetpollHttpHandler struct {
	server *NetpollHttpServer
	conn   net.Conn

	parser       *RequestParser
	requestCount uint

	lastRequest  *Request
	lastResponse *Response
}

// ServeHTTP drives the state machine until the connection should close
// or has been handed off to a WebSocket session.
func (h *NetpollHttpHandler) ServeHTTP() {
	defer golocalv1.Clean()

	h.parser = NewRequestParser(h.server.config.MaxHeaderBytes, h.server.config.MaxBodyBytes)
	state := stateIdle

	for {
		switch state {
		case stateIdle:
			if err := h.waitForBytes(h.idleTimeout()); err != nil {
				return
			}
			state = stateReading

		case stateReading:
			req, cerr := h.readRequest()
			if cerr != nil {
				if !cerr.IsSilent() {
					h.writeErrorAndClose(cerr)
				}
				return
			}
			golocalv1.PutTraceID(h.resolveTraceID(req))
			golocalv1.Put(beginTime, time.Now())

			if req.IsWebSocketUpgrade() {
				h.upgrade(req)
				return
			}
			h.lastRequest = req
			state = stateDispatch

		case stateDispatch:
			h.lastResponse = h.dispatch(h.lastRequest)
			state = stateWriting

		case stateWriting:
			keepAlive := h.writeResponse(h.lastRequest, h.lastResponse)
			h.observeMetric(h.lastRequest, h.lastResponse)
			h.requestCount++
			if !keepAlive || h.requestCount >= h.server.config.KeepAliveMaxRequests {
				return
			}
			state = stateIdle
		}
	}
}

func (h *NetpollHttpHandler) idleTimeout() time.Duration {
	return time.Duration(h.server.config.KeepAliveTimeoutSecs) * time.Second
}

func (h *NetpollHttpHandler) headerTimeout() time.Duration {
	return time.Duration(h.server.config.HeaderReadTimeoutSecs) * time.Second
}

func (h *NetpollHttpHandler) bodyTimeout() time.Duration {
	return time.Duration(h.server.config.BodyReadTimeoutSecs) * time.Second
}

// waitForBytes blocks, under deadline, until at least one byte is
// buffered for the next request. It is only used while Idle: once any
// byte of a new request has arrived the per-request timeouts take over.
func (h *NetpollHttpHandler) waitForBytes(timeout time.Duration) error {
	if h.parser.Buffered() > 0 {
		return nil
	}
	_ = h.conn.SetReadDeadline(time.Now().Add(timeout))
	buf := make([]byte, 4096)
	n, err := h.conn.Read(buf)
	if err != nil {
		return err
	}
	h.parser.Feed(buf[:n])
	return nil
}

// readRequest drives phases 1-3 of the request parser to completion,
// reading more from the socket as needed under the per-request timeout
// budget.
func (h *NetpollHttpHandler) readRequest() (*Request, *httperr.CoreError) {
	deadline := time.Now().Add(h.headerTimeout())
	buf := make([]byte, 4096)

	for h.parser.HeaderTerminatorIndex() < 0 {
		if h.parser.HeaderTooLarge() {
			return nil, httperr.NewHeaderTooLarge(h.server.config.MaxHeaderBytes)
		}
		_ = h.conn.SetReadDeadline(deadline)
		n, err := h.conn.Read(buf)
		if err != nil {
			if h.parser.Empty() {
				return nil, httperr.New(httperr.ConnectionClosed, "peer closed before header terminator")
			}
			if isTimeout(err) {
				return nil, httperr.NewTimeout("header read timeout")
			}
			if err == io.EOF {
				return nil, httperr.NewMalformedRequest("peer closed before header terminator")
			}
			return nil, httperr.NewIO(err)
		}
		h.parser.Feed(buf[:n])
	}
	if h.parser.HeaderTooLarge() {
		return nil, httperr.NewHeaderTooLarge(h.server.config.MaxHeaderBytes)
	}

	bodyDeadline := time.Now().Add(h.bodyTimeout())
	for {
		req, needMore, perr := h.parser.ParseRequest()
		if perr != nil {
			return nil, perr
		}
		if !needMore {
			return req, nil
		}
		_ = h.conn.SetReadDeadline(bodyDeadline)
		n, err := h.conn.Read(buf)
		if err != nil {
			if isTimeout(err) {
				return nil, httperr.NewTimeout("body read timeout")
			}
			return nil, httperr.NewIO(err)
		}
		h.parser.Feed(buf[:n])
	}
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

func (h *NetpollHttpHandler) resolveTraceID(req *Request) string {
	headerName := h.server.config.HeaderTraceID
	if headerName == "" {
		headerName = "X-Request-Id"
	}
	if v, ok := req.Header.Get(headerName); ok && v != "" {
		return v
	}
	id := tools.UUID()
	req.Header.Set(headerName, id)
	return id
}

// upgrade negotiates and, on success, transfers the connection to a
// ws.Session for the remainder of its life.
func (h *NetpollHttpHandler) upgrade(req *Request) {
	resp, cerr := NegotiateUpgrade(req)
	if cerr != nil {
		h.writeErrorAndClose(cerr)
		return
	}

	if _, err := h.conn.Write(resp.SerializeUpgrade(time.Now())); err != nil {
		h.server.logger.Warn("[web] failed to write upgrade response: %s", err.Error())
		return
	}

	wsHandler := h.server.wsHandler
	session := ws.NewSession(h.conn, func(f *ws.Frame) *ws.Frame {
		if wsHandler == nil {
			return nil
		}
		return wsHandler(f)
	}, time.Duration(h.server.config.WSHeartbeatIntervalS)*time.Second, time.Duration(h.server.config.WSPongTimeoutSecs)*time.Second, h.server.logger, h.server.wsMetric)

	var untrack func()
	if h.server.wsManager != nil {
		untrack = h.server.wsManager.Track(session)
	}
	if untrack != nil {
		defer untrack()
	}

	session.Serve()
}

// dispatch checks the rate limiter and, if allowed, invokes the
// external handler. The handler never sees a request past the limiter.
func (h *NetpollHttpHandler) dispatch(req *Request) *Response {
	if h.server.limiterBucket != nil && !h.server.limiterBucket.TakeTokenNonBlocking() {
		return NewResponse(429).JSON(map[string]string{"type": "TooManyRequests"})
	}

	if h.server.handler == nil {
		return NewResponse(404).Text("not found")
	}

	resp := h.safeHandle(req)
	if resp == nil {
		resp = NewResponse(500).JSON(map[string]string{"type": "InternalError"})
	}
	return resp
}

func (h *NetpollHttpHandler) safeHandle(req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			h.server.logger.Error("[web] handler panic: %v", r)
			resp = NewResponse(500).JSON(map[string]string{"type": "InternalError"})
		}
	}()
	return h.server.handler(req)
}

// writeResponse computes the keep-alive decision, serializes, writes,
// and reports whether the connection should remain open.
func (h *NetpollHttpHandler) writeResponse(req *Request, resp *Response) bool {
	decision := h.keepAliveDecision(req, resp)
	if _, err := h.conn.Write(resp.Serialize(decision, time.Now())); err != nil {
		h.server.logger.Warn("[web] failed to write response: %s", err.Error())
		return false
	}
	return decision.KeepAlive
}

// observeMetric records one completed request's cost, measured from the
// beginTime stamped when the request was first read. Skipped entirely
// when metrics are disabled.
func (h *NetpollHttpHandler) observeMetric(req *Request, resp *Response) {
	if h.server.httpMetric == nil {
		return
	}
	started, ok := golocalv1.Get(beginTime).(time.Time)
	if !ok {
		return
	}
	h.server.httpMetric.Observe(string(req.Method), resp.StatusCode, float64(time.Since(started).Milliseconds()))
}

func (h *NetpollHttpHandler) keepAliveDecision(req *Request, resp *Response) KeepAliveDecision {
	keepAlive := req.IsKeepAliveRequested()
	if resp.StatusCode >= 500 || resp.StatusCode == 400 || resp.StatusCode == 408 || resp.StatusCode == 413 || resp.StatusCode == 431 {
		keepAlive = false
	}
	return KeepAliveDecision{
		KeepAlive:   keepAlive,
		TimeoutSecs: h.server.config.KeepAliveTimeoutSecs,
		MaxRequests: h.server.config.KeepAliveMaxRequests,
	}
}

// writeErrorAndClose emits a best-effort error response for errors that
// occur before any response has been sent. The caller closes the
// socket immediately after.
func (h *NetpollHttpHandler) writeErrorAndClose(cerr *httperr.CoreError) {
	if cerr.HTTPStatus == 0 {
		return
	}
	resp := NewResponse(cerr.HTTPStatus).JSON(map[string]string{"type": string(cerr.Kind), "message": cerr.Message})
	decision := KeepAliveDecision{KeepAlive: false}
	_, _ = h.conn.Write(resp.Serialize(decision, time.Now()))
}
