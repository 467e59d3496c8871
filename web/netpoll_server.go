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
	"context"
	"fmt"

	"github.com/caiflower/httpws/config"
	"github.com/caiflower/httpws/metrics"
	"github.com/caiflower/httpws/pkg/limiter"
	"github.com/caiflower/httpws/pkg/logger"
	"github.com/caiflower/httpws/pkg/safego"
	"github.com/caiflower/httpws/ws"
	"github.com/cloudwego/netpoll"
)

// NetpollHttpServer owns the TCP listener and netpoll event loop that
// drive every accepted connection's NetpollHttpHandler. It is the
// thinnest layer on top of the Connection Session: accept, hand off,
// repeat.
type NetpollHttpServer struct {
	config        *config.Config
	logger        logger.ILog
	listener      netpoll.Listener
	eventLoop     netpoll.EventLoop
	handler       Handler
	wsHandler     WSHandler
	wsManager     *ws.Manager
	limiterBucket limiter.Limiter
	httpMetric    *metrics.HttpMetric
	wsMetric      *metrics.WSMetric
}

// NewNetpollHttpServer builds a server bound to cfg, dispatching HTTP
// requests to handler and upgraded frames to wsHandler. Either handler
// may be nil; an HTTP request with no handler gets 404, an upgraded
// session with no wsHandler drops every inbound Text/Binary frame.
func NewNetpollHttpServer(cfg *config.Config, handler Handler, wsHandler WSHandler) *NetpollHttpServer {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &NetpollHttpServer{
		config:    cfg,
		logger:    logger.DefaultLogger(),
		handler:   handler,
		wsHandler: wsHandler,
		wsManager: ws.NewManager(logger.DefaultLogger()),
	}

	if cfg.WebLimiter.Enable {
		if cfg.WebLimiter.Kind == "fixedwindow" {
			s.limiterBucket = limiter.NewFixedWindow(cfg.WebLimiter.Qos)
		} else {
			s.limiterBucket = limiter.NewXTokenBucket(cfg.WebLimiter.Qos, cfg.WebLimiter.Qos)
		}
	}

	if cfg.EnableMetrics {
		s.httpMetric = metrics.NewHttpMetric()
		s.wsMetric = metrics.NewWSMetric()
		s.wsManager.WithMetric(s.wsMetric)
	}

	return s
}

// Name satisfies global.DaemonResource so the server can be registered
// with the process-wide resource manager alongside any other
// long-lived collaborator.
func (s *NetpollHttpServer) Name() string {
	return fmt.Sprintf("NETPOLL_HTTP_SERVER:%s", s.config.Name)
}

// WSManager exposes the session registry so an external collaborator
// can broadcast application-originated frames or inspect session count.
func (s *NetpollHttpServer) WSManager() *ws.Manager {
	return s.wsManager
}

// Start creates the listener and event loop and begins serving in the
// background. It returns once the listener is bound; Serve runs async.
func (s *NetpollHttpServer) Start() error {
	listener, err := netpoll.CreateListener("tcp", s.config.BindAddress)
	if err != nil {
		return fmt.Errorf("failed to create netpoll listener: %w", err)
	}
	s.listener = listener

	onRequest := func(ctx context.Context, connection netpoll.Connection) error {
		s.handleConnection(connection)
		return nil
	}

	eventLoop, err := netpoll.NewEventLoop(onRequest)
	if err != nil {
		return fmt.Errorf("failed to create event loop: %w", err)
	}
	s.eventLoop = eventLoop

	s.logger.Info(
		"\n***************************** httpws server startup ***************************************\n"+
			"************* [name:%s] listening on %s *********\n"+
			"*************************************************************************************************", s.config.Name, s.config.BindAddress)

	safego.Go(func() {
		if err := s.eventLoop.Serve(s.listener); err != nil {
			s.logger.Error("[web] event loop serve error: %s", err.Error())
		}
	})

	return nil
}

// handleConnection runs one connection's entire lifecycle. netpoll
// invokes onRequest once per connection and expects it to own the
// connection for as long as it wants to keep serving it; the handler
// below loops internally until the keep-alive budget is exhausted or
// the peer closes.
func (s *NetpollHttpServer) handleConnection(conn netpoll.Connection) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("[web] connection handler panic: %v", r)
		}
		_ = conn.Close()
	}()

	h := &NetpollHttpHandler{server: s, conn: conn}
	h.ServeHTTP()
}

// Close satisfies global.DaemonResource: it stops accepting new
// connections and sends a graceful-shutdown Close to every live
// WebSocket session.
func (s *NetpollHttpServer) Close() {
	s.logger.Info("[web] httpws server shutting down")

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Warn("[web] listener close error: %s", err.Error())
		}
	}

	s.wsManager.Close()
}
