package main

import (
	"github.com/caiflower/httpws/config"
	"github.com/caiflower/httpws/global"
	"github.com/caiflower/httpws/pkg/logger"
	"github.com/caiflower/httpws/web"
	"github.com/caiflower/httpws/ws"
)

func echoHandler(req *web.Request) *web.Response {
	switch req.Target {
	case "/health":
		return web.NewResponse(200).Text("ok")
	default:
		return web.NewResponse(200).JSON(map[string]string{
			"method": string(req.Method),
			"target": req.Target,
		})
	}
}

func echoWSHandler(frame *ws.Frame) *ws.Frame {
	switch frame.Opcode {
	case ws.OpText:
		return ws.TextFrame(frame.Text)
	case ws.OpBinary:
		return ws.BinaryFrame(frame.Payload)
	default:
		return nil
	}
}

func main() {
	cfg := config.Default()
	if path := config.ConfigPath(); path != "" {
		if loaded, err := config.Load(path + "/httpwsd.yaml"); err == nil {
			cfg = loaded
		}
	}

	server := web.NewNetpollHttpServer(cfg, echoHandler, echoWSHandler)

	global.DefaultResourceManger.AddDaemon(server)

	logger.Info("httpwsd starting on %s", cfg.BindAddress)
	global.DefaultResourceManger.Signal()
}
