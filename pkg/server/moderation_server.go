package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"

	"github.com/modguard/pipeline/pkg/config"
	handlers "github.com/modguard/pipeline/pkg/handlers/http"
	"github.com/modguard/pipeline/pkg/server/middleware"
)

type (
	ModerationServerDI struct {
		HandlerTransport handlers.HandlerTransport
		Config           *config.Config
		Logger           *logrus.Logger
	}
	ModerationServer struct {
		*BaseServer
		handlerTransport handlers.HandlerTransport
	}
)

func NewModerationServer(di ModerationServerDI) *ModerationServer {
	return &ModerationServer{
		BaseServer:       NewBaseServer(di.Config, di.Logger),
		handlerTransport: di.HandlerTransport,
	}
}

func (s *ModerationServer) Run() error {
	s.Router.Use(recover.New())
	s.Router.Use(middleware.RequestID())

	s.setupRoutes()
	s.setupHealthCheck()
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("Starting moderation server")
	return s.Router.Listen(addr)
}

func (s *ModerationServer) setupRoutes() {
	v1 := s.Router.Group("/api/v1")
	{
		mod := v1.Group("/moderation")
		{
			mod.Post("", s.handlerTransport.ModerateHandler.Handle)
			mod.Post("/quick", s.handlerTransport.QuickCheckHandler.Handle)
			mod.Get("/status", s.handlerTransport.StatusHandler.Handle)
			mod.Post("/blocklist/reload", s.handlerTransport.ReloadBlocklistHandler.Handle)
		}
	}
}

func (s *ModerationServer) Shutdown() error {
	return s.Router.Shutdown()
}
