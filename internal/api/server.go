package api

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/coursedesk/chat-service/internal/auth"
	"github.com/coursedesk/chat-service/internal/repository"
	"github.com/coursedesk/chat-service/internal/ws"
)

// Server exposes the HTTP surface: chat history, health, and the websocket
// upgrade into the gateway.
type Server struct {
	app  *fiber.App
	repo repository.MessageRepository
	log  *zap.SugaredLogger
}

func NewServer(jv *auth.JWTValidator, gw *ws.Gateway, repo repository.MessageRepository, log *zap.SugaredLogger) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(fiberlogger.New())

	s := &Server{app: app, repo: repo, log: log}

	app.Get("/health", s.health)
	app.Get("/ws", upgradeRequired, websocket.New(gw.HandleConn))

	v1 := app.Group("/v1", JWTAuthMiddleware(jv))
	v1.Get("/chats/:roomId", s.getRoomChats)

	return s
}

// App exposes the fiber app for Listen/Shutdown and tests.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

func upgradeRequired(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
