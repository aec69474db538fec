package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/z5702god/resume-backend/internal/handler"
	appmiddleware "github.com/z5702god/resume-backend/internal/middleware"
	"github.com/z5702god/resume-backend/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo         *echo.Echo
	orderHandler *handler.OrderHandler
}

func NewServer(orderService service.OrderService, frontendURL string, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(appmiddleware.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:         e,
		orderHandler: handler.NewOrderHandler(orderService, frontendURL, logger),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api.POST("/analyze", s.orderHandler.Analyze)
	api.POST("/create-order", s.orderHandler.CreateOrder)
	api.GET("/get-result/:orderId", s.orderHandler.GetResult)

	// -------- newebpay notify / browser return --------
	api.POST("/payment-callback", s.orderHandler.PaymentCallback)
	api.POST("/payment-return", s.orderHandler.PaymentReturn)
	api.GET("/payment-return", s.orderHandler.PaymentReturn)
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
