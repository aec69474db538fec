package handler

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/z5702god/resume-backend/internal/client"
	"github.com/z5702god/resume-backend/internal/dto"
	"github.com/z5702god/resume-backend/internal/newebpay"
	"github.com/z5702god/resume-backend/internal/repository"
	"github.com/z5702god/resume-backend/internal/service"
)

const maxResumeSize = 10 << 20

type OrderHandler struct {
	orderService service.OrderService
	frontendURL  string
	logger       *slog.Logger
}

func NewOrderHandler(orderService service.OrderService, frontendURL string, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		frontendURL:  frontendURL,
		logger:       logger,
	}
}

func (h *OrderHandler) Analyze(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "No resume file uploaded"})
	}
	if fileHeader.Size > maxResumeSize {
		return c.JSON(http.StatusRequestEntityTooLarge, dto.ErrorResponse{Error: "Resume file too large"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable resume file")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable resume file")
	}

	result, err := h.orderService.Analyze(ctx, &client.AnalyzeRequest{
		UserID:              c.FormValue("userId"),
		JobResponsibilities: c.FormValue("jobResponsibilities"),
		JobRequirements:     c.FormValue("jobRequirements"),
		FileName:            fileHeader.Filename,
		ContentType:         fileHeader.Header.Get("Content-Type"),
		File:                content,
	})
	if err != nil {
		var upstreamErr *client.UpstreamError
		if errors.As(err, &upstreamErr) {
			return c.String(upstreamErr.StatusCode, upstreamErr.Body)
		}
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, &dto.AnalyzeResponse{
		Success: true,
		OrderID: result.OrderID,
		Preview: result.Preview,
		Message: "Analysis complete. Please proceed to payment.",
	})
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.orderService.CreatePayment(ctx, req.OrderID, req.DiscountCode)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Order not found"})
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "create order", "order_id", req.OrderID, "error", err)
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}

	if result.Free {
		return c.JSON(http.StatusOK, &dto.CreateOrderResponse{
			Success: true,
			Free:    true,
			OrderID: result.OrderID,
			Message: "免費優惠已套用，您可以直接查看完整結果！",
		})
	}

	return c.JSON(http.StatusOK, &dto.CreateOrderResponse{
		Success:     true,
		PaymentData: result.PaymentData,
	})
}

// PaymentCallback answers OK to every authenticated notify message unless
// the store failed. Unauthenticated ones get an empty 200.
func (h *OrderHandler) PaymentCallback(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.GatewayNotification
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusOK)
	}

	_, err := h.orderService.HandleCallback(ctx, req.TradeInfo, req.TradeSha)
	if errors.Is(err, newebpay.ErrTagMismatch) {
		return c.NoContent(http.StatusOK)
	}

	var cryptoErr *newebpay.CryptoError
	var formatErr *newebpay.FormatError
	if err != nil && !errors.As(err, &cryptoErr) && !errors.As(err, &formatErr) {
		return c.String(http.StatusInternalServerError, "ERROR")
	}

	return c.String(http.StatusOK, "OK")
}

var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta http-equiv="refresh" content="0;url={{.}}"></head>
<body><script>window.location.href = {{.}};</script></body>
</html>
`))

func (h *OrderHandler) PaymentReturn(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.GatewayNotification
	if err := c.Bind(&req); err != nil {
		h.logger.WarnContext(ctx, "bind payment return", "error", err)
	}

	result, err := h.orderService.HandleReturn(ctx, req.TradeInfo, req.TradeSha)
	if err != nil {
		h.logger.WarnContext(ctx, "payment return not applied", "error", err)
	}

	orderID := ""
	if result != nil {
		orderID = result.OrderID
	}

	var buf strings.Builder
	if err := redirectPage.Execute(&buf, h.redirectURL(orderID)); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, buf.String())
}

func (h *OrderHandler) redirectURL(orderID string) string {
	if orderID == "" {
		return h.frontendURL + "/"
	}
	return h.frontendURL + "/?" + url.Values{"orderId": {orderID}}.Encode()
}

func (h *OrderHandler) GetResult(c echo.Context) error {
	ctx := c.Request().Context()

	view, err := h.orderService.GetResult(ctx, c.Param("orderId"))
	if err != nil {
		return err
	}

	switch view.Status {
	case service.ResultReady:
		if json.Valid([]byte(view.Body)) {
			return c.JSONBlob(http.StatusOK, []byte(view.Body))
		}
		return c.String(http.StatusOK, view.Body)
	case service.ResultPaymentRequired:
		return c.JSON(http.StatusPaymentRequired, dto.ErrorResponse{Error: "Payment required"})
	default:
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Order not found"})
	}
}
