package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/z5702god/resume-backend/internal/client"
	"github.com/z5702god/resume-backend/internal/config"
	"github.com/z5702god/resume-backend/internal/dto"
	"github.com/z5702god/resume-backend/internal/model"
	"github.com/z5702god/resume-backend/internal/newebpay"
	"github.com/z5702god/resume-backend/internal/repository"
)

type OrderService interface {
	Analyze(ctx context.Context, req *client.AnalyzeRequest) (*AdmitResult, error)
	Admit(ctx context.Context, result, submitterID string) (*AdmitResult, error)
	CreatePayment(ctx context.Context, orderID, discountCode string) (*PaymentResult, error)
	HandleCallback(ctx context.Context, tradeInfo, tradeSha string) (*NotificationResult, error)
	HandleReturn(ctx context.Context, tradeInfo, tradeSha string) (*NotificationResult, error)
	GetResult(ctx context.Context, orderID string) (*ResultView, error)
}

type AdmitResult struct {
	OrderID string
	Preview string
}

type PaymentResult struct {
	OrderID     string
	Free        bool
	Amount      int64
	PaymentData *dto.PaymentData
}

type NotificationResult struct {
	OrderID       string
	GatewayStatus string
	Authenticated bool
	Outcome       model.NotificationOutcome
}

type ResultStatus int

const (
	ResultReady ResultStatus = iota
	ResultPaymentRequired
	ResultNotFound
)

type ResultView struct {
	Status ResultStatus
	Body   string
}

// PaidHook runs once per order, in the request that moved it to paid.
type PaidHook func(ctx context.Context, order *model.Order)

type Option func(*orderServiceImpl)

func WithLogger(logger *slog.Logger) Option {
	return func(s *orderServiceImpl) { s.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(s *orderServiceImpl) { s.now = now }
}

func WithPaidHook(hook PaidHook) Option {
	return func(s *orderServiceImpl) { s.paidHooks = append(s.paidHooks, hook) }
}

type orderServiceImpl struct {
	orders         repository.OrderRepository
	notifications  repository.NotificationRepository
	cipher         *newebpay.Cipher
	analysisClient client.AnalysisClient
	gateway        config.Newebpay
	order          config.Order

	logger    *slog.Logger
	now       func() time.Time
	paidHooks []PaidHook
}

func NewOrderService(
	orders repository.OrderRepository,
	notifications repository.NotificationRepository,
	cipher *newebpay.Cipher,
	analysisClient client.AnalysisClient,
	gatewayCfg config.Newebpay,
	orderCfg config.Order,
	opts ...Option,
) OrderService {
	s := &orderServiceImpl{
		orders:         orders,
		notifications:  notifications,
		cipher:         cipher,
		analysisClient: analysisClient,
		gateway:        gatewayCfg,
		order:          orderCfg,
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderServiceImpl) Analyze(ctx context.Context, req *client.AnalyzeRequest) (*AdmitResult, error) {
	result, err := s.analysisClient.Analyze(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "analysis failed", "stage", "analyze", "user_id", req.UserID, "error", err)
		return nil, fmt.Errorf("analyze resume: %w", err)
	}

	return s.Admit(ctx, result, req.UserID)
}

func (s *orderServiceImpl) Admit(ctx context.Context, result, submitterID string) (*AdmitResult, error) {
	order := &model.Order{
		OrderID:     s.newOrderID(),
		Result:      result,
		SubmitterID: submitterID,
		Email:       s.normalizeEmail(ctx, submitterID),
		Amount:      s.order.Amount,
		ItemDesc:    s.order.ItemDesc,
	}

	if err := s.orders.Admit(ctx, order); err != nil {
		return nil, fmt.Errorf("store pending order: %w", err)
	}

	s.logger.InfoContext(ctx, "order admitted", "order_id", order.OrderID, "email", order.Email)

	return &AdmitResult{
		OrderID: order.OrderID,
		Preview: buildPreview(result),
	}, nil
}

func (s *orderServiceImpl) CreatePayment(ctx context.Context, orderID, discountCode string) (*PaymentResult, error) {
	order, err := s.orders.FindPending(ctx, orderID)
	if err != nil {
		return nil, err
	}

	amount := order.Amount
	itemDesc := order.ItemDesc

	if discount, ok := lookupDiscount(discountCode); ok {
		amount = discount.Apply(order.Amount)
		itemDesc = fmt.Sprintf("%s (折扣碼: %s)", order.ItemDesc, discount.Code)
		s.logger.InfoContext(ctx, "discount applied", "order_id", orderID, "code", discount.Code, "amount", amount)

		if amount == 0 {
			return s.settleFree(ctx, order)
		}
	} else if discountCode != "" {
		s.logger.WarnContext(ctx, "invalid discount code", "order_id", orderID, "code", discountCode)
	}

	info := newebpay.TradeInfo{
		MerchantID:      s.gateway.MerchantID,
		TimeStamp:       s.now().Unix(),
		Version:         s.gateway.Version,
		MerchantOrderNo: order.OrderID,
		Amt:             amount,
		NotifyURL:       s.gateway.NotifyURL,
		ReturnURL:       s.gateway.ReturnURL,
		ItemDesc:        itemDesc,
		Email:           order.Email,
	}

	tradeInfo := s.cipher.Encrypt(info.Encode())
	tradeSha := s.cipher.Sign(tradeInfo)

	s.logger.InfoContext(ctx, "payment request created", "order_id", orderID, "amount", amount, "discount_code", discountCode)

	return &PaymentResult{
		OrderID: order.OrderID,
		Amount:  amount,
		PaymentData: &dto.PaymentData{
			MerchantID: s.gateway.MerchantID,
			TradeInfo:  tradeInfo,
			TradeSha:   tradeSha,
			Version:    s.gateway.Version,
			PaymentURL: s.gateway.GatewayURL,
		},
	}, nil
}

func (s *orderServiceImpl) settleFree(ctx context.Context, order *model.Order) (*PaymentResult, error) {
	promoted, err := s.orders.Promote(ctx, order.OrderID)
	if err != nil {
		return nil, fmt.Errorf("promote free order: %w", err)
	}
	if !promoted {
		// another request settled it between lookup and promotion
		return nil, fmt.Errorf("promote free order %s: %w", order.OrderID, repository.ErrOrderNotFound)
	}

	s.afterPaid(ctx, order.OrderID, "discount")

	return &PaymentResult{
		OrderID: order.OrderID,
		Free:    true,
	}, nil
}

// HandleCallback processes the server-to-server notify message. Nothing
// in it is trusted until TradeSha verifies.
func (s *orderServiceImpl) HandleCallback(ctx context.Context, tradeInfo, tradeSha string) (*NotificationResult, error) {
	if tradeInfo == "" || !s.cipher.Verify(tradeInfo, tradeSha) {
		s.logger.WarnContext(ctx, "payment callback rejected", "stage", "verify", "error", newebpay.ErrTagMismatch)
		s.record(ctx, &model.GatewayNotification{
			Source:  model.NotificationSourceCallback,
			Outcome: model.NotificationOutcomeUnauthenticated,
			Error:   newebpay.ErrTagMismatch.Error(),
		})
		return &NotificationResult{Outcome: model.NotificationOutcomeUnauthenticated}, newebpay.ErrTagMismatch
	}

	res, err := s.cipher.DecryptTradeResult(tradeInfo)
	if err != nil {
		return s.rejectUndecodable(ctx, model.NotificationSourceCallback, true, err)
	}

	return s.settle(ctx, model.NotificationSourceCallback, res, true)
}

// HandleReturn processes the browser redirect. It always tries to recover
// the order id so the user can be sent back to the frontend, but only an
// authenticated message may promote the order unless TrustReturn is set.
func (s *orderServiceImpl) HandleReturn(ctx context.Context, tradeInfo, tradeSha string) (*NotificationResult, error) {
	authenticated := tradeSha != "" && s.cipher.Verify(tradeInfo, tradeSha)

	res, err := s.cipher.DecryptTradeResult(tradeInfo)
	if err != nil {
		return s.rejectUndecodable(ctx, model.NotificationSourceReturn, authenticated, err)
	}

	if !authenticated && !s.gateway.TrustReturn {
		s.logger.WarnContext(ctx, "unauthenticated payment return", "order_id", res.Result.MerchantOrderNo, "has_trade_sha", tradeSha != "")
		s.record(ctx, &model.GatewayNotification{
			Source:        model.NotificationSourceReturn,
			OrderID:       res.Result.MerchantOrderNo,
			GatewayStatus: res.Status,
			TradeNo:       res.Result.TradeNo,
			Outcome:       model.NotificationOutcomeUnauthenticated,
		})
		return &NotificationResult{
			OrderID:       res.Result.MerchantOrderNo,
			GatewayStatus: res.Status,
			Outcome:       model.NotificationOutcomeUnauthenticated,
		}, nil
	}

	return s.settle(ctx, model.NotificationSourceReturn, res, authenticated)
}

func (s *orderServiceImpl) rejectUndecodable(ctx context.Context, source model.NotificationSource, authenticated bool, err error) (*NotificationResult, error) {
	s.logger.ErrorContext(ctx, "payment notification undecodable", "source", source, "stage", "decrypt", "error", err)
	s.record(ctx, &model.GatewayNotification{
		Source:  source,
		Outcome: model.NotificationOutcomeRejected,
		Error:   err.Error(),
	})
	return &NotificationResult{
		Authenticated: authenticated,
		Outcome:       model.NotificationOutcomeRejected,
	}, err
}

func (s *orderServiceImpl) settle(ctx context.Context, source model.NotificationSource, res *newebpay.TradeResult, authenticated bool) (*NotificationResult, error) {
	orderID := res.Result.MerchantOrderNo
	out := &NotificationResult{
		OrderID:       orderID,
		GatewayStatus: res.Status,
		Authenticated: authenticated,
		Outcome:       model.NotificationOutcomeIgnored,
	}
	entry := &model.GatewayNotification{
		Source:        source,
		OrderID:       orderID,
		GatewayStatus: res.Status,
		TradeNo:       res.Result.TradeNo,
	}

	if !res.Succeeded() {
		s.logger.InfoContext(ctx, "payment not successful", "source", source, "order_id", orderID, "status", res.Status, "message", res.Message)
		entry.Outcome = out.Outcome
		s.record(ctx, entry)
		return out, nil
	}

	promoted, err := s.orders.Promote(ctx, orderID)
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		s.logger.WarnContext(ctx, "payment for unknown order", "source", source, "order_id", orderID, "trade_no", res.Result.TradeNo)
		entry.Error = err.Error()
	case err != nil:
		s.logger.ErrorContext(ctx, "promote order failed", "source", source, "order_id", orderID, "stage", "promote", "error", err)
		out.Outcome = model.NotificationOutcomeRejected
		entry.Outcome = out.Outcome
		entry.Error = err.Error()
		s.record(ctx, entry)
		return out, fmt.Errorf("promote order %s: %w", orderID, err)
	case promoted:
		out.Outcome = model.NotificationOutcomePromoted
		s.afterPaid(ctx, orderID, string(source))
	default:
		out.Outcome = model.NotificationOutcomeAlreadyPaid
	}

	entry.Outcome = out.Outcome
	s.record(ctx, entry)
	return out, nil
}

func (s *orderServiceImpl) GetResult(ctx context.Context, orderID string) (*ResultView, error) {
	order, err := s.orders.Find(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return &ResultView{Status: ResultNotFound}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}

	if order.Status != model.OrderStatusPaid {
		return &ResultView{Status: ResultPaymentRequired}, nil
	}
	return &ResultView{Status: ResultReady, Body: order.Result}, nil
}

// afterPaid runs the paid-side effects. Callers must only invoke it after
// winning the Promote transition.
func (s *orderServiceImpl) afterPaid(ctx context.Context, orderID, via string) {
	s.logger.InfoContext(ctx, "order paid", "order_id", orderID, "via", via)
	if len(s.paidHooks) == 0 {
		return
	}

	order, err := s.orders.Find(ctx, orderID)
	if err != nil {
		s.logger.ErrorContext(ctx, "load paid order", "order_id", orderID, "error", err)
		return
	}
	for _, hook := range s.paidHooks {
		hook(ctx, order)
	}
}

func (s *orderServiceImpl) record(ctx context.Context, n *model.GatewayNotification) {
	if err := s.notifications.Record(ctx, n); err != nil {
		s.logger.ErrorContext(ctx, "record gateway notification", "order_id", n.OrderID, "outcome", n.Outcome, "error", err)
	}
}

// newOrderID fits newebpay's 30 character MerchantOrderNo limit.
func (s *orderServiceImpl) newOrderID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("ORDER_%d_%s", s.now().UnixMilli(), suffix)
}

func (s *orderServiceImpl) normalizeEmail(ctx context.Context, submitterID string) string {
	email := strings.TrimSpace(submitterID)
	if email == "" {
		return s.order.DefaultEmail
	}
	if !strings.Contains(email, "@") || !strings.Contains(email, ".") {
		s.logger.InfoContext(ctx, "invalid email format, using default", "submitter_id", submitterID)
		return s.order.DefaultEmail
	}
	return email
}
