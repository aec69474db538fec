package dto

type AnalyzeResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Preview string `json:"preview"`
	Message string `json:"message"`
}

type CreateOrderRequest struct {
	OrderID      string `json:"orderId" form:"orderId"`
	DiscountCode string `json:"discountCode" form:"discountCode"`
}

// PaymentData is the signed bundle the browser posts to the MPG gateway.
type PaymentData struct {
	MerchantID string `json:"MerchantID"`
	TradeInfo  string `json:"TradeInfo"`
	TradeSha   string `json:"TradeSha"`
	Version    string `json:"Version"`
	PaymentURL string `json:"PaymentURL"`
}

type CreateOrderResponse struct {
	Success     bool         `json:"success"`
	Free        bool         `json:"free,omitempty"`
	OrderID     string       `json:"orderId,omitempty"`
	Message     string       `json:"message,omitempty"`
	PaymentData *PaymentData `json:"paymentData,omitempty"`
}

// GatewayNotification is what newebpay posts to the notify and return URLs.
type GatewayNotification struct {
	Status     string `json:"Status" form:"Status" query:"Status"`
	MerchantID string `json:"MerchantID" form:"MerchantID" query:"MerchantID"`
	Version    string `json:"Version" form:"Version" query:"Version"`
	TradeInfo  string `json:"TradeInfo" form:"TradeInfo" query:"TradeInfo"`
	TradeSha   string `json:"TradeSha" form:"TradeSha" query:"TradeSha"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
