package config

import (
	"strings"
	"time"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BackendURL  string `env:"BACKEND_URL" envDefault:"http://localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	Store    Store    `envPrefix:"STORE_"`
	Newebpay Newebpay `envPrefix:"NEWEBPAY_"`
	Analysis Analysis `envPrefix:"ANALYSIS_"`
	Order    Order    `envPrefix:"ORDER_"`
}

type Newebpay struct {
	MerchantID string `env:"MERCHANT_ID,required"`
	HashKey    string `env:"HASH_KEY,required"`
	HashIV     string `env:"HASH_IV,required"`
	Version    string `env:"VERSION" envDefault:"2.0"`
	GatewayURL string `env:"URL" envDefault:"https://ccore.newebpay.com/MPG/mpg_gateway"`
	NotifyURL  string `env:"NOTIFY_URL"`
	ReturnURL  string `env:"RETURN_URL"`
	// TrustReturn lets an unsigned browser return promote an order.
	TrustReturn bool `env:"TRUST_RETURN" envDefault:"false"`
}

type Analysis struct {
	WebhookURL string        `env:"WEBHOOK_URL,required"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"2m"`
	MaxRetries uint64        `env:"MAX_RETRIES" envDefault:"2"`
}

type Order struct {
	Amount       int64  `env:"AMOUNT" envDefault:"100"`
	ItemDesc     string `env:"ITEM_DESC" envDefault:"履歷透視鏡分析服務"`
	DefaultEmail string `env:"DEFAULT_EMAIL" envDefault:"test@example.com"`
}

// Store selects the order store backend: memory, sqlite or mysql.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"memory"`
	DSN    string `env:"DSN" envDefault:"resume.db"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Resolve fills the gateway callback endpoints from BackendURL when they
// are not set explicitly.
func (c *Config) Resolve() {
	base := strings.TrimRight(c.BackendURL, "/")
	if c.Newebpay.NotifyURL == "" {
		c.Newebpay.NotifyURL = base + "/api/payment-callback"
	}
	if c.Newebpay.ReturnURL == "" {
		c.Newebpay.ReturnURL = base + "/api/payment-return"
	}
	c.FrontendURL = strings.TrimRight(c.FrontendURL, "/")
}
