package newebpay

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	RespondTypeJSON = "JSON"
	StatusSuccess   = "SUCCESS"
)

// TradeInfo holds the fields of an MPG payment request in gateway order.
type TradeInfo struct {
	MerchantID      string
	TimeStamp       int64
	Version         string
	MerchantOrderNo string
	Amt             int64
	NotifyURL       string
	ReturnURL       string
	ItemDesc        string
	Email           string
}

// Encode renders the field chain the gateway expects before encryption.
// The order of the fields is part of the contract.
func (t TradeInfo) Encode() string {
	var b strings.Builder
	b.WriteString("MerchantID=" + t.MerchantID)
	b.WriteString("&TimeStamp=" + strconv.FormatInt(t.TimeStamp, 10))
	b.WriteString("&Version=" + t.Version)
	b.WriteString("&RespondType=" + RespondTypeJSON)
	b.WriteString("&MerchantOrderNo=" + t.MerchantOrderNo)
	b.WriteString("&Amt=" + strconv.FormatInt(t.Amt, 10))
	b.WriteString("&NotifyURL=" + EncodeURIComponent(t.NotifyURL))
	b.WriteString("&ReturnURL=" + EncodeURIComponent(t.ReturnURL))
	b.WriteString("&ItemDesc=" + EncodeURIComponent(t.ItemDesc))
	b.WriteString("&Email=" + EncodeURIComponent(t.Email))
	return b.String()
}

var uriComponentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes s the way the gateway's reference
// clients do: only A-Z a-z 0-9 - _ . ! ~ * ' ( ) are left as is.
func EncodeURIComponent(s string) string {
	return uriComponentReplacer.Replace(url.QueryEscape(s))
}

type TradeResult struct {
	Status  string       `json:"Status"`
	Message string       `json:"Message"`
	Result  TradeDetails `json:"Result"`
}

type TradeDetails struct {
	MerchantID      string      `json:"MerchantID"`
	Amt             json.Number `json:"Amt"`
	TradeNo         string      `json:"TradeNo"`
	MerchantOrderNo string      `json:"MerchantOrderNo"`
	PaymentType     string      `json:"PaymentType"`
	RespondType     string      `json:"RespondType"`
	PayTime         string      `json:"PayTime"`
	IP              string      `json:"IP"`
	EscrowBank      string      `json:"EscrowBank"`
}

func (r *TradeResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// ParseTradeResult strips the control bytes (0x00-0x20) the gateway pads
// its plaintext with and decodes the JSON envelope.
func ParseTradeResult(plain []byte) (*TradeResult, error) {
	cleaned := stripControl(plain)
	if len(cleaned) == 0 {
		return nil, &FormatError{Err: errors.New("empty payload")}
	}

	var res TradeResult
	if err := json.Unmarshal(cleaned, &res); err != nil {
		return nil, &FormatError{Err: err}
	}
	if res.Result.MerchantOrderNo == "" {
		return nil, &FormatError{Err: errors.New("missing Result.MerchantOrderNo")}
	}

	return &res, nil
}

func stripControl(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c > 0x20 {
			out = append(out, c)
		}
	}
	return out
}
