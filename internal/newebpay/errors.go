package newebpay

import (
	"errors"
	"fmt"
)

// ErrTagMismatch is returned when a TradeSha does not authenticate its
// TradeInfo.
var ErrTagMismatch = errors.New("newebpay: trade sha mismatch")

// CryptoError wraps a failure in one of the cipher steps.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("newebpay %s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// FormatError reports a decrypted payload that is not a trade result.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("newebpay trade result: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
