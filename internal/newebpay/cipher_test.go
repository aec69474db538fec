package newebpay

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testHashKey = "abcdefghijklmnopqrstuvwxyz012345"
	testHashIV  = "0123456789abcdef"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := NewCipher(testHashKey, testHashIV)
	require.NoError(t, err)
	return c
}

func TestNewCipherRejectsBadSecrets(t *testing.T) {
	_, err := NewCipher("short", testHashIV)
	require.Error(t, err)

	_, err = NewCipher(testHashKey, "short")
	require.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := newTestCipher(t)

	tests := map[string]TradeInfo{
		"plain order": {
			MerchantID:      "MS100000001",
			TimeStamp:       1700000000,
			Version:         "2.0",
			MerchantOrderNo: "ORDER_1700000000000_abc123def",
			Amt:             100,
			NotifyURL:       "https://api.example.com/api/payment-callback",
			ReturnURL:       "https://api.example.com/api/payment-return",
			ItemDesc:        "履歷透視鏡分析服務",
			Email:           "a@b.com",
		},
		"block aligned": {
			MerchantID: "M",
			Version:    "2.0",
			Email:      strings.Repeat("x", 13),
		},
	}

	for name, info := range tests {
		t.Run(name, func(t *testing.T) {
			encoded := info.Encode()
			cipherHex := c.Encrypt(encoded)
			assert.Equal(t, strings.ToLower(cipherHex), cipherHex)

			plain, err := c.Decrypt(cipherHex)
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(plain, []byte(encoded)))

			padding := plain[len(encoded):]
			require.NotEmpty(t, padding)
			for _, p := range padding {
				assert.Equal(t, byte(len(padding)), p)
			}
		})
	}
}

func TestSignAndVerify(t *testing.T) {
	c := newTestCipher(t)
	cipherHex := c.Encrypt("MerchantID=MS1&Amt=100")

	tag := c.Sign(cipherHex)
	assert.Len(t, tag, 64)
	assert.Equal(t, strings.ToUpper(tag), tag)
	assert.Equal(t, tag, c.Sign(cipherHex))
	assert.True(t, c.Verify(cipherHex, tag))

	other, err := NewCipher(strings.Repeat("k", 32), testHashIV)
	require.NoError(t, err)
	assert.False(t, other.Verify(cipherHex, tag))
}

func TestVerifyDetectsTampering(t *testing.T) {
	c := newTestCipher(t)
	cipherHex := c.Encrypt("MerchantID=MS1&MerchantOrderNo=ORDER_1&Amt=100")
	tag := c.Sign(cipherHex)

	for i := range cipherHex {
		tampered := flip(cipherHex, i)
		assert.False(t, c.Verify(tampered, tag), "ciphertext index %d", i)
	}
	for i := range tag {
		tampered := flip(tag, i)
		assert.False(t, c.Verify(cipherHex, tampered), "tag index %d", i)
	}

	assert.False(t, c.Verify(cipherHex, strings.ToLower(tag)))
	assert.False(t, c.Verify(cipherHex, ""))
}

func flip(s string, i int) string {
	b := []byte(s)
	if b[i] == '0' {
		b[i] = '1'
	} else {
		b[i] = '0'
	}
	return string(b)
}

func TestDecryptErrors(t *testing.T) {
	c := newTestCipher(t)

	tests := map[string]string{
		"not hex":       "zz-not-hex",
		"empty":         "",
		"odd length":    "abc",
		"short block":   "00112233",
		"partial block": strings.Repeat("ab", 20),
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decrypt(input)
			require.Error(t, err)

			var cryptoErr *CryptoError
			assert.True(t, errors.As(err, &cryptoErr))
		})
	}
}

func TestDecryptTradeResult(t *testing.T) {
	c := newTestCipher(t)

	payload, err := json.Marshal(map[string]any{
		"Status":  "SUCCESS",
		"Message": "授權成功",
		"Result": map[string]any{
			"MerchantID":      "MS100000001",
			"Amt":             100,
			"TradeNo":         "23111512345678901",
			"MerchantOrderNo": "ORDER_1",
			"PaymentType":     "CREDIT",
		},
	})
	require.NoError(t, err)

	res, err := c.DecryptTradeResult(c.Encrypt(string(payload)))
	require.NoError(t, err)
	assert.True(t, res.Succeeded())
	assert.Equal(t, "ORDER_1", res.Result.MerchantOrderNo)
	assert.Equal(t, "23111512345678901", res.Result.TradeNo)
	assert.Equal(t, json.Number("100"), res.Result.Amt)

	_, err = c.DecryptTradeResult(c.Encrypt("not json at all"))
	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr))
}
