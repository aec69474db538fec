package newebpay

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	hashKeyLen = 32
	hashIVLen  = aes.BlockSize
)

// Cipher implements the MPG TradeInfo encryption and the TradeSha tag.
// HashKey and HashIV are the merchant's shared secrets.
type Cipher struct {
	hashKey string
	hashIV  string
	block   cipher.Block
}

func NewCipher(hashKey, hashIV string) (*Cipher, error) {
	if len(hashKey) != hashKeyLen {
		return nil, fmt.Errorf("hash key must be %d bytes, got %d", hashKeyLen, len(hashKey))
	}
	if len(hashIV) != hashIVLen {
		return nil, fmt.Errorf("hash iv must be %d bytes, got %d", hashIVLen, len(hashIV))
	}

	block, err := aes.NewCipher([]byte(hashKey))
	if err != nil {
		return nil, fmt.Errorf("aes new cipher: %w", err)
	}

	return &Cipher{
		hashKey: hashKey,
		hashIV:  hashIV,
		block:   block,
	}, nil
}

// Encrypt returns the AES-256-CBC ciphertext of plain as lowercase hex.
func (c *Cipher) Encrypt(plain string) string {
	padded := pkcs7Pad([]byte(plain), aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, []byte(c.hashIV)).CryptBlocks(out, padded)
	return hex.EncodeToString(out)
}

// Decrypt reverses Encrypt without removing padding. The gateway pads with
// control bytes that ParseTradeResult strips.
func (c *Cipher) Decrypt(cipherHex string) ([]byte, error) {
	raw, err := hex.DecodeString(cipherHex)
	if err != nil {
		return nil, &CryptoError{Op: "decode", Err: err}
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return nil, &CryptoError{
			Op:  "decrypt",
			Err: fmt.Errorf("ciphertext length %d is not a multiple of %d", len(raw), aes.BlockSize),
		}
	}

	out := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, []byte(c.hashIV)).CryptBlocks(out, raw)
	return out, nil
}

// Sign computes the TradeSha for a TradeInfo ciphertext.
func (c *Cipher) Sign(cipherHex string) string {
	sum := sha256.Sum256([]byte("HashKey=" + c.hashKey + "&" + cipherHex + "&HashIV=" + c.hashIV))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func (c *Cipher) Verify(cipherHex, tag string) bool {
	expected := c.Sign(cipherHex)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(tag)) == 1
}

// DecryptTradeResult decrypts a TradeInfo and parses the trade result in it.
func (c *Cipher) DecryptTradeResult(cipherHex string) (*TradeResult, error) {
	plain, err := c.Decrypt(cipherHex)
	if err != nil {
		return nil, err
	}
	return ParseTradeResult(plain)
}

func pkcs7Pad(b []byte, size int) []byte {
	n := size - len(b)%size
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}
