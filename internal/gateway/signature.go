package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/config"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
)

// DefaultTolerance допустимое расхождение времени подписи Stripe
const DefaultTolerance = 5 * time.Minute

// Verifier проверяет подлинность подтверждения платежа от шлюза
type Verifier interface {
	Verify(gw models.Gateway, orderID string, c models.GatewayConfirmation) error
	RequiresAdmin(gw models.Gateway) bool
}

// Signatures проверка подписей Razorpay и Stripe по общим секретам из конфигурации
type Signatures struct {
	razorpaySecret string
	stripeSecret   string
	tolerance      time.Duration
	now            func() time.Time
}

// NewSignatures создает проверяющий подписи
func NewSignatures(cfg *config.Config) *Signatures {
	return &Signatures{
		razorpaySecret: cfg.RazorpayKeySecret,
		stripeSecret:   cfg.StripeWebhookSecret,
		tolerance:      DefaultTolerance,
		now:            time.Now,
	}
}

// RequiresAdmin manual и paypal подтверждаются только администратором:
// у них нет подписи, которую можно проверить общим секретом
func (s *Signatures) RequiresAdmin(gw models.Gateway) bool {
	return gw == models.GatewayManual || gw == models.GatewayPayPal
}

// Verify проверяет подпись подтверждения. orderID берется из сохраненного платежа,
// а не из запроса
func (s *Signatures) Verify(gw models.Gateway, orderID string, c models.GatewayConfirmation) error {
	if c.OrderID != "" && c.OrderID != orderID {
		return app_errors.Validation("order id does not match payment")
	}
	switch gw {
	case models.GatewayRazorpay:
		if c.GatewayPaymentID == "" {
			return app_errors.Validation("gateway payment id is required")
		}
		if s.razorpaySecret == "" {
			return app_errors.New(app_errors.KindInternal, "razorpay secret is not configured")
		}
		if !VerifyRazorpay(s.razorpaySecret, orderID, c.GatewayPaymentID, c.Signature) {
			return app_errors.ErrInvalidSignature
		}
		return nil
	case models.GatewayStripe:
		if c.GatewayPaymentID == "" {
			return app_errors.Validation("gateway payment id is required")
		}
		if s.stripeSecret == "" {
			return app_errors.New(app_errors.KindInternal, "stripe secret is not configured")
		}
		return VerifyStripe(s.stripeSecret, c.Signature, []byte(orderID+"|"+c.GatewayPaymentID), s.now(), s.tolerance)
	case models.GatewayManual, models.GatewayPayPal:
		return nil
	}
	return app_errors.Validation("unknown gateway %q", gw)
}

func sign(secret string, payload []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return mac.Sum(nil)
}

// RazorpaySignature hex(HMAC-SHA256(order_id|payment_id))
func RazorpaySignature(secret, orderID, paymentID string) string {
	return hex.EncodeToString(sign(secret, []byte(orderID+"|"+paymentID)))
}

// VerifyRazorpay сравнивает подпись за постоянное время
func VerifyRazorpay(secret, orderID, paymentID, signature string) bool {
	provided, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(provided) == 0 {
		return false
	}
	return hmac.Equal(provided, sign(secret, []byte(orderID+"|"+paymentID)))
}

// StripeHeader формирует заголовок вида t=<unix>,v1=<hex>
func StripeHeader(secret string, ts time.Time, payload []byte) string {
	t := strconv.FormatInt(ts.Unix(), 10)
	return "t=" + t + ",v1=" + hex.EncodeToString(sign(secret, stripeSignedPayload(t, payload)))
}

func stripeSignedPayload(t string, payload []byte) []byte {
	signed := make([]byte, 0, len(t)+1+len(payload))
	signed = append(signed, t...)
	signed = append(signed, '.')
	return append(signed, payload...)
}

// VerifyStripe проверяет заголовок t=..,v1=.. над "t.payload".
// Достаточно совпадения любой из подписей v1
func VerifyStripe(secret, header string, payload []byte, now time.Time, tolerance time.Duration) error {
	var (
		ts         string
		signatures [][]byte
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			ts = value
		case "v1":
			if sig, err := hex.DecodeString(value); err == nil {
				signatures = append(signatures, sig)
			}
		}
	}
	if ts == "" || len(signatures) == 0 {
		return app_errors.ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return app_errors.ErrInvalidSignature
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(unix, 0))
		if age > tolerance || age < -tolerance {
			return app_errors.Unauthorized("payment signature timestamp is outside the tolerance window")
		}
	}

	expected := sign(secret, stripeSignedPayload(ts, payload))
	for _, sig := range signatures {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return app_errors.ErrInvalidSignature
}
