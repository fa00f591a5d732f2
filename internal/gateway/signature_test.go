package gateway

import (
	"testing"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/config"
	app_errors "github.com/lumiforge/cutroom-backend/internal/errors"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestVerifyRazorpay(t *testing.T) {
	sig := RazorpaySignature("rzp-secret", "order_1", "pay_1")

	tests := []struct {
		name      string
		secret    string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"valid", "rzp-secret", "order_1", "pay_1", sig, true},
		{"wrong secret", "other", "order_1", "pay_1", sig, false},
		{"tampered payment", "rzp-secret", "order_1", "pay_2", sig, false},
		{"not hex", "rzp-secret", "order_1", "pay_1", "zz", false},
		{"empty", "rzp-secret", "order_1", "pay_1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyRazorpay(tt.secret, tt.orderID, tt.paymentID, tt.signature))
		})
	}
}

func TestVerifyStripe(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	payload := []byte("order_1|pi_1")
	header := StripeHeader("whsec", now, payload)

	assert.NoError(t, VerifyStripe("whsec", header, payload, now.Add(time.Minute), DefaultTolerance))
	assert.NoError(t, VerifyStripe("whsec", "v1=deadbeef,"+header, payload, now, DefaultTolerance))

	err := VerifyStripe("whsec", header, []byte("order_1|pi_2"), now, DefaultTolerance)
	assert.ErrorIs(t, err, app_errors.ErrInvalidSignature)

	err = VerifyStripe("whsec", header, payload, now.Add(time.Hour), DefaultTolerance)
	assert.True(t, app_errors.Is(err, app_errors.KindUnauthorized))

	err = VerifyStripe("whsec", "garbage", payload, now, DefaultTolerance)
	assert.ErrorIs(t, err, app_errors.ErrInvalidSignature)
}

func TestSignatures_Verify(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSignatures(&config.Config{RazorpayKeySecret: "rzp", StripeWebhookSecret: "whsec"})
	s.now = func() time.Time { return now }

	t.Run("razorpay", func(t *testing.T) {
		err := s.Verify(models.GatewayRazorpay, "order_1", models.GatewayConfirmation{
			GatewayPaymentID: "pay_1",
			Signature:        RazorpaySignature("rzp", "order_1", "pay_1"),
		})
		assert.NoError(t, err)
	})

	t.Run("order mismatch", func(t *testing.T) {
		err := s.Verify(models.GatewayRazorpay, "order_1", models.GatewayConfirmation{OrderID: "order_2", GatewayPaymentID: "pay_1"})
		assert.True(t, app_errors.Is(err, app_errors.KindValidation))
	})

	t.Run("stripe", func(t *testing.T) {
		err := s.Verify(models.GatewayStripe, "order_1", models.GatewayConfirmation{
			GatewayPaymentID: "pi_1",
			Signature:        StripeHeader("whsec", now, []byte("order_1|pi_1")),
		})
		assert.NoError(t, err)
	})

	t.Run("unconfigured secret", func(t *testing.T) {
		empty := NewSignatures(&config.Config{})
		err := empty.Verify(models.GatewayRazorpay, "order_1", models.GatewayConfirmation{GatewayPaymentID: "pay_1", Signature: "00"})
		assert.True(t, app_errors.Is(err, app_errors.KindInternal))
	})

	t.Run("manual needs admin", func(t *testing.T) {
		assert.True(t, s.RequiresAdmin(models.GatewayManual))
		assert.False(t, s.RequiresAdmin(models.GatewayRazorpay))
		assert.NoError(t, s.Verify(models.GatewayManual, "order_1", models.GatewayConfirmation{}))
	})
}
