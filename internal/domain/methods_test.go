package domain

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashOnDelivery(t *testing.T) {
	cash := NewCashOnDelivery()

	assert.Equal(t, MethodCash, cash.Kind())
	assert.True(t, cash.Charge(99999))
	assert.False(t, cash.Refund())
	assert.False(t, cash.Collected)

	cash.MarkCollected("AGENT-1")
	assert.True(t, cash.Collected)
	assert.Equal(t, "AGENT-1", cash.CollectionAgentID)
}

func TestDebitCardCharge(t *testing.T) {
	tests := []struct {
		name       string
		dailyLimit float64
		active     bool
		amount     float64
		expect     bool
	}{
		{"within limit", 1000, true, 999, true},
		{"exactly at limit", 1000, true, 1000, true},
		{"over limit", 1000, true, 1000.01, false},
		{"inactive card", 1000, false, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := NewDebitCard("Jane Roe", "4111111111111111", tt.dailyLimit)
			card.Active = tt.active

			assert.Equal(t, tt.expect, card.Charge(tt.amount))
		})
	}
}

func TestDebitCardLimitNotDecremented(t *testing.T) {
	card := NewDebitCard("Jane Roe", "4111111111111111", 1000)

	// Each charge is checked against the full limit independently.
	assert.True(t, card.Charge(800))
	assert.True(t, card.Charge(800))
	assert.InDelta(t, 1000, card.DailyLimit, 1e-9)
}

func TestDebitCardDefaultLimit(t *testing.T) {
	card := NewDebitCard("Jane Roe", "4111111111111111", 0)
	assert.InDelta(t, DefaultDailyLimit, card.DailyLimit, 1e-9)
}

func TestDebitCardRefund(t *testing.T) {
	card := NewDebitCard("Jane Roe", "4111111111111111", 1000)
	assert.True(t, card.Refund())
}

func TestCreditCardCharge(t *testing.T) {
	card := NewCreditCard("Jane Roe", "5555555555554444", 1000)

	require.True(t, card.Charge(300))
	assert.InDelta(t, 700, card.AvailableCredit(), 1e-9)
	assert.InDelta(t, 15, card.MinimumPayment(), 1e-9) // 5% of 300 used

	require.True(t, card.Charge(700))
	assert.InDelta(t, 0, card.AvailableCredit(), 1e-9)
	assert.InDelta(t, 50, card.MinimumPayment(), 1e-9)
}

func TestCreditCardDecline(t *testing.T) {
	card := NewCreditCard("Jane Roe", "5555555555554444", 100)

	assert.False(t, card.Charge(200))
	assert.InDelta(t, 100, card.AvailableCredit(), 1e-9)
	assert.InDelta(t, 0, card.MinimumPayment(), 1e-9)
}

func TestCreditCardInactiveDecline(t *testing.T) {
	card := NewCreditCard("Jane Roe", "5555555555554444", 1000)
	card.Active = false

	assert.False(t, card.Charge(10))
	assert.InDelta(t, 1000, card.AvailableCredit(), 1e-9)
}

func TestCreditCardConcurrentCharges(t *testing.T) {
	card := NewCreditCard("Jane Roe", "5555555555554444", 100)

	var wg sync.WaitGroup
	results := make([]bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = card.Charge(60)
		}(i)
	}
	wg.Wait()

	// Only one of the concurrent charges fits within the limit.
	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.InDelta(t, 40, card.AvailableCredit(), 1e-9)
}

func TestCreditCardInstallmentAmount(t *testing.T) {
	card := NewCreditCard("Jane Roe", "5555555555554444", 100000)

	single := card.InstallmentAmount(1000, 1)
	assert.InDelta(t, 1010, single, 1e-6) // one month accrues one period of interest

	twelve := card.InstallmentAmount(1000, 12)
	assert.Greater(t, twelve, 1000.0/12)       // carries interest
	assert.Less(t, twelve*12, single*12*1.2)   // but stays in a sane band
	assert.Greater(t, twelve*12, 1000.0)       // total repaid exceeds principal
}

func TestMaskCardNumber(t *testing.T) {
	card := NewDebitCard("Jane Roe", "4111111111111111", 1000)
	assert.Equal(t, "**** **** **** 1111", card.MaskedNumber)

	short := NewDebitCard("Jane Roe", "123", 1000)
	assert.Equal(t, "****", short.MaskedNumber)
}

func TestPaymentRefund(t *testing.T) {
	tests := []struct {
		name        string
		method      PaymentMethod
		charge      bool
		expectError error
	}{
		{
			name:   "successful debit payment refunds",
			method: NewDebitCard("Jane Roe", "4111111111111111", 1000),
			charge: true,
		},
		{
			name:   "successful credit payment refunds",
			method: NewCreditCard("Jane Roe", "5555555555554444", 1000),
			charge: true,
		},
		{
			name:        "cash payment cannot refund",
			method:      NewCashOnDelivery(),
			charge:      true,
			expectError: ErrRefundUnavailable,
		},
		{
			name:        "pending payment cannot refund",
			method:      NewDebitCard("Jane Roe", "4111111111111111", 1000),
			charge:      false,
			expectError: ErrRefundUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payment := NewPayment(100, tt.method)
			if tt.charge {
				require.True(t, payment.execute())
			}

			err := payment.Refund()

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.NotEqual(t, PaymentRefunded, payment.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, PaymentRefunded, payment.Status)
		})
	}
}

func TestPaymentExecute(t *testing.T) {
	payment := NewPayment(100, NewDebitCard("Jane Roe", "4111111111111111", 1000))
	assert.Equal(t, PaymentPending, payment.Status)
	assert.Empty(t, payment.TransactionID)

	require.True(t, payment.execute())
	assert.Equal(t, PaymentSuccess, payment.Status)
	assert.NotEmpty(t, payment.TransactionID)
	assert.NotZero(t, payment.ProcessedAt)
}

func TestPaymentExecuteDeclined(t *testing.T) {
	payment := NewPayment(100, NewCreditCard("Jane Roe", "5555555555554444", 50))

	require.False(t, payment.execute())
	assert.Equal(t, PaymentFailed, payment.Status)
	assert.Empty(t, payment.TransactionID)
}
