package domain

import (
	"math"
	"sync"
)

// CashOnDelivery models deferred cash collection. The charge always
// succeeds: it records that COD was accepted for the order, not that cash
// changed hands. Refunds cannot be reversed automatically and must be
// handled manually.
type CashOnDelivery struct {
	Collected         bool   `json:"collected"`
	CollectionAgentID string `json:"collectionAgentId,omitempty"`
}

// NewCashOnDelivery creates a cash-on-delivery instrument
func NewCashOnDelivery() *CashOnDelivery {
	return &CashOnDelivery{}
}

// Kind returns MethodCash
func (c *CashOnDelivery) Kind() MethodKind { return MethodCash }

// Charge accepts COD for any amount
func (c *CashOnDelivery) Charge(amount float64) bool { return true }

// Refund always fails: cash cannot be refunded automatically
func (c *CashOnDelivery) Refund() bool { return false }

// MarkCollected records that the agent has collected the cash
func (c *CashOnDelivery) MarkCollected(agentID string) {
	c.Collected = true
	c.CollectionAgentID = agentID
}

// DefaultDailyLimit is the issuer default for debit cards
const DefaultDailyLimit = 50000.0

// DebitCard is a debit instrument with a per-transaction daily limit.
// The limit is checked independently on every charge and is never
// decremented; this matches the issuer-side model where the running total
// lives with the bank, not the instrument.
type DebitCard struct {
	CardHolder   string  `json:"cardHolder"`
	MaskedNumber string  `json:"maskedNumber"`
	DailyLimit   float64 `json:"dailyLimit"`
	Active       bool    `json:"active"`
}

// NewDebitCard creates an active debit card. A non-positive limit falls
// back to the issuer default.
func NewDebitCard(cardHolder, cardNumber string, dailyLimit float64) *DebitCard {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &DebitCard{
		CardHolder:   cardHolder,
		MaskedNumber: maskCardNumber(cardNumber),
		DailyLimit:   dailyLimit,
		Active:       true,
	}
}

// Kind returns MethodDebitCard
func (d *DebitCard) Kind() MethodKind { return MethodDebitCard }

// Charge succeeds iff the amount is within the daily limit and the card is
// active
func (d *DebitCard) Charge(amount float64) bool {
	return amount <= d.DailyLimit && d.Active
}

// Refund models a gateway credit and always succeeds
func (d *DebitCard) Refund() bool { return true }

// minimumPaymentRate is the fraction of used credit due as minimum payment
const minimumPaymentRate = 0.05

// monthlyInterestRate is the periodic rate for EMI amortization, derived
// from a 12% per annum nominal rate
const monthlyInterestRate = 0.12 / 12

// CreditCard is a credit instrument with a running available-credit
// balance. Available credit is the only wallet-like balance in the model
// and is guarded by a per-instrument mutex so the card can be shared
// across concurrent orders.
type CreditCard struct {
	mu sync.Mutex

	CardHolder   string  `json:"cardHolder"`
	MaskedNumber string  `json:"maskedNumber"`
	CreditLimit  float64 `json:"creditLimit"`
	Active       bool    `json:"active"`

	availableCredit float64
	minimumPayment  float64
}

// NewCreditCard creates an active credit card with the full limit available
func NewCreditCard(cardHolder, cardNumber string, creditLimit float64) *CreditCard {
	return &CreditCard{
		CardHolder:      cardHolder,
		MaskedNumber:    maskCardNumber(cardNumber),
		CreditLimit:     creditLimit,
		Active:          true,
		availableCredit: creditLimit,
	}
}

// Kind returns MethodCreditCard
func (c *CreditCard) Kind() MethodKind { return MethodCreditCard }

// Charge succeeds iff the amount is within available credit and the card is
// active. On success the available credit is reduced by the amount and the
// minimum payment is recomputed as 5% of used credit.
func (c *CreditCard) Charge(amount float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if amount > c.availableCredit || !c.Active {
		return false
	}

	c.availableCredit -= amount
	c.minimumPayment = (c.CreditLimit - c.availableCredit) * minimumPaymentRate
	return true
}

// Refund models a gateway credit and always succeeds. The issuer credits
// the statement; available credit is not restored here.
func (c *CreditCard) Refund() bool { return true }

// AvailableCredit returns the remaining credit on the card
func (c *CreditCard) AvailableCredit() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.availableCredit
}

// MinimumPayment returns the current minimum payment due
func (c *CreditCard) MinimumPayment() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.minimumPayment
}

// InstallmentAmount returns the monthly installment for financing the given
// total over the given number of months, amortized with the standard
// reducing-balance formula at the fixed monthly rate.
func (c *CreditCard) InstallmentAmount(total float64, months int) float64 {
	r := monthlyInterestRate
	factor := math.Pow(1+r, float64(months))
	return (total * r * factor) / (factor - 1)
}

// maskCardNumber keeps only the last four digits visible
func maskCardNumber(cardNumber string) string {
	if len(cardNumber) < 4 {
		return "****"
	}
	return "**** **** **** " + cardNumber[len(cardNumber)-4:]
}
