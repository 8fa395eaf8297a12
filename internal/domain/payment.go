package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the settlement state of a payment
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// MethodKind identifies a payment method variant
type MethodKind string

const (
	MethodCash       MethodKind = "CASH"
	MethodDebitCard  MethodKind = "DEBIT_CARD"
	MethodCreditCard MethodKind = "CREDIT_CARD"
)

// PaymentMethod is the capability contract shared by all payment
// instruments. Charge and Refund are single-shot decisions with no hidden
// retries.
type PaymentMethod interface {
	Kind() MethodKind
	Charge(amount float64) bool
	Refund() bool
}

// Payment is the charge record exclusively owned by its order.
// TransactionID is assigned only when the charge succeeds; it is present
// iff Status is SUCCESS or REFUNDED.
type Payment struct {
	PaymentID     string        `bson:"paymentId" json:"paymentId"`
	Amount        float64       `bson:"amount" json:"amount"`
	Status        PaymentStatus `bson:"status" json:"status"`
	MethodKind    MethodKind    `bson:"methodKind" json:"methodKind"`
	TransactionID string        `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	CollectedBy   string        `bson:"collectedBy,omitempty" json:"collectedBy,omitempty"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	ProcessedAt   time.Time     `bson:"processedAt,omitempty" json:"processedAt,omitempty"`

	// The instrument is held for charge/refund dispatch only and is not
	// part of the persisted record.
	method PaymentMethod
}

// NewPayment creates a pending payment for the given amount and instrument
func NewPayment(amount float64, method PaymentMethod) *Payment {
	return &Payment{
		PaymentID:  "PAY-" + uuid.New().String()[:8],
		Amount:     amount,
		Status:     PaymentPending,
		MethodKind: method.Kind(),
		CreatedAt:  time.Now().UTC(),
		method:     method,
	}
}

// Method returns the payment instrument backing this payment
func (p *Payment) Method() PaymentMethod {
	return p.method
}

// execute runs the charge exactly once and records the outcome
func (p *Payment) execute() bool {
	p.ProcessedAt = time.Now().UTC()

	if !p.method.Charge(p.Amount) {
		p.Status = PaymentFailed
		return false
	}

	p.Status = PaymentSuccess
	p.TransactionID = newTransactionID()
	return true
}

// Refund reverses a successful payment. A refund is only reachable from
// SUCCESS; instruments that cannot reverse a charge (cash) report
// ErrRefundUnavailable.
func (p *Payment) Refund() error {
	if p.Status != PaymentSuccess {
		return ErrRefundUnavailable
	}
	if !p.refundable() {
		return ErrRefundUnavailable
	}

	p.Status = PaymentRefunded
	return nil
}

// refundable dispatches to the live instrument when one is attached. A
// payment reloaded from storage carries only its kind; cash is the single
// kind that cannot be reversed.
func (p *Payment) refundable() bool {
	if p.method != nil {
		return p.method.Refund()
	}
	return p.MethodKind != MethodCash
}

// confirmCollection settles a cash-on-delivery payment once the agent has
// collected the cash. The agent id is recorded on the payment so the
// settlement survives a reload; the transaction id is assigned so the
// SUCCESS invariant holds.
func (p *Payment) confirmCollection(agentID string) {
	p.Status = PaymentSuccess
	p.CollectedBy = agentID
	if p.TransactionID == "" {
		p.TransactionID = newTransactionID()
	}
	p.ProcessedAt = time.Now().UTC()
}

func newTransactionID() string {
	return "TXN-" + uuid.New().String()[:12]
}
