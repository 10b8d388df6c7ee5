package model

import "time"

// MovementType classifies a provider movement.
type MovementType string

const (
	MovementTransfer MovementType = "transfer"
	MovementCheck    MovementType = "check"
	MovementOther    MovementType = "other"
)

// TransferAccount is the counterparty of a transfer.
type TransferAccount struct {
	HolderID    string       `json:"holder_id"`
	HolderName  string       `json:"holder_name"`
	Number      string       `json:"number,omitempty"`
	Institution *Institution `json:"institution,omitempty"`
}

// Movement is a single provider record. Amount is in minor units; the sign is the direction.
type Movement struct {
	ID               string           `json:"id"`
	Object           string           `json:"object"`
	Amount           int64            `json:"amount"`
	PostDate         time.Time        `json:"post_date"`
	TransactionDate  *time.Time       `json:"transaction_date,omitempty"`
	Description      string           `json:"description"`
	Currency         string           `json:"currency"`
	ReferenceID      string           `json:"reference_id,omitempty"`
	Type             MovementType     `json:"type"`
	Pending          bool             `json:"pending"`
	RecipientAccount *TransferAccount `json:"recipient_account,omitempty"`
	SenderAccount    *TransferAccount `json:"sender_account,omitempty"`
	Comment          *string          `json:"comment,omitempty"`
}

// EffectiveDate is the transaction date when known, else the post date.
func (m Movement) EffectiveDate() time.Time {
	if m.TransactionDate != nil && !m.TransactionDate.IsZero() {
		return *m.TransactionDate
	}
	return m.PostDate
}

// Counterparty returns the account on the other side of the money's direction:
// the sender for inflows, the recipient otherwise.
func (m Movement) Counterparty() *TransferAccount {
	if m.Amount > 0 {
		return m.SenderAccount
	}
	return m.RecipientAccount
}
