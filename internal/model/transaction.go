package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lunchsync/lunchsync/internal/money"
)

// TransactionStatus is the ledger reconciliation status.
type TransactionStatus string

const (
	StatusCleared   TransactionStatus = "cleared"
	StatusUncleared TransactionStatus = "uncleared"
)

const dateLayout = "2006-01-02"

// Date is a calendar day serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Tag is a ledger transaction tag.
type Tag struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Transaction is a ledger transaction. ExternalID is the dedup key the ledger enforces.
type Transaction struct {
	ID           *int64            `json:"id,omitempty"`
	Date         Date              `json:"date"`
	Payee        string            `json:"payee,omitempty"`
	Amount       money.Amount      `json:"amount"`
	Currency     string            `json:"currency,omitempty"`
	CategoryID   *int64            `json:"category_id,omitempty"`
	AssetID      int64             `json:"asset_id,omitempty"`
	Status       TransactionStatus `json:"status"`
	ParentID     *int64            `json:"parent_id,omitempty"`
	IsGroup      *bool             `json:"is_group,omitempty"`
	GroupID      *int64            `json:"group_id,omitempty"`
	Tags         []Tag             `json:"tags,omitempty"`
	ExternalID   string            `json:"external_id"`
	Notes        string            `json:"notes,omitempty"`
	OriginalName string            `json:"original_name,omitempty"`
	IsPending    bool              `json:"is_pending"`
}
