package model

import (
	"fmt"
	"strings"

	"github.com/lunchsync/lunchsync/internal/money"
)

// AccountType selects how a provider balance is read.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
)

// ParseAccountType accepts "checking", "savings" or "credit" in any case.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(strings.ToLower(strings.TrimSpace(s))); t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type %q", s)
	}
}

// Institution is the bank holding a counterparty account.
type Institution struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// ProviderBalance is a balance in provider minor units.
type ProviderBalance struct {
	Available int64 `json:"available"`
	Current   int64 `json:"current"`
	Limit     int64 `json:"limit"`
}

// ProviderAccount is the provider's account record.
type ProviderAccount struct {
	ID           string          `json:"id"`
	Object       string          `json:"object"`
	Name         string          `json:"name"`
	OfficialName string          `json:"official_name"`
	Number       string          `json:"number"`
	HolderID     string          `json:"holder_id"`
	HolderName   string          `json:"holder_name"`
	Type         string          `json:"type"`
	Currency     string          `json:"currency"`
	Balance      ProviderBalance `json:"balance"`
}

// Asset is a ledger-side balance container.
type Asset struct {
	ID                  int64        `json:"id"`
	TypeName            string       `json:"type_name,omitempty"`
	SubtypeName         string       `json:"subtype_name,omitempty"`
	Name                string       `json:"name,omitempty"`
	DisplayName         string       `json:"display_name,omitempty"`
	Balance             money.Amount `json:"balance"`
	BalanceAsOf         string       `json:"balance_as_of,omitempty"`
	Currency            string       `json:"currency"`
	InstitutionName     string       `json:"institution_name,omitempty"`
	ExcludeTransactions bool         `json:"exclude_transactions,omitempty"`
	CreatedAt           string       `json:"created_at,omitempty"`
}

// Label returns the display name, falling back to the name.
func (a Asset) Label() string {
	switch {
	case a.DisplayName != "":
		return a.DisplayName
	case a.Name != "":
		return a.Name
	default:
		return "Unnamed"
	}
}
