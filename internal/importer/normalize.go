package importer

import (
	"fmt"

	"github.com/lunchsync/lunchsync/internal/model"
	"github.com/lunchsync/lunchsync/internal/money"
)

// Normalize maps a provider movement into a ledger transaction for assetID.
// A movement in an unsupported currency returns an error wrapping
// money.ErrUnsupportedCurrency.
func Normalize(m model.Movement, assetID int64) (model.Transaction, error) {
	amount, cur, err := money.FromMinorUnits(m.Amount, m.Currency)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("movement %s: %w", m.ID, err)
	}

	tx := model.Transaction{
		Date:         model.DateOf(m.EffectiveDate()),
		Payee:        Payee(m),
		Amount:       amount,
		Currency:     cur.Lower(),
		AssetID:      assetID,
		Status:       model.StatusUncleared,
		ExternalID:   m.ID,
		OriginalName: m.Description,
		IsPending:    m.Pending,
	}
	if m.Comment != nil {
		tx.Notes = *m.Comment
	}
	return tx, nil
}

// Payee derives the display payee. Transfers name the counterparty, with its
// institution in parentheses when known; everything else uses the cleaned
// description.
func Payee(m model.Movement) string {
	if m.Type != model.MovementTransfer {
		return CleanDescription(m.Description)
	}
	acct := m.Counterparty()
	if acct == nil {
		return CleanDescription(m.Description)
	}
	if acct.Institution != nil {
		return fmt.Sprintf("%s (%s)", acct.HolderName, acct.Institution.Name)
	}
	return acct.HolderName
}

// NormalizeAll normalizes movements in order. Failed movements are left out
// of the result and reported in errs.
func NormalizeAll(movements []model.Movement, assetID int64) (txns []model.Transaction, errs []error) {
	for _, m := range movements {
		tx, err := Normalize(m, assetID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		txns = append(txns, tx)
	}
	return txns, errs
}
