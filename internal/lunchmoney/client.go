// Package lunchmoney writes transactions and asset balances to the Lunch Money API.
package lunchmoney

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lunchsync/lunchsync/internal/httpjson"
	"github.com/lunchsync/lunchsync/internal/model"
	"github.com/lunchsync/lunchsync/internal/money"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://dev.lunchmoney.app/v1"

// Client talks to the ledger over a shared *http.Client.
type Client struct {
	http     *http.Client
	baseURL  string
	apiToken string
	logger   *log.Logger
}

// NewClient creates a ledger client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL, apiToken string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		logger:   logger,
	}
}

type assetsResponse struct {
	Assets []model.Asset `json:"assets"`
}

// Assets lists every asset.
func (c *Client) Assets(ctx context.Context) ([]model.Asset, error) {
	var resp assetsResponse
	if err := httpjson.DoJSON(ctx, c.http, httpjson.Request{
		Op:      "listing assets",
		Method:  http.MethodGet,
		URL:     c.baseURL + "/assets",
		Headers: c.headers(),
	}, &resp); err != nil {
		return nil, err
	}
	return resp.Assets, nil
}

type insertRequest struct {
	Transactions      []model.Transaction `json:"transactions"`
	ApplyRules        bool                `json:"apply_rules"`
	CheckForRecurring bool                `json:"check_for_recurring"`
	DebitAsNegative   bool                `json:"debit_as_negative"`
}

// InsertOne posts a single transaction. A transaction the ledger already
// holds resolves to InsertResult{Duplicate: true} without an error.
func (c *Client) InsertOne(ctx context.Context, tx model.Transaction) (InsertResult, error) {
	body := insertRequest{
		Transactions:      []model.Transaction{tx},
		ApplyRules:        true,
		CheckForRecurring: true,
		DebitAsNegative:   true,
	}
	var resp insertResponse
	err := httpjson.DoJSON(ctx, c.http, httpjson.Request{
		Op:      "inserting transaction " + tx.ExternalID,
		Method:  http.MethodPost,
		URL:     c.baseURL + "/transactions",
		Headers: c.headers(),
		Body:    body,
	}, &resp)
	if err != nil {
		return InsertResult{}, err
	}

	res := resp.resolve()
	for _, msg := range res.Errors {
		c.logger.Warn("ledger rejected transaction", "external_id", tx.ExternalID, "err", msg)
	}
	return res, nil
}

// BatchResult accumulates the outcome of inserting many transactions.
type BatchResult struct {
	IDs        []int64
	Duplicates int
	Rejected   int // ledger reported an error other than a duplicate
	Failed     int // transport, status or decoding failure
}

// Add folds one outcome into the batch.
func (b BatchResult) Add(r InsertResult) BatchResult {
	switch {
	case r.Duplicate:
		b.Duplicates++
	case r.Inserted:
		b.IDs = append(b.IDs, r.ID)
	default:
		b.Rejected++
	}
	return b
}

// Merge combines two batch results.
func (b BatchResult) Merge(o BatchResult) BatchResult {
	b.IDs = append(b.IDs, o.IDs...)
	b.Duplicates += o.Duplicates
	b.Rejected += o.Rejected
	b.Failed += o.Failed
	return b
}

// InsertBatch inserts txs one at a time. A failed transaction is logged and
// counted; it never stops the batch.
func (c *Client) InsertBatch(ctx context.Context, txs []model.Transaction) BatchResult {
	var batch BatchResult
	for _, tx := range txs {
		res, err := c.InsertOne(ctx, tx)
		if err != nil {
			c.logger.Warn("failed to insert transaction", "external_id", tx.ExternalID, "err", err)
			batch.Failed++
			continue
		}
		batch = batch.Add(res)
	}
	return batch
}

type balanceUpdate struct {
	Balance  money.Amount `json:"balance"`
	Currency string       `json:"currency"`
}

// MismatchError reports an asset echoed back with values other than the ones written.
type MismatchError struct {
	AssetID int64
	Field   string
	Want    string
	Got     string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("updating asset %d: %s mismatch: expected %s, got %s", e.AssetID, e.Field, e.Want, e.Got)
}

// UpdateAssetBalance sets the asset balance and verifies the ledger stored
// exactly that balance and currency.
func (c *Client) UpdateAssetBalance(ctx context.Context, assetID int64, amount money.Amount, cur money.Currency) error {
	var updated model.Asset
	err := httpjson.DoJSON(ctx, c.http, httpjson.Request{
		Op:      fmt.Sprintf("updating asset %d", assetID),
		Method:  http.MethodPut,
		URL:     c.baseURL + "/assets/" + strconv.FormatInt(assetID, 10),
		Headers: c.headers(),
		Body:    balanceUpdate{Balance: amount, Currency: cur.Lower()},
	}, &updated)
	if err != nil {
		return err
	}

	if !updated.Balance.Equal(amount) {
		return &MismatchError{AssetID: assetID, Field: "balance", Want: amount.String(), Got: updated.Balance.String()}
	}
	if updated.Currency != cur.Lower() {
		return &MismatchError{AssetID: assetID, Field: "currency", Want: cur.Lower(), Got: updated.Currency}
	}
	return nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + c.apiToken,
		"Accept":        "application/json",
	}
}
