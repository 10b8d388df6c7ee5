// Package fintoc reads movements and balances from the Fintoc banking-data API.
package fintoc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lunchsync/lunchsync/internal/httpjson"
	"github.com/lunchsync/lunchsync/internal/model"
	"github.com/lunchsync/lunchsync/internal/money"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://api.fintoc.com/v1"

// PageSize is the number of movements requested per page.
const PageSize = 300

const dateLayout = "2006-01-02"

// ErrNotArray is returned when a movements page is not a JSON array.
var ErrNotArray = errors.New("movements payload is not an array")

// Credentials identify one provider account.
type Credentials struct {
	SecretToken string
	LinkToken   string
	AccountID   string
}

// Client talks to the provider over a shared *http.Client.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *log.Logger
}

// NewClient creates a provider client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Movements fetches every movement between since and until, page by page,
// until the provider returns an empty page. Any failing page fails the whole
// fetch.
func (c *Client) Movements(ctx context.Context, creds Credentials, since, until time.Time) ([]model.Movement, error) {
	var movements []model.Movement
	for page := 1; ; page++ {
		batch, err := c.movementsPage(ctx, creds, since, until, page)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("fetched movements page", "account", creds.AccountID, "page", page, "count", len(batch))
		if len(batch) == 0 {
			return movements, nil
		}
		movements = append(movements, batch...)
	}
}

func (c *Client) movementsPage(ctx context.Context, creds Credentials, since, until time.Time, page int) ([]model.Movement, error) {
	q := url.Values{}
	q.Set("link_token", creds.LinkToken)
	q.Set("since", since.UTC().Format(dateLayout))
	q.Set("until", until.UTC().Format(dateLayout))
	q.Set("per_page", strconv.Itoa(PageSize))
	q.Set("page", strconv.Itoa(page))

	op := fmt.Sprintf("fetching movements page %d", page)
	data, err := httpjson.Do(ctx, c.http, httpjson.Request{
		Op:      op,
		Method:  http.MethodGet,
		URL:     c.accountURL(creds.AccountID) + "/movements?" + q.Encode(),
		Headers: authHeaders(creds),
	})
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%s: %w", op, ErrNotArray)
	}
	var batch []model.Movement
	if err := json.Unmarshal(trimmed, &batch); err != nil {
		return nil, fmt.Errorf("%s: decoding movements: %w", op, err)
	}
	return batch, nil
}

// Account fetches the provider account record, including its balance.
func (c *Client) Account(ctx context.Context, creds Credentials) (model.ProviderAccount, error) {
	q := url.Values{}
	q.Set("link_token", creds.LinkToken)

	var acct model.ProviderAccount
	err := httpjson.DoJSON(ctx, c.http, httpjson.Request{
		Op:      "fetching balance",
		Method:  http.MethodGet,
		URL:     c.accountURL(creds.AccountID) + "?" + q.Encode(),
		Headers: authHeaders(creds),
	}, &acct)
	if err != nil {
		return model.ProviderAccount{}, err
	}
	return acct, nil
}

// Balance returns the account balance in major units, with its currency.
func (c *Client) Balance(ctx context.Context, creds Credentials, accountType model.AccountType) (money.Amount, money.Currency, error) {
	acct, err := c.Account(ctx, creds)
	if err != nil {
		return money.Amount{}, "", err
	}
	amount, cur, err := money.FromMinorUnits(RawBalance(acct.Balance, accountType), acct.Currency)
	if err != nil {
		return money.Amount{}, "", fmt.Errorf("scaling balance of %s: %w", creds.AccountID, err)
	}
	return amount, cur, nil
}

// RawBalance computes the balance in minor units. Credit accounts report the
// outstanding amount, limit minus available, as a positive magnitude.
func RawBalance(b model.ProviderBalance, accountType model.AccountType) int64 {
	if accountType == model.AccountTypeCredit {
		return b.Limit - b.Available
	}
	return b.Current
}

func (c *Client) accountURL(accountID string) string {
	return c.baseURL + "/accounts/" + url.PathEscape(accountID)
}

func authHeaders(creds Credentials) map[string]string {
	return map[string]string{
		"Authorization": creds.SecretToken,
		"Accept":        "application/json",
	}
}
