package buildium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bbabel1/property-manager-sub016/internal/apperrors"
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	portssvc "github.com/bbabel1/property-manager-sub016/internal/core/ports/services"
	"github.com/bbabel1/property-manager-sub016/internal/middleware"
	"github.com/bbabel1/property-manager-sub016/internal/platform/config"
	"github.com/bbabel1/property-manager-sub016/internal/utils/coalesce"
	"github.com/shopspring/decimal"
)

const (
	headerClientID     = "x-buildium-client-id"
	headerClientSecret = "x-buildium-client-secret"

	// pageSize is the largest page the list endpoints accept.
	pageSize = 1000
	// maxErrorBody bounds how much of a failed response is quoted in the error.
	maxErrorBody = 512
)

var (
	idFields            = coalesce.StringFields("Id", "id")
	statementDateFields = coalesce.StringFields("StatementEndingDate", "statementEndingDate")
	finishedFields      = []coalesce.Accessor[map[string]any, bool]{coalesce.BoolField("IsFinished"), coalesce.BoolField("isFinished")}
	endingBalanceFields = coalesce.StringFields("EndingBalance", "endingBalance")
	withdrawalsFields   = coalesce.StringFields("TotalChecksAndWithdrawals", "totalChecksAndWithdrawals")
	depositsFields      = coalesce.StringFields("TotalDepositsAndAdditions", "totalDepositsAndAdditions")
)

// Client reads bank reconciliations from the Buildium REST API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client, e.g. for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Buildium client from configuration.
func NewClient(cfg config.BuildiumConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ portssvc.ReconciliationSource = (*Client)(nil)

// ListReconciliationTransactions returns the raw transaction records of one reconciliation.
func (c *Client) ListReconciliationTransactions(ctx context.Context, bankAccountID, reconciliationID string) ([]domain.ExternalTransactionRecord, error) {
	path := fmt.Sprintf("/bankaccounts/%s/reconciliations/%s/transactions", url.PathEscape(bankAccountID), url.PathEscape(reconciliationID))
	objects, err := c.getList(ctx, path)
	if err != nil {
		return nil, err
	}
	records := make([]domain.ExternalTransactionRecord, len(objects))
	for i, obj := range objects {
		records[i] = domain.ExternalTransactionRecord(obj)
	}
	return records, nil
}

// ListReconciliations returns every reconciliation period of a bank account.
func (c *Client) ListReconciliations(ctx context.Context, bankAccountID string) ([]domain.ExternalReconciliation, error) {
	path := fmt.Sprintf("/bankaccounts/%s/reconciliations", url.PathEscape(bankAccountID))
	objects, err := c.getList(ctx, path)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ExternalReconciliation, 0, len(objects))
	for _, obj := range objects {
		id, ok := coalesce.FirstDefined(obj, idFields...)
		if !ok {
			middleware.GetLoggerFromCtx(ctx).Warn("Skipping reconciliation without id", slog.String("bank_account_id", bankAccountID))
			continue
		}
		rec := domain.ExternalReconciliation{ID: id}
		if raw, ok := coalesce.FirstDefined(obj, statementDateFields...); ok {
			d, err := parseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: reconciliation %s: %v", apperrors.ErrExternalService, id, err)
			}
			rec.StatementEndingDate = &d
		}
		rec.IsFinished, _ = coalesce.FirstDefined(obj, finishedFields...)
		out = append(out, rec)
	}
	return out, nil
}

// GetReconciliationBalance returns the statement balance summary of one reconciliation.
func (c *Client) GetReconciliationBalance(ctx context.Context, bankAccountID, reconciliationID string) (*domain.ExternalReconciliationBalance, error) {
	path := fmt.Sprintf("/bankaccounts/%s/reconciliations/%s/balance", url.PathEscape(bankAccountID), url.PathEscape(reconciliationID))
	var obj map[string]any
	if err := c.get(ctx, path, nil, &obj); err != nil {
		return nil, err
	}

	ending, ok := coalesce.FirstDefined(obj, endingBalanceFields...)
	if !ok {
		return nil, fmt.Errorf("%w: reconciliation %s balance has no ending balance", apperrors.ErrExternalService, reconciliationID)
	}
	bal := &domain.ExternalReconciliationBalance{}
	var err error
	if bal.EndingBalance, err = decimal.NewFromString(ending); err != nil {
		return nil, fmt.Errorf("%w: reconciliation %s ending balance %q: %v", apperrors.ErrExternalService, reconciliationID, ending, err)
	}
	bal.TotalChecksAndWithdrawals = optionalDecimal(obj, withdrawalsFields)
	bal.TotalDepositsAndAdditions = optionalDecimal(obj, depositsFields)
	return bal, nil
}

// getList follows limit/offset paging until a short page is returned.
func (c *Client) getList(ctx context.Context, path string) ([]map[string]any, error) {
	var all []map[string]any
	for offset := 0; ; offset += pageSize {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(pageSize))
		q.Set("offset", strconv.Itoa(offset))

		var page []map[string]any
		if err := c.get(ctx, path, q, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build buildium request: %w", err)
	}
	req.Header.Set(headerClientID, c.clientID)
	req.Header.Set(headerClientSecret, c.clientSecret)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", apperrors.ErrExternalService, path, err)
	}
	defer resp.Body.Close()

	middleware.GetLoggerFromCtx(ctx).Debug("Buildium request",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: GET %s returned %s: %s", apperrors.ErrExternalService, path, resp.Status, strings.TrimSpace(string(body)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", apperrors.ErrExternalService, path, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", apperrors.ErrExternalService, path, err)
	}
	return nil
}

// parseDate accepts a bare date or an RFC 3339-ish timestamp and keeps the calendar day.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	return time.Parse(time.DateOnly, s)
}

func optionalDecimal(obj map[string]any, fields []coalesce.Accessor[map[string]any, string]) decimal.Decimal {
	raw, ok := coalesce.FirstDefined(obj, fields...)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
