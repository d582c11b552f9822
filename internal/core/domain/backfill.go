package domain

import "github.com/shopspring/decimal"

// BackfillSummary is the count block reported at the end of a backfill job.
type BackfillSummary struct {
	Job     string          `json:"job"`
	DryRun  bool            `json:"dryRun"`
	Scanned int             `json:"scanned"`
	Changed int             `json:"changed"`
	Skipped int             `json:"skipped"`
	Failed  int             `json:"failed"`
	Total   decimal.Decimal `json:"total"`
}

// TransactionWithLines is a transaction header loaded together with its posting lines.
type TransactionWithLines struct {
	Transaction Transaction
	Lines       []TransactionLine
}
