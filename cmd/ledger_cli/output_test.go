package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_BackfillText(t *testing.T) {
	var buf bytes.Buffer
	summary := &domain.BackfillSummary{Job: "backfill-charges", DryRun: true, Scanned: 10, Changed: 3, Skipped: 7, Total: decimal.RequireFromString("1234.5")}

	require.NoError(t, printer{w: &buf}.backfill(summary))

	out := buf.String()
	assert.Contains(t, out, "backfill-charges")
	assert.Contains(t, out, "dry run (pass --apply to write)")
	assert.Regexp(t, `changed:\s+3\n`, out)
	assert.Regexp(t, `total:\s+1234\.50\n`, out)
	assert.NotContains(t, out, "{", "text mode prints no JSON")
}

func TestPrinter_BackfillJSON(t *testing.T) {
	var buf bytes.Buffer
	summary := &domain.BackfillSummary{Job: "backfill-roles", Changed: 2, Total: decimal.Zero}

	require.NoError(t, printer{w: &buf, json: true}.backfill(summary))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "backfill-roles", got["job"])
	assert.Equal(t, float64(2), got["changed"])
	assert.Equal(t, false, got["dryRun"])
}

func TestPrinter_SyncText(t *testing.T) {
	var buf bytes.Buffer
	summary := &domain.OrganizationSyncSummary{
		Accounts: []domain.BankAccountSyncSummary{
			{BankGLAccountID: "gl-operating", Reconciliations: 2, Synced: 14, Unmatched: 1},
			{BankGLAccountID: "gl-trust", Failed: 1, FatalError: "upstream returned 503"},
		},
		Synced:    14,
		Unmatched: 1,
		Failed:    1,
	}

	require.NoError(t, printer{w: &buf}.sync(summary))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "BANK ACCOUNT"))
	assert.Regexp(t, `^gl-operating\s+2\s+14\s+1\s+0\s+0\s+ok$`, lines[1])
	assert.Contains(t, lines[2], "failed: upstream returned 503")
	assert.Equal(t, "2 bank account(s): 14 synced, 1 unmatched, 0 errors, 1 failed", lines[4])
}

func TestPrinter_Migrate(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printer{w: &buf}.migrate(database.MigrateUp, false))
	assert.Equal(t, "migrations up: already current\n", buf.String())

	buf.Reset()
	require.NoError(t, printer{w: &buf, json: true}.migrate(database.MigrateDown, true))
	assert.JSONEq(t, `{"direction":"down","changed":true}`, buf.String())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false).Info("Backfill starting", "job", "backfill-charges")
	assert.Contains(t, buf.String(), `msg="Backfill starting" job=backfill-charges`)

	buf.Reset()
	newLogger(&buf, true).Info("Backfill starting", "job", "backfill-charges")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "backfill-charges", entry["job"])
}
