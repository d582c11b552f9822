package dto

// BackfillOptions controls one backfill job run.
type BackfillOptions struct {
	// DryRun reports what would change without writing.
	DryRun bool
	// Limit caps how many candidates are scanned; zero means the job default.
	Limit int
	// BankGLAccountID is the bank account balancing lines are posted to.
	BankGLAccountID string
}
