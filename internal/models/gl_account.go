package models

// GLAccount is a row of gl_accounts.
type GLAccount struct {
	ID                         string  `db:"id"`
	OrgID                      string  `db:"org_id"`
	Name                       string  `db:"name"`
	Type                       string  `db:"type"`
	SubType                    *string `db:"sub_type"`
	IsBankAccount              bool    `db:"is_bank_account"`
	IsSecurityDepositLiability bool    `db:"is_security_deposit_liability"`
	ExcludeFromCashBalances    bool    `db:"exclude_from_cash_balances"`
	Role                       *string `db:"role"` // NULL until the role backfill runs
	BankAccountNumber          *string `db:"bank_account_number"`
	BankRoutingNumber          *string `db:"bank_routing_number"`
	BuildiumGLAccountID        *string `db:"buildium_gl_account_id"`
	AuditFields
}
