package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// AccountType defines the fundamental accounting type of a GL account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// ParseAccountType accepts any casing, and "revenue" as an alias of Income.
func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASSET":
		return Asset, nil
	case "LIABILITY":
		return Liability, nil
	case "EQUITY":
		return Equity, nil
	case "INCOME", "REVENUE":
		return Income, nil
	case "EXPENSE":
		return Expense, nil
	}
	return "", fmt.Errorf("unknown account type %q", s)
}

// AccountRole is the semantic role a GL account plays for cash and AR/AP rollups.
type AccountRole string

const (
	RoleBank             AccountRole = "BANK"
	RoleAR               AccountRole = "AR"
	RoleAP               AccountRole = "AP"
	RoleDepositLiability AccountRole = "DEPOSIT_LIABILITY"
	RoleOther            AccountRole = "OTHER"
)

// GLAccount is a chart-of-accounts entry.
type GLAccount struct {
	ID                         string      `json:"id"`
	OrgID                      string      `json:"orgId"`
	Name                       string      `json:"name"`
	Type                       AccountType `json:"type"`
	SubType                    string      `json:"subType,omitempty"`
	IsBankAccount              bool        `json:"isBankAccount"`
	IsSecurityDepositLiability bool        `json:"isSecurityDepositLiability"`
	ExcludeFromCashBalances    bool        `json:"excludeFromCashBalances"`
	Role                       AccountRole `json:"role"`
	BankAccountNumber          *string     `json:"bankAccountNumber,omitempty"`
	BankRoutingNumber          *string     `json:"bankRoutingNumber,omitempty"`
	ExternalID                 *string     `json:"externalId,omitempty"` // Buildium bank/GL account id
	AuditFields
}

// InferAccountRole derives a role from account flags and free-text name/sub_type.
// It is meant for import and backfill; rollups read GLAccount.Role.
func InferAccountRole(a GLAccount) AccountRole {
	if a.IsBankAccount {
		return RoleBank
	}
	sub := normalizeLabel(a.SubType)
	name := normalizeLabel(a.Name)
	if a.IsSecurityDepositLiability ||
		(a.Type == Liability && (strings.Contains(sub, "deposit") || strings.Contains(name, "deposit"))) {
		return RoleDepositLiability
	}
	if strings.Contains(sub, "accountsreceivable") || strings.Contains(name, "accountsreceivable") {
		return RoleAR
	}
	if strings.Contains(sub, "accountspayable") || strings.Contains(name, "accountspayable") {
		return RoleAP
	}
	return RoleOther
}

// EffectiveRole returns the stored role, inferring one for accounts not yet backfilled.
func (a GLAccount) EffectiveRole() AccountRole {
	if a.Role != "" {
		return a.Role
	}
	return InferAccountRole(a)
}

// IsPrepaymentLiability reports whether a liability account holds tenant prepayments.
// Deposit, AR and AP accounts never qualify, whatever their labels say.
func (a GLAccount) IsPrepaymentLiability() bool {
	if a.Type != Liability || a.ExcludeFromCashBalances || a.EffectiveRole() != RoleOther {
		return false
	}
	for _, label := range []string{normalizeLabel(a.SubType), normalizeLabel(a.Name)} {
		for _, kw := range prepaymentKeywords {
			if strings.Contains(label, kw) {
				return true
			}
		}
	}
	return false
}

var prepaymentKeywords = []string{"prepay", "prepaid", "advance"}

// normalizeLabel lowercases and drops everything but letters and digits,
// so "Accounts Receivable" and "AccountsReceivable" compare equal.
func normalizeLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
