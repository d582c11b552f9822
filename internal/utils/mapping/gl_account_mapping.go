package mapping

import (
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/models"
)

// ToModelGLAccount converts a domain GLAccount to a model GLAccount
func ToModelGLAccount(d domain.GLAccount) models.GLAccount {
	return models.GLAccount{
		ID:                         d.ID,
		OrgID:                      d.OrgID,
		Name:                       d.Name,
		Type:                       string(d.Type),
		SubType:                    nilIfEmpty(d.SubType),
		IsBankAccount:              d.IsBankAccount,
		IsSecurityDepositLiability: d.IsSecurityDepositLiability,
		ExcludeFromCashBalances:    d.ExcludeFromCashBalances,
		Role:                       nilIfEmpty(string(d.Role)),
		BankAccountNumber:          d.BankAccountNumber,
		BankRoutingNumber:          d.BankRoutingNumber,
		BuildiumGLAccountID:        d.ExternalID,
		AuditFields:                ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainGLAccount converts a model GLAccount to a domain GLAccount.
// Unknown type labels pass through unchanged so the classifier can skip them.
func ToDomainGLAccount(m models.GLAccount) domain.GLAccount {
	accountType := domain.AccountType(m.Type)
	if parsed, err := domain.ParseAccountType(m.Type); err == nil {
		accountType = parsed
	}
	return domain.GLAccount{
		ID:                         m.ID,
		OrgID:                      m.OrgID,
		Name:                       m.Name,
		Type:                       accountType,
		SubType:                    deref(m.SubType),
		IsBankAccount:              m.IsBankAccount,
		IsSecurityDepositLiability: m.IsSecurityDepositLiability,
		ExcludeFromCashBalances:    m.ExcludeFromCashBalances,
		Role:                       domain.AccountRole(deref(m.Role)),
		BankAccountNumber:          m.BankAccountNumber,
		BankRoutingNumber:          m.BankRoutingNumber,
		ExternalID:                 m.BuildiumGLAccountID,
		AuditFields:                ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainGLAccountSlice converts a slice of model GLAccounts to domain GLAccounts
func ToDomainGLAccountSlice(ms []models.GLAccount) []domain.GLAccount {
	ds := make([]domain.GLAccount, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainGLAccount(m)
	}
	return ds
}
