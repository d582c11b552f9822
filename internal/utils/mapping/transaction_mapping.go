package mapping

import (
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		ID:                    d.ID,
		OrgID:                 d.OrgID,
		Kind:                  string(d.Kind),
		TotalAmount:           d.TotalAmount,
		Date:                  domain.DateOnly(d.Date),
		LeaseID:               d.LeaseID,
		PropertyID:            d.PropertyID,
		UnitID:                d.UnitID,
		VendorID:              d.VendorID,
		Memo:                  d.Memo,
		IsReconciled:          d.IsReconciled,
		BuildiumTransactionID: d.ExternalID,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		ID:           m.ID,
		OrgID:        m.OrgID,
		Kind:         domain.TransactionKind(m.Kind),
		TotalAmount:  m.TotalAmount,
		Date:         m.Date,
		LeaseID:      m.LeaseID,
		PropertyID:   m.PropertyID,
		UnitID:       m.UnitID,
		VendorID:     m.VendorID,
		Memo:         m.Memo,
		IsReconciled: m.IsReconciled,
		ExternalID:   m.BuildiumTransactionID,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToModelTransactionLine converts a domain TransactionLine to a model TransactionLine
func ToModelTransactionLine(d domain.TransactionLine) models.TransactionLine {
	return models.TransactionLine{
		ID:            d.ID,
		TransactionID: d.TransactionID,
		OrgID:         d.OrgID,
		GLAccountID:   d.GLAccountID,
		Amount:        d.Amount,
		PostingType:   string(d.PostingType),
		PropertyID:    d.PropertyID,
		UnitID:        d.UnitID,
		LeaseID:       d.LeaseID,
		Date:          domain.DateOnly(d.Date),
		Memo:          d.Memo,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDomainTransactionLine converts a model TransactionLine to a domain TransactionLine
func ToDomainTransactionLine(m models.TransactionLine) domain.TransactionLine {
	return domain.TransactionLine{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		OrgID:         m.OrgID,
		GLAccountID:   m.GLAccountID,
		Amount:        m.Amount,
		PostingType:   domain.PostingType(m.PostingType),
		PropertyID:    m.PropertyID,
		UnitID:        m.UnitID,
		LeaseID:       m.LeaseID,
		Date:          m.Date,
		Memo:          m.Memo,
		CreatedAt:     m.CreatedAt,
	}
}

func ToDomainTransactionLineSlice(ms []models.TransactionLine) []domain.TransactionLine {
	ds := make([]domain.TransactionLine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransactionLine(m)
	}
	return ds
}
