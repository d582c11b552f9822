package mapping

import (
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/models"
)

// ToModelCharge converts a domain Charge to a model Charge
func ToModelCharge(d domain.Charge) models.Charge {
	m := models.Charge{
		ID:            d.ID,
		OrgID:         d.OrgID,
		LeaseID:       d.LeaseID,
		TransactionID: d.TransactionID,
		ChargeType:    d.ChargeType,
		Amount:        d.Amount,
		AmountOpen:    d.AmountOpen,
		Status:        string(d.Status),
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
	if d.DueDate != nil {
		due := domain.DateOnly(*d.DueDate)
		m.DueDate = &due
	}
	return m
}

// ToDomainCharge converts a model Charge to a domain Charge
func ToDomainCharge(m models.Charge) domain.Charge {
	return domain.Charge{
		ID:            m.ID,
		OrgID:         m.OrgID,
		LeaseID:       m.LeaseID,
		TransactionID: m.TransactionID,
		ChargeType:    m.ChargeType,
		Amount:        m.Amount,
		AmountOpen:    m.AmountOpen,
		DueDate:       m.DueDate,
		Status:        domain.ChargeStatus(m.Status),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainChargeSlice(ms []models.Charge) []domain.Charge {
	ds := make([]domain.Charge, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCharge(m)
	}
	return ds
}

// ToModelPaymentAllocation converts a domain PaymentAllocation to a model PaymentAllocation
func ToModelPaymentAllocation(d domain.PaymentAllocation) models.PaymentAllocation {
	return models.PaymentAllocation{
		ID:                   d.ID,
		OrgID:                d.OrgID,
		PaymentTransactionID: d.PaymentTransactionID,
		ChargeID:             d.ChargeID,
		AllocatedAmount:      d.AllocatedAmount,
		AllocationOrder:      d.AllocationOrder,
		ExternalID:           d.ExternalID,
		CreatedAt:            d.CreatedAt,
	}
}

// ToDomainPaymentAllocation converts a model PaymentAllocation to a domain PaymentAllocation
func ToDomainPaymentAllocation(m models.PaymentAllocation) domain.PaymentAllocation {
	return domain.PaymentAllocation{
		ID:                   m.ID,
		OrgID:                m.OrgID,
		PaymentTransactionID: m.PaymentTransactionID,
		ChargeID:             m.ChargeID,
		AllocatedAmount:      m.AllocatedAmount,
		AllocationOrder:      m.AllocationOrder,
		ExternalID:           m.ExternalID,
		CreatedAt:            m.CreatedAt,
	}
}

func ToDomainPaymentAllocationSlice(ms []models.PaymentAllocation) []domain.PaymentAllocation {
	ds := make([]domain.PaymentAllocation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPaymentAllocation(m)
	}
	return ds
}
