package services

import (
	"context"

	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/dto"
)

// BillApplicationSvc applies existing payments and vendor credits to bills.
type BillApplicationSvc interface {
	// ApplyToBill accepts a Payment or VendorCredit source.
	ApplyToBill(ctx context.Context, orgID, billID string, req dto.ApplyToBillRequest) (*domain.BillApplication, error)
	ApplyPayment(ctx context.Context, orgID, billID string, req dto.ApplyToBillRequest) (*domain.BillApplication, error)
	ApplyVendorCredit(ctx context.Context, orgID, billID string, req dto.ApplyToBillRequest) (*domain.BillApplication, error)
}

// BillPostingSvc records new AP money movements and applies them in the same database transaction.
type BillPostingSvc interface {
	RecordBillPayment(ctx context.Context, orgID string, req dto.RecordBillPaymentRequest) (*domain.PostedSource, error)
	RecordVendorCredit(ctx context.Context, orgID string, req dto.RecordVendorCreditRequest) (*domain.PostedSource, error)
}

// BillSvcFacade combines all bill service interfaces
type BillSvcFacade interface {
	BillApplicationSvc
	BillPostingSvc
}
