package mapping

import (
	"github.com/bbabel1/property-manager-sub016/internal/core/domain"
	"github.com/bbabel1/property-manager-sub016/internal/models"
)

func ToModelBillApplication(d domain.BillApplication) models.BillApplication {
	return models.BillApplication{
		ID:                  d.ID,
		OrgID:               d.OrgID,
		BillTransactionID:   d.BillTransactionID,
		SourceTransactionID: d.SourceTransactionID,
		SourceType:          string(d.SourceType),
		AppliedAmount:       d.AppliedAmount,
		AppliedAt:           d.AppliedAt,
	}
}

func ToDomainBillApplication(m models.BillApplication) domain.BillApplication {
	return domain.BillApplication{
		ID:                  m.ID,
		OrgID:               m.OrgID,
		BillTransactionID:   m.BillTransactionID,
		SourceTransactionID: m.SourceTransactionID,
		SourceType:          domain.BillSourceType(m.SourceType),
		AppliedAmount:       m.AppliedAmount,
		AppliedAt:           m.AppliedAt,
	}
}

func ToDomainBillApplicationSlice(ms []models.BillApplication) []domain.BillApplication {
	ds := make([]domain.BillApplication, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBillApplication(m)
	}
	return ds
}
