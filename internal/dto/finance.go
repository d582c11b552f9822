package dto

// FinanceQuery are the query parameters of GET /finances.
type FinanceQuery struct {
	PropertyID *string `form:"propertyId"`
	UnitID     *string `form:"unitId"`
	// AsOf is a calendar date; empty means today.
	AsOf string `form:"asOf" validate:"omitempty,datetime=2006-01-02"`
}
