package domain

// PriceResult is an itemized line price. DiscountAmount plus FinalTotal
// always equals OriginalTotal exactly.
type PriceResult struct {
	UnitPrice          *Money
	Quantity           int64
	OriginalTotal      *Money
	DiscountPercentage Percentage
	DiscountAmount     *Money
	FinalTotal         *Money
	DiscountApplied    bool
	DiscountRequestID  string
}

// PriceCalculator applies a resolved discount to a unit price and quantity.
type PriceCalculator struct{}

// NewPriceCalculator creates a new PriceCalculator instance.
func NewPriceCalculator() *PriceCalculator {
	return &PriceCalculator{}
}

// Calculate prices quantity units at unitPrice. discount may be nil.
//
// Only the discount amount is rounded (2 places, half up); the final total is
// derived by subtraction. Unit prices must be exact to the cent.
func (pc *PriceCalculator) Calculate(unitPrice *Money, quantity int64, discount *DiscountRequest) (*PriceResult, error) {
	verr := NewValidationError()
	if quantity < 1 {
		verr.AddErr("quantity", ErrInvalidQuantity)
	}
	switch {
	case unitPrice == nil:
		verr.Add("unit_price", "unit price is required")
	case unitPrice.IsNegative():
		verr.AddErr("unit_price", ErrNegativeUnitPrice)
	case !unitPrice.HasAtMostPlaces(2):
		verr.AddErr("unit_price", ErrUnitPriceTooPrecise)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	originalTotal := unitPrice.MultiplyByInt(quantity)

	result := &PriceResult{
		UnitPrice:      unitPrice.Copy(),
		Quantity:       quantity,
		OriginalTotal:  originalTotal,
		DiscountAmount: ZeroMoney(),
		FinalTotal:     originalTotal.Copy(),
	}
	if discount == nil {
		return result, nil
	}

	amount := originalTotal.MultiplyByRat(discount.percentage.Fraction()).Round(2)

	result.DiscountPercentage = discount.percentage
	result.DiscountAmount = amount
	result.FinalTotal = originalTotal.Subtract(amount)
	result.DiscountApplied = true
	result.DiscountRequestID = discount.id
	return result, nil
}
