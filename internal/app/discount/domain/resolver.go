package domain

import "cloud.google.com/go/civil"

// ResolveDiscount selects the single discount that applies to a purchase of
// productID by patientID ("" when the buyer is not a known patient) on the
// given business date. It returns nil when nothing applies.
//
// A discount targeting the patient always beats a global one. Within the same
// scope the highest percentage wins, then the most recent decision, then the
// lowest id. The result depends only on the arguments.
func ResolveDiscount(candidates []*DiscountRequest, productID, patientID string, today civil.Date) *DiscountRequest {
	var bestTargeted, bestGlobal *DiscountRequest

	for _, c := range candidates {
		if c == nil || c.productID != productID || !c.IsActiveOn(today) {
			continue
		}
		switch {
		case c.scope.Targets(patientID):
			if bestTargeted == nil || outranks(c, bestTargeted) {
				bestTargeted = c
			}
		case c.scope.IsGlobal():
			if bestGlobal == nil || outranks(c, bestGlobal) {
				bestGlobal = c
			}
		}
	}

	if bestTargeted != nil {
		return bestTargeted
	}
	return bestGlobal
}

// outranks reports whether a beats b within the same scope partition.
func outranks(a, b *DiscountRequest) bool {
	if cmp := a.percentage.Cmp(b.percentage); cmp != 0 {
		return cmp > 0
	}
	if cmp := compareDecided(a, b); cmp != 0 {
		return cmp > 0
	}
	return a.id < b.id
}

// compareDecided orders by decision time; an undecided request sorts oldest.
func compareDecided(a, b *DiscountRequest) int {
	switch {
	case a.decidedAt == nil && b.decidedAt == nil:
		return 0
	case a.decidedAt == nil:
		return -1
	case b.decidedAt == nil:
		return 1
	case a.decidedAt.After(*b.decidedAt):
		return 1
	case a.decidedAt.Before(*b.decidedAt):
		return -1
	}
	return 0
}
