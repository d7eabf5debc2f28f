package cart

// Pricing drives the fixed totals pipeline: subtotal, then shipping against
// the free-shipping threshold, then tax on the subtotal, then total.
type Pricing struct {
	FreeShippingThresholdCents int64
	FlatShippingCents          int64
	TaxRateBps                 int64
	TaxEnabled                 bool
}

// Recalculate recomputes every derived figure from the current line set.
// It is idempotent and order-independent for a given set of lines.
func (c *Cart) Recalculate(p Pricing) {
	var subtotal int64
	for i := range c.Lines {
		c.Lines[i].SubtotalCents = c.Lines[i].PriceCents * int64(c.Lines[i].Quantity)
		subtotal += c.Lines[i].SubtotalCents
	}
	c.SubtotalCents = subtotal

	if subtotal == 0 {
		c.ShippingCents = 0
	} else if subtotal >= p.FreeShippingThresholdCents {
		c.ShippingCents = 0
	} else {
		c.ShippingCents = p.FlatShippingCents
	}

	if p.TaxEnabled {
		c.TaxCents = roundHalfUp(subtotal*p.TaxRateBps, 10000)
	} else {
		c.TaxCents = 0
	}

	c.TotalCents = c.SubtotalCents + c.TaxCents + c.ShippingCents - c.DiscountCents
}

func roundHalfUp(numerator, denominator int64) int64 {
	return (numerator + denominator/2) / denominator
}
