// Package gst computes tax splits for Indian GST bills. All functions are
// pure; persistence and posting decisions live with the callers.
package gst

import "math"

// BillType selects the CGST/SGST versus IGST split.
type BillType string

const (
	BillTypeIntraState BillType = "INTRA_STATE"
	BillTypeInterState BillType = "INTER_STATE"
)

// LineItem is a billed item before tax.
type LineItem struct {
	Description string
	HSNCode     string
	Qty         float64
	Rate        float64
	DiscountPct float64
	GSTRatePct  float64
}

// OtherCharge is a freight/packing/handling style charge carrying its own rate.
type OtherCharge struct {
	Name       string
	HSNCode    string
	Amount     float64
	GSTRatePct float64
}

// BillMeta carries the flags that shape the tax computation.
type BillMeta struct {
	BillType      BillType
	GSTEnabled    bool
	ReverseCharge bool
}

// Breakdown is the computed tax split for a bill.
type Breakdown struct {
	TaxableValue float64 // line items after discount
	ChargesTotal float64 // other charges before tax
	CGST         float64
	SGST         float64
	IGST         float64
	TaxTotal     float64
	// ReverseCharge mirrors the input flag: the amounts above are disclosed
	// but excluded from GrandTotal and from ledger posting.
	ReverseCharge bool
	GrandTotal    float64 // rounded to the nearest rupee
	RoundOff      float64 // GrandTotal minus the exact total
}

// TaxableValue returns the line value after discount.
func (l LineItem) TaxableValue() float64 {
	return l.Qty * l.Rate * (1 - l.DiscountPct/100)
}

// Compute derives the tax breakdown for line items, other charges and bill
// metadata. Tax splits evenly into CGST/SGST for intra-state bills and goes
// entirely to IGST for inter-state ones.
func Compute(lines []LineItem, charges []OtherCharge, meta BillMeta) Breakdown {
	b := Breakdown{ReverseCharge: meta.ReverseCharge}

	var tax float64
	for _, line := range lines {
		taxable := line.TaxableValue()
		b.TaxableValue += taxable
		if meta.GSTEnabled {
			tax += taxable * line.GSTRatePct / 100
		}
	}
	for _, charge := range charges {
		b.ChargesTotal += charge.Amount
		if meta.GSTEnabled {
			tax += charge.Amount * charge.GSTRatePct / 100
		}
	}

	if meta.BillType == BillTypeInterState {
		b.IGST = tax
	} else {
		b.CGST = tax / 2
		b.SGST = tax / 2
	}
	b.TaxTotal = tax

	exact := b.TaxableValue + b.ChargesTotal
	if !meta.ReverseCharge {
		exact += tax
	}
	b.GrandTotal = math.Round(exact)
	b.RoundOff = b.GrandTotal - exact
	return b
}
