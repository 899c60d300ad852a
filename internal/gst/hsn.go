package gst

import "sort"

// SentinelHSN groups items that carry no HSN/SAC code.
const SentinelHSN = "NA"

// HSNRow aggregates taxable value and tax for one HSN/SAC code.
type HSNRow struct {
	Code         string
	TaxableValue float64
	CGST         float64
	SGST         float64
	IGST         float64
}

// SummariseHSN groups taxable value and tax by HSN/SAC code across line items
// and other charges, for compliance reporting. The per-code tax follows the
// same intra/inter split as the bill itself.
func SummariseHSN(lines []LineItem, charges []OtherCharge, meta BillMeta) []HSNRow {
	buckets := make(map[string]*HSNRow)

	add := func(code string, taxable, tax float64) {
		if code == "" {
			code = SentinelHSN
		}
		row, ok := buckets[code]
		if !ok {
			row = &HSNRow{Code: code}
			buckets[code] = row
		}
		row.TaxableValue += taxable
		if meta.BillType == BillTypeInterState {
			row.IGST += tax
		} else {
			row.CGST += tax / 2
			row.SGST += tax / 2
		}
	}

	for _, line := range lines {
		taxable := line.TaxableValue()
		var tax float64
		if meta.GSTEnabled {
			tax = taxable * line.GSTRatePct / 100
		}
		add(line.HSNCode, taxable, tax)
	}
	for _, charge := range charges {
		var tax float64
		if meta.GSTEnabled {
			tax = charge.Amount * charge.GSTRatePct / 100
		}
		add(charge.HSNCode, charge.Amount, tax)
	}

	rows := make([]HSNRow, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	return rows
}
