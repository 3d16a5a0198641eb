// Package reconcile merges the three row lists extracted from a completed job
// (invoice rows, delivery note rows, anomaly notes) into one deduplicated,
// ordered table suitable for export. It is pure and total: malformed input
// degrades to empty fields, it never fails.
package reconcile

import "strings"

// Field widths of the two structured record kinds.
const (
	InvoiceWidth  = 6
	DeliveryWidth = 5
	// TableWidth is invoice + delivery + one anomaly column.
	TableWidth = InvoiceWidth + DeliveryWidth + 1
)

// AnomalySeparator joins multiple anomaly notes into the single anomaly cell.
const AnomalySeparator = " | "

// Invoice field positions after parsing.
const (
	invDate = iota
	invID
	invCustomer
	invAmountNoVAT
	invVAT
	invTotal
)

// Delivery field positions after parsing. dnInvoiceID is the join key.
const (
	dnDate = iota
	dnNumber
	dnInvoiceID
	dnInvoiceDate
	dnCustomer
)

// Option configures a Reconcile call.
type Option func(*options)

type options struct {
	matcher AnomalyMatcher
}

// WithMatcher substitutes the anomaly attachment strategy.
func WithMatcher(m AnomalyMatcher) Option {
	return func(o *options) {
		if m != nil {
			o.matcher = m
		}
	}
}

// ParseParts splits a raw delimited line into exactly width trimmed fields.
// Short lines are right-padded with empty strings, long lines right-truncated.
func ParseParts(line string, width int) []string {
	parts := strings.Split(line, ",")
	out := make([]string, 0, width)
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	for len(out) < width {
		out = append(out, "")
	}
	return out[:width]
}

// Reconcile builds the denormalized table: one row per invoice line (joined to
// its delivery note by invoice ID when one exists), followed by delivery notes
// no invoice claimed. Blank-only rows are dropped and exact duplicates removed,
// first occurrence kept.
func Reconcile(invoiceRows, deliveryRows, anomalyRows []string, opts ...Option) [][]string {
	o := options{matcher: AttachAll{}}
	for _, opt := range opts {
		opt(&o)
	}

	// Index delivery notes by invoice ID, last write wins. Rows without an
	// invoice ID are only reachable as unmatched-delivery rows below.
	deliveryByInvoice := make(map[string][]string)
	order := make([]string, 0, len(deliveryRows))
	for _, line := range deliveryRows {
		dp := ParseParts(line, DeliveryWidth)
		key := dp[dnInvoiceID]
		if key == "" {
			continue
		}
		if _, seen := deliveryByInvoice[key]; !seen {
			order = append(order, key)
		}
		deliveryByInvoice[key] = dp
	}

	used := make(map[string]struct{})
	rows := make([][]string, 0, len(invoiceRows)+len(deliveryRows))

	for _, line := range invoiceRows {
		ip := ParseParts(line, InvoiceWidth)
		id := ip[invID]
		dp, matched := deliveryByInvoice[id]
		if matched {
			used[id] = struct{}{}
		} else {
			dp = make([]string, DeliveryWidth)
		}

		row := make([]string, 0, TableWidth)
		row = append(row, ip...)
		row = append(row, dp...)
		row = append(row, strings.Join(o.matcher.Match(id, row, anomalyRows), AnomalySeparator))
		rows = append(rows, row)
	}

	// Delivery notes never claimed by an invoice, in index insertion order.
	// Their anomaly cell stays empty.
	for _, key := range order {
		if _, ok := used[key]; ok {
			continue
		}
		dp := deliveryByInvoice[key]
		row := make([]string, TableWidth)
		copy(row[InvoiceWidth:], dp)
		rows = append(rows, row)
	}

	// Delivery rows with no join key: emit as-is, invoice half blank.
	for _, line := range deliveryRows {
		dp := ParseParts(line, DeliveryWidth)
		if dp[dnInvoiceID] != "" {
			continue
		}
		row := make([]string, TableWidth)
		copy(row[InvoiceWidth:], dp)
		rows = append(rows, row)
	}

	return dedupe(dropBlank(rows))
}

func dropBlank(rows [][]string) [][]string {
	out := rows[:0]
	for _, r := range rows {
		keep := false
		for _, v := range r {
			if strings.TrimSpace(v) != "" {
				keep = true
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

func dedupe(rows [][]string) [][]string {
	seen := make(map[string]struct{}, len(rows))
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		key := strings.Join(r, "||")
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
