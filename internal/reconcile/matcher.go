package reconcile

import "strings"

// AnomalyMatcher decides which anomaly notes belong on an invoice-driven row.
// row holds the invoice and delivery fields assembled so far; implementations
// must not mutate it. Delivery-only rows never carry anomalies and are not
// passed through a matcher.
type AnomalyMatcher interface {
	Match(invoiceID string, row []string, anomalies []string) []string
}

// AttachAll is the current policy: every invoice-driven row carries the full
// anomaly set, with no per-row filtering.
type AttachAll struct{}

func (AttachAll) Match(_ string, _ []string, anomalies []string) []string {
	return anomalies
}

// ByInvoiceID keeps only anomalies that mention the row's invoice ID. Rows
// without an invoice ID match nothing.
type ByInvoiceID struct{}

func (ByInvoiceID) Match(invoiceID string, _ []string, anomalies []string) []string {
	if invoiceID == "" {
		return nil
	}
	var out []string
	for _, a := range anomalies {
		if strings.Contains(a, invoiceID) {
			out = append(out, a)
		}
	}
	return out
}
