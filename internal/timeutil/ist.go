package timeutil

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30)
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback: create fixed zone if Asia/Kolkata not available
		IST = time.FixedZone("IST", 5*60*60+30*60) // UTC+5:30
	}
}

// Now returns the current time in IST
func Now() time.Time {
	return time.Now().In(IST)
}

// ToIST converts any time to IST
func ToIST(t time.Time) time.Time {
	return t.In(IST)
}

// Layouts for invoice dates.
const (
	// DateInputLayout is what HTML date inputs submit.
	DateInputLayout = "2006-01-02"
	// InvoiceDateLayout is the form printed on generated invoices.
	InvoiceDateLayout = "02-01-2006"
)

// Today returns the current IST date in date-input form.
func Today() string {
	return Now().Format(DateInputLayout)
}

// ReformatDate converts a date-input value (YYYY-MM-DD) to the DD-MM-YYYY
// form printed on invoices. Values that do not parse are returned unchanged
// so template substitution never fails on user input.
func ReformatDate(value string) string {
	t, err := time.ParseInLocation(DateInputLayout, value, IST)
	if err != nil {
		return value
	}
	return t.Format(InvoiceDateLayout)
}
