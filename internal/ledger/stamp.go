package ledger

import "time"

// Stamp is one point in time rendered in the forms the ledger writes.
// Every line produced by a run shares the same Stamp.
type Stamp struct {
	// Full prefixes journal and archive lines, e.g. "[2024-01-15, 09:30am]".
	Full string
	// Date is the date-only form, e.g. "2024-01-15".
	Date string
	// Clock is the time used in side-document titles, e.g. "09:30AM".
	Clock string
}

// NewStamp renders t in local time.
func NewStamp(t time.Time) Stamp {
	t = t.Local()
	return Stamp{
		Full:  t.Format("[2006-01-02, 03:04pm]"),
		Date:  t.Format("2006-01-02"),
		Clock: t.Format("03:04PM"),
	}
}
