package quota

import (
	"time"
)

// CheckTemporalValidity reports whether attaching a prescription with the
// given written date to a ride on rideDate is a reimbursement risk. The payer
// rejects claims whose authorization is dated after the transport it covers,
// so risk is true iff prescribedDate falls on a later calendar day than
// rideDate. Same-day prescriptions are valid. Comparison is at day
// granularity; time of day is ignored.
func CheckTemporalValidity(rideDate, prescribedDate time.Time) bool {
	return startOfDay(prescribedDate).After(startOfDay(rideDate))
}

// startOfDay truncates to the UTC calendar day. Both sides are converted to
// UTC first so an instant carries the same day regardless of the offset it
// was parsed with.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
