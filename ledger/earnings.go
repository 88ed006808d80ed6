/*
earnings.go - Duration and amount arithmetic

PURPOSE:
  Pure functions deriving billable hours and amount owed from a work
  interval and an hourly rate. No I/O, no storage dependency.

PRECISION:
  Hours and amounts stay unrounded decimals. Rounding to currency
  precision happens only at the presentation boundary (DTOs, CSV) so
  rounding error never compounds across reports.

OVERNIGHT SPANS:
  End before start yields a NEGATIVE duration and a negative amount.
  This is literal subtraction, kept deliberately: the system does not
  infer "add 24 hours" for shifts crossing midnight. Flagged as a known
  limitation rather than silently patched.
*/
package ledger

import "github.com/shopspring/decimal"

var minutesPerHour = decimal.NewFromInt(60)

// Earnings is the derived billing for one work interval.
type Earnings struct {
	Hours  decimal.Decimal
	Amount decimal.Decimal
}

// ComputeEarnings derives billable hours and amount owed from a work
// interval at the given hourly rate.
//
//	Hours  = (end - start) in hours, signed, unrounded
//	Amount = Hours x hourlyRate
//
// start == end yields zero hours and zero amount. end < start yields
// negative hours and a negative amount (see package note on overnight
// spans).
func ComputeEarnings(start, end ClockTime, hourlyRate decimal.Decimal) Earnings {
	minutes := decimal.NewFromInt(int64(end.Minutes() - start.Minutes()))
	return Earnings{
		Hours: minutes.Div(minutesPerHour),
		// Divide last: minutes x rate / 60 stays exact whenever the
		// product divides evenly, where (minutes/60) x rate would not.
		Amount: minutes.Mul(hourlyRate).Div(minutesPerHour),
	}
}
