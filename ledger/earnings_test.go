package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrFrey75/TimePE/ledger"
)

func clock(h, m int) ledger.ClockTime {
	return ledger.NewClockTime(h, m)
}

func TestComputeEarnings_FullDay(t *testing.T) {
	// 09:00 - 17:00 at $50/h = 8h, $400
	e := ledger.ComputeEarnings(clock(9, 0), clock(17, 0), dec("50.00"))
	assert.True(t, dec("8").Equal(e.Hours), "hours = %s", e.Hours)
	assert.True(t, dec("400").Equal(e.Amount), "amount = %s", e.Amount)
}

func TestComputeEarnings_FractionalHours_Unrounded(t *testing.T) {
	// 9:00 - 9:50 at $60/h = 50/60 h, $50 exactly
	e := ledger.ComputeEarnings(clock(9, 0), clock(9, 50), dec("60.00"))
	assert.Equal(t, "0.83", e.Hours.StringFixed(2))
	assert.True(t, dec("50").Equal(e.Amount), "amount = %s", e.Amount)

	// One minute at $60/h: the unrounded hour fraction keeps the cent exact.
	e = ledger.ComputeEarnings(clock(9, 0), clock(9, 1), dec("60.00"))
	assert.True(t, dec("1").Equal(e.Amount), "amount = %s", e.Amount)
}

func TestComputeEarnings_ZeroDuration(t *testing.T) {
	e := ledger.ComputeEarnings(clock(9, 0), clock(9, 0), dec("50.00"))
	assert.True(t, e.Hours.IsZero())
	assert.True(t, e.Amount.IsZero())
}

func TestComputeEarnings_EndBeforeStart_GoesNegative(t *testing.T) {
	// An overnight shift entered on one row: 22:00 - 06:00 computes as
	// -16h. The literal subtraction is kept; splitting the shift across
	// two dated rows is the supported way to log it.
	e := ledger.ComputeEarnings(clock(22, 0), clock(6, 0), dec("50.00"))
	assert.True(t, dec("-16").Equal(e.Hours), "hours = %s", e.Hours)
	assert.True(t, dec("-800").Equal(e.Amount), "amount = %s", e.Amount)
}

func TestComputeEarnings_PresentationRounding(t *testing.T) {
	// 20 minutes at $50/h = 16.666... internally, 16.67 displayed.
	e := ledger.ComputeEarnings(clock(9, 0), clock(9, 20), dec("50.00"))
	assert.Equal(t, "16.67", e.Amount.StringFixed(2))
	assert.False(t, dec("16.67").Equal(e.Amount), "stored amount must stay unrounded")
}
