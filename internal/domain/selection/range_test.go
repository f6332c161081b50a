package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roomfront/internal/domain/availability"
	"roomfront/internal/domain/shared/daterange"
)

func TestHasConflictChecksOnlyInteriorDays(t *testing.T) {
	snap := availability.Classify([]availability.Interval{
		{CheckIn: day("2025-07-05"), CheckOut: day("2025-07-05"), Status: availability.StatusBlocked},
		{CheckIn: day("2025-07-09"), CheckOut: day("2025-07-09"), Status: availability.StatusPending},
	}, day("2025-07-01"))

	_, found := HasConflict(day("2025-07-05"), day("2025-07-09"), snap)
	assert.False(t, found, "endpoints are not part of the scan")

	at, found := HasConflict(day("2025-07-04"), day("2025-07-10"), snap)
	assert.True(t, found)
	assert.Equal(t, "2025-07-05", at.Key(), "scan stops at the first hit")

	_, found = HasConflict(day("2025-07-05"), day("2025-07-06"), snap)
	assert.False(t, found, "adjacent days have no interior")
}

func TestMaterializeSkipsDaysContainedInAnyInterval(t *testing.T) {
	// A status-less interval never reaches the classifier's sets, so it is not
	// a conflict, but the stricter containment test still drops its days.
	snap := availability.Classify([]availability.Interval{
		{CheckIn: day("2025-07-06"), CheckOut: day("2025-07-07"), Status: ""},
	}, day("2025-07-01"))

	var sel Selector
	sel.Click(day("2025-07-05"), snap)
	out := sel.Click(day("2025-07-09"), snap)

	assert.Equal(t, OutcomeRangeSelected, out.Kind)
	assert.Equal(t, []string{"2025-07-05", "2025-07-08", "2025-07-09"}, daterange.Keys(sel.DateRange()))
	for _, d := range sel.DateRange() {
		assert.False(t, snap.Occupied(d), d.Key())
	}
}

func TestMaterializeSkipsPastIntervalDays(t *testing.T) {
	snap := availability.Classify([]availability.Interval{
		{CheckIn: day("2025-06-29"), CheckOut: day("2025-06-30"), Status: availability.StatusApproved},
	}, day("2025-07-01"))

	days := Materialize(daterange.Range{Start: day("2025-06-28"), End: day("2025-07-02")}, snap)

	assert.Equal(t, []string{"2025-06-28", "2025-07-01", "2025-07-02"}, daterange.Keys(days))
}

func TestMaterializeSingleDay(t *testing.T) {
	snap := availability.Classify(nil, day("2025-07-01"))
	days := Materialize(daterange.Range{Start: day("2025-07-03"), End: day("2025-07-03")}, snap)
	assert.Equal(t, []string{"2025-07-03"}, daterange.Keys(days))
}
