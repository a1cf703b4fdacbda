package scheduler

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/julianstephens/dayquote/internal/models"
)

// maxJitterMin caps how far a notification may drift from its slot centre
const maxJitterMin = 30.0

// ClampWindow forces the hour window into 0 <= start <= 23 and start < end <= 24.
func ClampWindow(startHour, endHour int) (int, int) {
	startHour = min(max(startHour, 0), 23)
	endHour = min(max(endHour, startHour+1), 24)
	return startHour, endHour
}

// ComputeTimes spreads count notification times over [startHour, endHour).
//
// The window is cut into count equal slots and each time sits at its slot's
// centre, shifted by a uniform jitter of at most 40% of a slot or 30 minutes,
// whichever is smaller. Results are clamped into the window and sorted; two
// times may coincide when slots are narrower than a minute.
func ComputeTimes(count, startHour, endHour int, rng *rand.Rand) []models.TimeOfDay {
	if count <= 0 {
		return []models.TimeOfDay{}
	}
	startHour, endHour = ClampWindow(startHour, endHour)

	ws := float64(startHour * 60)
	we := float64(endHour * 60)
	slot := (we - ws) / float64(count)
	jitter := math.Min(0.4*slot, maxJitterMin)

	minutes := make([]int, count)
	for i := range count {
		centre := ws + slot*(float64(i)+0.5)
		offset := (rng.Float64()*2 - 1) * jitter
		m := int(math.Floor(centre + offset))
		minutes[i] = min(max(m, int(ws)), int(we)-1)
	}
	sort.Ints(minutes)

	times := make([]models.TimeOfDay, count)
	for i, m := range minutes {
		times[i] = models.TimeOfDayFromMinutes(m)
	}
	return times
}

// ReminderTime places the streak reminder at the start of the window's last
// quarter, on a random minute of that hour.
func ReminderTime(startHour, endHour int, rng *rand.Rand) models.TimeOfDay {
	startHour, endHour = ClampWindow(startHour, endHour)
	hour := int(math.Floor(float64(endHour) - 0.25*float64(endHour-startHour)))
	return models.TimeOfDay{Hour: hour, Minute: rng.IntN(60)}
}
