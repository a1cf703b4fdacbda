package scheduler

import "math/rand/v2"

const (
	quoteTitle    = "Your daily quote"
	reminderTitle = "Keep your streak going"
)

var reminderMessages = []string{
	"You haven't read a quote today. A minute now keeps the streak alive.",
	"Your streak is waiting. Open today's quote before the day ends.",
	"One quote is all it takes to keep today on the board.",
	"Don't let today slip by. Check in with a quote.",
	"A little wisdom before bed? Your streak will thank you.",
}

func reminderMessage(rng *rand.Rand) string {
	return reminderMessages[rng.IntN(len(reminderMessages))]
}
