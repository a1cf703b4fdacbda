package constants

const (
	// DateFormat is how calendar days are written in the streak log
	DateFormat = "2006-01-02"

	// ClockFormat renders a trigger's time of day
	ClockFormat = "15:04"
)
