package constants

const (
	// Store keys. Values are JSON encoded.
	KeyPreferences            = "preferences"
	KeyDelivery               = "delivery"
	KeyStreakLog              = "streak_log"
	KeyNotificationPermission = "notification_permission"
	KeyInstallID              = "install_id"

	// Default preference values
	DefaultNotificationsPerDay   = 3
	DefaultStartHour             = 9
	DefaultEndHour               = 22
	DefaultNotificationsEnabled  = true
	DefaultStreakReminderEnabled = true

	// Preference limits
	MaxNotificationsPerDay = 48

	// Default delivery values
	DefaultDeliveryChannel  = DeliveryTray
	DefaultGracePeriodMin   = 10
	MaxGracePeriodMin       = 120
	DefaultTimezone         = "Local" // Use system local timezone by default
	DefaultFallbackCategory = "general"
)
