package constants

import "time"

// PermissionStatus is the outcome of asking the platform for notification rights
type PermissionStatus string

// TriggerKind identifies what a scheduled trigger carries
type TriggerKind string

// DeliveryChannel selects how fired notifications reach the user
type DeliveryChannel string

const (
	AppName              = "dayquote"
	DefaultKeyringUser   = "database-connection"
	TelegramKeyringUser  = "telegram-token"
	AnalyticsKeyringUser = "analytics-key"
	DefaultConfigPath    = "~/.config/dayquote/dayquote.db"
	Version              = "v0.1.0"

	// Environment overrides
	EnvDBConnection  = "DAYQUOTE_DB_CONNECTION"
	EnvTelegramToken = "DAYQUOTE_TELEGRAM_TOKEN"
	EnvAnalyticsKey  = "DAYQUOTE_ANALYTICS_KEY"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "dayquote-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "dayquote-notifier.lock"
	NotificationDurationMs = 8000
	TrayAppIdentifier      = "com.julianstephens.dayquote"
	TraySecretHeader       = "X-Dayquote-Secret"

	// Reschedule debounce applied to preference change events
	RescheduleDebounce = 500 * time.Millisecond

	// DispatchInterval is how often the daemon looks for due triggers
	DispatchInterval = time.Minute

	// Permission states
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionUndetermined PermissionStatus = "undetermined"

	// Trigger kinds
	TriggerKindQuote          TriggerKind = "quote"
	TriggerKindStreakReminder TriggerKind = "streak_reminder"

	// Delivery channels
	DeliveryTray     DeliveryChannel = "tray"
	DeliveryTelegram DeliveryChannel = "telegram"
	DeliveryStdout   DeliveryChannel = "stdout"

	// Analytics events
	EventStreakMilestone        = "streak_milestone"
	EventActivityRecorded       = "activity_recorded"
	EventNotificationsScheduled = "notifications_rescheduled"
	EventNotificationDelivered  = "notification_delivered"
)

// StreakMilestones are the streak lengths that emit a milestone event when crossed
var StreakMilestones = []int{1, 3, 7, 14, 30, 50, 100}
