package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "PinPanel/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "PinPanel"
	AppID             = "com.pinpanel.app"
	KeyringService    = "com.pinpanel.app"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	SettingsFileName  = "config.toml"
	DefaultDBFileName = "urgent_todos.db"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs and the settings file.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for creating the cache and config directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	SettingsWindowWidth = 600
	PanelWinWidth       = 460
	PanelWinHeight      = 580

	// Preference Keys
	PrefFeedURL      = "feed_url"
	PrefUsername     = "username"
	PrefLanguage     = "language"
	PrefInterval     = "refresh_interval_min"
	PrefRelayPort    = "relay_port"
	PrefSourceMode   = "source_mode"
	PrefLocalPath    = "local_path"
	PrefContactsPath = "contacts_path"
	PrefLastRun      = "last_run_version"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Access Gate
// -----------------------------------------------------------------------------

const (
	// PasscodeLength is fixed; entries beyond it are ignored.
	PasscodeLength = 3

	// MismatchClearDelay is how long a rejected entry stays visible before the
	// gate wipes it together with the error flag.
	MismatchClearDelay = 1000 * time.Millisecond

	// DefaultPasscode is the factory code. Deployments override it in the
	// settings file.
	DefaultPasscode = "123"

	// Session marker for an unlocked panel. Scoped to the process run.
	SessionKeyUnlocked = "gate_unlocked"
	SessionValUnlocked = "1"
)

// -----------------------------------------------------------------------------
// Lock Screen & Panel Layout
// -----------------------------------------------------------------------------

const (
	KeypadColumns       = 3
	LayoutColumnsDouble = 2

	GlyphDotFilled = "●"
	GlyphDotEmpty  = "○"
	GlyphDone      = "☑"
	GlyphOpen      = "☐"

	KeypadClearLabel = "C"

	// FormatTabLabel renders a tab title with its live count.
	FormatTabLabel = "%s (%d)"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle      = "win_title"
	TKeyWinSettings   = "win_settings_title"
	TKeyTabUpcoming   = "tab_upcoming"
	TKeyTabUrgent     = "tab_urgent"
	TKeyLockPrompt    = "lock_prompt"
	TKeyLockMismatch  = "lock_mismatch"
	TKeyBtnClear      = "btn_clear"
	TKeyEmptyUpcoming = "empty_upcoming"
	TKeyEmptyUrgent   = "empty_urgent"
	TKeyBtnRefresh    = "btn_refresh"
	TKeyBtnSettings   = "btn_settings"
	TKeyBtnAddTodo    = "btn_add_todo"
	TKeyBtnDelete     = "btn_delete"
	TKeyDlgAddTodo    = "dlg_add_todo"
	TKeyLblTodoTitle  = "lbl_todo_title"
	TKeyLblPriority   = "lbl_priority"
	TKeyLblDue        = "lbl_due"
	TKeyHelpDue       = "help_due"
	TKeyPrioHigh      = "prio_high"
	TKeyPrioMedium    = "prio_medium"
	TKeyPrioLow       = "prio_low"
	TKeyDueAt         = "due_at" // Requires When
	TKeyNotifSuccess  = "notif_refresh_success"
	TKeyNotifError    = "notif_err_refresh"
	TKeyModeWeb       = "mode_web"
	TKeyModeLocal     = "mode_local"
	TKeyLblLanguage   = "lbl_language"
	TKeyHelpLanguage  = "help_language"
	TKeyLblMinutes    = "lbl_minutes_suffix"
	TKeyLblRefresh    = "lbl_refresh_interval"
	TKeyHelpInterval  = "help_interval"
	TKeyLblPort       = "lbl_relay_port"
	TKeyHelpPort      = "help_port"
	TKeyLblGeneral    = "lbl_general"
	TKeyLblFeed       = "lbl_feed"
	TKeyBtnSave       = "btn_save"
	TKeyBtnCancel     = "btn_cancel"
	TKeyLblFooter     = "lbl_footer"
	TKeyBtnBrowse     = "btn_browse"
	TKeyLblURL        = "lbl_url"
	TKeyHelpURL       = "help_feed_url"
	TKeyLblUser       = "lbl_user"
	TKeyLblPass       = "lbl_pass"
	TKeyLblSource     = "lbl_source"
	TKeyLblContacts   = "lbl_contacts"
	TKeyHelpContacts  = "help_contacts"

	// Row Formats
	TKeyEvtBirthday    = "event_birthday"     // Requires Name
	TKeyEvtBirthdayAge = "event_birthday_age" // Requires Name, Age
	TKeyFormatDate     = "format_date_short"  // Date layout pattern (e.g., "2006-01-02")
	TKeyMinutesShort   = "minutes_short"      // Requires Count

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
	TKeyErrTitleReq  = "err_title_required"
	TKeyErrDueFormat = "err_due_format"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb   = "web"
	SourceModeLocal = "local"

	DefaultPort       = "18090"
	DefaultRefreshMin = 30
	DefaultLanguage   = "en"
	DefaultLeapYear   = 2000 // Leap year fallback for dates like --02-29
	DisabledInterval  = 0

	// UIDSalt prefixes deterministic UID generation for merged birthday rows.
	UIDSalt = "pinpanel-v1-"

	// Appointment defaults
	DefaultDurationMin = 60
	AllDayDurationMin  = 1440
	AllDayStart        = "00:00"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//PinPanel//Relay//EN"
	ICalCalName = "Appointments"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "pinpanel"

	// iCal/vCard Fields
	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTEnd      = "DTEND"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// DateLayoutISO is the calendar-date layout used across the wire document,
	// the store and the presenter. Lexicographic order equals chronological
	// order for this layout.
	DateLayoutISO = "2006-01-02"

	// TimeLayoutHM is the zero-padded start-of-appointment layout. Same
	// lexicographic property as DateLayoutISO.
	TimeLayoutHM = "15:04"

	// Additional layouts accepted when parsing vCard BDAY fields.
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtICS   = ".ics"
	ExtJSON  = ".json"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout        = 30 * time.Second
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"

	// DBBusyTimeoutMS is the SQLite busy_timeout pragma value. The UI and the
	// background worker share one connection pool, so waits stay short.
	DBBusyTimeoutMS = 5000

	// MaxHTTPResponseSize caps feed bodies. Appointment feeds are small; 8MB
	// leaves generous headroom for fat iCalendar exports.
	MaxHTTPResponseSize = 8 * 1024 * 1024

	SchemeHTTP    = "http"
	SchemeHTTPS   = "https"
	RouteRoot     = "/"
	RouteCalendar = "/calendar.ics"
	AddrSeparator = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeJSON            = "application/json; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty = "configuration error: local path is empty"
	ErrWebURLEmpty    = "configuration error: feed URL is empty"
	ErrFetcherMissing = "internal error: network fetcher is not initialized"
	ErrModeUnsupport  = "configuration error: unsupported source mode"
	ErrServerStartup  = "relay startup failed"
	ErrServerShutdown = "relay shutdown failed"
	ErrPortRequired   = "relay port is required"
	ErrInvalidURL     = "invalid URL structure"
	ErrProtocol       = "unsupported protocol scheme (http/https only)"
	ErrFeedFetch      = "failed to fetch feed"
	ErrFeedDecode     = "failed to decode feed document"
	ErrFeedNotOK      = "feed reported failure status"
	ErrICalDecode     = "failed to decode iCalendar data"
	ErrICalEncode     = "failed to encode iCalendar data"
	ErrDateParse      = "unable to parse date"
	ErrLogFile        = "failed to open log file"
	ErrCacheDir       = "could not determine user cache dir"
	ErrConfigDir      = "could not determine user config dir"
	ErrCreateDir      = "could not create app directory"
	ErrAppFailed      = "application failed unexpectedly"
	ErrWriteResp      = "failed to write response body"
	ErrLocalesAccess  = "failed to access embedded locales"
	ErrLocaleLoad     = "failed to load locale file"
	ErrSettingsLoad   = "failed to load settings file"
	ErrSettingsWrite  = "failed to write settings file"
	ErrStoreOpen      = "failed to open todo store"
	ErrStoreQuery     = "todo store query failed"
	ErrTodoMissing    = "todo not found"
	ErrPasscodeFormat = "passcode must be exactly 3 digits"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults
// -----------------------------------------------------------------------------

const (
	FallbackBirthday    = "Birthday: %s"
	FallbackBirthdayAge = "Birthday: %s (%d)"
	FallbackName        = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when the merged
	// collection is empty. Using a constant avoids hardcoded magic strings in
	// the encoder logic.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	TitleStartupError = "Startup Error"
	TitleRefreshError = "Refresh Error"

	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgRefreshReq      = "Refresh requested"
	MsgRefreshStart    = "Feed refresh started"
	MsgRefreshOK       = "Feed refresh successful"
	MsgStaleKept       = "Refresh failed, keeping previous appointments"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgUpdateInterval  = "Updating refresh interval"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgSkippedEvent    = "Skipping malformed calendar event"
	MsgContactsSkipped = "Contacts merge skipped"
	MsgAppStarting     = "Starting application"
	MsgServerListen    = "Relay listening"
	MsgServerStop      = "Shutting down relay..."
	MsgCacheUpdated    = "Relay cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgBdayToday       = "Birthday found today"
	MsgGateUnlock      = "Panel unlocked"
	MsgGateMismatch    = "Passcode mismatch"
	MsgGateCleared     = "Entry cleared"
	MsgGateRestored    = "Unlock restored from session"
	MsgBadPasscodeCfg  = "Configured passcode invalid, using factory default"
	MsgSettingsCreated = "Settings file created with defaults"
	MsgSettingsLoaded  = "Settings loaded"
	MsgStoreReady      = "Todo store opened"
	MsgTodoToggled     = "Todo toggled"
	MsgTodoAdded       = "Todo added"
	MsgTodoDeleted     = "Todo deleted"
	MsgTabSelected     = "Tab selected"

	PlaceholderURL = "https://..."
	PlaceholderDue = "2006-01-02 15:04"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyItems     = "items"
	LogKeyBirthdays = "birthdays_merged"
	LogKeyToday     = "items_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyID        = "id"
	LogKeyPath      = "path"
	LogKeyTab       = "tab"
	LogKeyDB        = "db_path"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "build_date"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompUISet    = "ui_settings"
	CompEngine   = "engine"
	CompRelay    = "relay"
	CompFetcher  = "fetcher"
	CompWorker   = "worker"
	CompMain     = "main"
	CompI18n     = "i18n"
	CompGate     = "gate"
	CompStore    = "store"
	CompSettings = "settings"
)
