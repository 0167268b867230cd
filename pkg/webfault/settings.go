// settings.go defines the typed, defaulted configuration for the pipeline
// and its load-once wrapper around a ConfigurationSource.

package webfault

import (
	"strings"
	"sync"
)

// ConfigurationSource resolves named settings with typed defaults. It is the
// boundary to the configuration-file loader; implementations live in the
// config package.
type ConfigurationSource interface {
	// GetString returns the named value, or def when absent.
	GetString(key, def string) string

	// GetBool returns the named value, or def when absent or unparseable.
	GetBool(key string, def bool) bool

	// GetInt returns the named value, or def when absent or unparseable.
	GetInt(key string, def int) int

	// GetPath returns the named value resolved as a path: a leading "~/"
	// prefix is stripped and relative paths are resolved against the
	// application base directory.
	GetPath(key string) string
}

// Recognized configuration keys.
const (
	KeyLogToEventLog        = "LogToEventLog"
	KeyLogToFile            = "LogToFile"
	KeyLogToEmail           = "LogToEmail"
	KeyLogToUI              = "LogToUI"
	KeyLogToSQL             = "LogToSQL"
	KeyLogFileName          = "LogFileName"
	KeyIgnoreRegExp         = "IgnoreRegExp"
	KeyIgnoreDebugErrors    = "IgnoreDebugErrors"
	KeyIgnoreHTTPErrors     = "IgnoreHttpErrors"
	KeyEmailServer          = "EmailServer"
	KeyEmailFromAddress     = "EmailFromAddress"
	KeyEmailAddressFromName = "EmailAddressFromName"
	KeyEmailToAddressList   = "EmailToAddressList"
	KeyAppName              = "AppName"
	KeyContactInfo          = "ContactInfo"
	KeySystemID             = "SystemID"
	KeyLocationID           = "LocationID"
	KeyApplicationID        = "ApplicationID"
	KeyReportedBy           = "ReportedBy"
	KeyConnectionString     = "ConnectionString"
)

// Settings is the process-wide pipeline configuration. Read-only after load.
type Settings struct {
	// Sink enablement
	LogToEventLog bool
	LogToFile     bool
	LogToEmail    bool
	LogToUI       bool
	LogToSQL      bool

	// File sink
	LogFileName string

	// Suppression
	IgnoreRegExp      string
	IgnoreDebugErrors bool
	IgnoreHTTPErrors  bool

	// Email sink
	EmailServer          string
	EmailFromAddress     string
	EmailAddressFromName string
	EmailToAddressList   string

	// Report identity fields
	AppName       string
	ContactInfo   string
	SystemID      int
	LocationID    int
	ApplicationID int
	ReportedBy    string

	// Database sink
	ConnectionString string
}

// DefaultSettings returns the documented defaults, used for every key the
// backing source lacks or fails to parse.
func DefaultSettings() *Settings {
	return &Settings{
		LogToUI:           true,
		IgnoreDebugErrors: true,
	}
}

// LoadSettings resolves every recognized key against the source, falling
// back to the documented default per key.
func LoadSettings(src ConfigurationSource) *Settings {
	d := DefaultSettings()
	if src == nil {
		return d
	}
	return &Settings{
		LogToEventLog: src.GetBool(KeyLogToEventLog, d.LogToEventLog),
		LogToFile:     src.GetBool(KeyLogToFile, d.LogToFile),
		LogToEmail:    src.GetBool(KeyLogToEmail, d.LogToEmail),
		LogToUI:       src.GetBool(KeyLogToUI, d.LogToUI),
		LogToSQL:      src.GetBool(KeyLogToSQL, d.LogToSQL),

		LogFileName: src.GetPath(KeyLogFileName),

		IgnoreRegExp:      src.GetString(KeyIgnoreRegExp, d.IgnoreRegExp),
		IgnoreDebugErrors: src.GetBool(KeyIgnoreDebugErrors, d.IgnoreDebugErrors),
		IgnoreHTTPErrors:  src.GetBool(KeyIgnoreHTTPErrors, d.IgnoreHTTPErrors),

		EmailServer:          src.GetString(KeyEmailServer, d.EmailServer),
		EmailFromAddress:     src.GetString(KeyEmailFromAddress, d.EmailFromAddress),
		EmailAddressFromName: src.GetString(KeyEmailAddressFromName, d.EmailAddressFromName),
		EmailToAddressList:   src.GetString(KeyEmailToAddressList, d.EmailToAddressList),

		AppName:       src.GetString(KeyAppName, d.AppName),
		ContactInfo:   src.GetString(KeyContactInfo, d.ContactInfo),
		SystemID:      src.GetInt(KeySystemID, d.SystemID),
		LocationID:    src.GetInt(KeyLocationID, d.LocationID),
		ApplicationID: src.GetInt(KeyApplicationID, d.ApplicationID),
		ReportedBy:    src.GetString(KeyReportedBy, d.ReportedBy),

		ConnectionString: src.GetString(KeyConnectionString, d.ConnectionString),
	}
}

// Recipients splits the ';'-separated email recipient list, dropping empty
// elements.
func (s *Settings) Recipients() []string {
	var out []string
	for _, addr := range strings.Split(s.EmailToAddressList, ";") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// lazySettings loads settings from a source at most once, even under
// concurrent first use.
type lazySettings struct {
	src    ConfigurationSource
	once   sync.Once
	loaded *Settings
}

// get returns the loaded settings, performing the load on first call.
func (l *lazySettings) get() *Settings {
	l.once.Do(func() {
		l.loaded = LoadSettings(l.src)
	})
	return l.loaded
}
