// env.go loads Settings directly from environment variables.

package config

import (
	"github.com/kelseyhightower/envconfig"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

// envSettings mirrors webfault.Settings for envconfig decoding. With the
// "WEBFAULT" prefix, LogToFile reads from WEBFAULT_LOGTOFILE and so on.
type envSettings struct {
	LogToEventLog bool   `envconfig:"LOGTOEVENTLOG" default:"false"`
	LogToFile     bool   `envconfig:"LOGTOFILE" default:"false"`
	LogToEmail    bool   `envconfig:"LOGTOEMAIL" default:"false"`
	LogToUI       bool   `envconfig:"LOGTOUI" default:"true"`
	LogToSQL      bool   `envconfig:"LOGTOSQL" default:"false"`
	LogFileName   string `envconfig:"LOGFILENAME" default:""`

	IgnoreRegExp      string `envconfig:"IGNOREREGEXP" default:""`
	IgnoreDebugErrors bool   `envconfig:"IGNOREDEBUGERRORS" default:"true"`
	IgnoreHTTPErrors  bool   `envconfig:"IGNOREHTTPERRORS" default:"false"`

	EmailServer          string `envconfig:"EMAILSERVER" default:""`
	EmailFromAddress     string `envconfig:"EMAILFROMADDRESS" default:""`
	EmailAddressFromName string `envconfig:"EMAILADDRESSFROMNAME" default:""`
	EmailToAddressList   string `envconfig:"EMAILTOADDRESSLIST" default:""`

	AppName       string `envconfig:"APPNAME" default:""`
	ContactInfo   string `envconfig:"CONTACTINFO" default:""`
	SystemID      int    `envconfig:"SYSTEMID" default:"0"`
	LocationID    int    `envconfig:"LOCATIONID" default:"0"`
	ApplicationID int    `envconfig:"APPLICATIONID" default:"0"`
	ReportedBy    string `envconfig:"REPORTEDBY" default:""`

	ConnectionString string `envconfig:"CONNECTIONSTRING" default:""`
}

// FromEnv decodes Settings from prefixed environment variables. The log file
// path is resolved against baseDir with the usual rules.
func FromEnv(prefix, baseDir string) (*webfault.Settings, error) {
	if prefix == "" {
		prefix = "WEBFAULT"
	}
	var e envSettings
	if err := envconfig.Process(prefix, &e); err != nil {
		return nil, err
	}
	return &webfault.Settings{
		LogToEventLog: e.LogToEventLog,
		LogToFile:     e.LogToFile,
		LogToEmail:    e.LogToEmail,
		LogToUI:       e.LogToUI,
		LogToSQL:      e.LogToSQL,
		LogFileName:   ResolvePath(baseDir, e.LogFileName),

		IgnoreRegExp:      e.IgnoreRegExp,
		IgnoreDebugErrors: e.IgnoreDebugErrors,
		IgnoreHTTPErrors:  e.IgnoreHTTPErrors,

		EmailServer:          e.EmailServer,
		EmailFromAddress:     e.EmailFromAddress,
		EmailAddressFromName: e.EmailAddressFromName,
		EmailToAddressList:   e.EmailToAddressList,

		AppName:       e.AppName,
		ContactInfo:   e.ContactInfo,
		SystemID:      e.SystemID,
		LocationID:    e.LocationID,
		ApplicationID: e.ApplicationID,
		ReportedBy:    e.ReportedBy,

		ConnectionString: e.ConnectionString,
	}, nil
}
