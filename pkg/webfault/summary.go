// summary.go renders the user-facing delivery summary for interactive
// failure pages.

package webfault

import (
	"fmt"
	"strings"
)

// RenderSummary produces a bullet list stating, per attempted sink, whether
// delivery succeeded and where, or the captured error message, followed by
// the full detailed report.
func RenderSummary(report *Report, outcome DeliveryOutcome, settings *Settings) string {
	var b strings.Builder

	b.WriteString("The following error was encountered:\n")
	b.WriteString(report.Title())
	b.WriteString("\n\n")

	if len(outcome) == 0 {
		b.WriteString("* no delivery channels were enabled\n")
	}
	for _, name := range []string{ChannelEventLog, ChannelFile, ChannelEmail, ChannelDatabase} {
		err, attempted := outcome[name]
		if !attempted {
			continue
		}
		b.WriteString("* ")
		b.WriteString(summaryLine(name, err, settings))
		b.WriteString("\n")
	}
	for name, err := range outcome {
		switch name {
		case ChannelEventLog, ChannelFile, ChannelEmail, ChannelDatabase:
			continue
		}
		b.WriteString("* ")
		b.WriteString(summaryLine(name, err, settings))
		b.WriteString("\n")
	}

	if settings.ContactInfo != "" {
		fmt.Fprintf(&b, "\nFor assistance, contact %s.\n", settings.ContactInfo)
	}

	b.WriteString("\nDetailed error information follows:\n\n")
	b.WriteString(report.Text)
	return b.String()
}

// summaryLine renders one sink's bullet: success with its destination, or
// the failure message.
func summaryLine(name string, err error, settings *Settings) string {
	if err != nil {
		return fmt.Sprintf("%s: failed (%s)", name, err.Error())
	}
	switch name {
	case ChannelEventLog:
		return "the error was written to the event log"
	case ChannelFile:
		if settings.LogFileName != "" {
			return fmt.Sprintf("the error was appended to %s", settings.LogFileName)
		}
		return "the error was appended to the log file"
	case ChannelEmail:
		if recipients := settings.Recipients(); len(recipients) > 0 {
			return fmt.Sprintf("the error was emailed to %s", strings.Join(recipients, "; "))
		}
		return "no email recipients are configured; nothing was sent"
	case ChannelDatabase:
		return "the error was recorded in the database"
	default:
		return fmt.Sprintf("%s: delivered", name)
	}
}
