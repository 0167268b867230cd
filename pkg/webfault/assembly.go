// assembly.go renders build metadata for the modules linked into the running
// process, including the legacy "build number as date" heuristic.

package webfault

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"
)

// moduleDescriptor describes one linked module.
type moduleDescriptor struct {
	Path      string
	Version   string
	BuildDate time.Time
}

// fullName returns the module's full identification.
func (m moduleDescriptor) fullName() string {
	if m.Version == "" {
		return m.Path
	}
	return m.Path + "@" + m.Version
}

// parseVersionComponents extracts up to four numeric components from a
// version string such as "v1.2.730.40" or "1.0.0". Missing or non-numeric
// components are zero.
func parseVersionComponents(version string) [4]int {
	var comp [4]int
	version = strings.TrimPrefix(version, "v")
	if i := strings.IndexAny(version, "-+"); i >= 0 {
		version = version[:i]
	}
	for i, part := range strings.SplitN(version, ".", 4) {
		if i >= 4 {
			break
		}
		n := 0
		for _, ch := range part {
			if ch < '0' || ch > '9' {
				break
			}
			n = n*10 + int(ch-'0')
		}
		comp[i] = n
	}
	return comp
}

// isZeroVersion reports whether every component is zero.
func isZeroVersion(comp [4]int) bool {
	return comp == [4]int{}
}

// buildDateFromVersion computes a build date from the version's third
// component (days) and fourth component (2-second ticks), offset from
// 2000-01-01 in loc and adjusted one hour forward when the computed date
// falls in daylight-saving time. When the result is in the future, the day
// count is below 730, or the tick count is zero, the heuristic is considered
// unreliable and fileTime is returned instead.
func buildDateFromVersion(comp [4]int, fileTime, now time.Time, loc *time.Location) time.Time {
	days := comp[2]
	ticks := comp[3]

	epoch := time.Date(2000, time.January, 1, 0, 0, 0, 0, loc)
	computed := epoch.AddDate(0, 0, days).Add(time.Duration(ticks) * 2 * time.Second)
	if computed.IsDST() {
		computed = computed.Add(time.Hour)
	}

	if computed.After(now) || days < 730 || ticks == 0 {
		return fileTime
	}
	return computed
}

// loadedModules lists the modules linked into the running binary, with build
// dates resolved via the version heuristic and the executable's modification
// time as fallback.
func loadedModules() []moduleDescriptor {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	fileTime := executableTime()
	now := time.Now()

	var out []moduleDescriptor
	add := func(m debug.Module) {
		comp := parseVersionComponents(m.Version)
		out = append(out, moduleDescriptor{
			Path:      m.Path,
			Version:   m.Version,
			BuildDate: buildDateFromVersion(comp, fileTime, now, time.Local),
		})
	}
	add(info.Main)
	for _, dep := range info.Deps {
		if dep != nil {
			add(*dep)
		}
	}
	return out
}

// renderAssemblyInfo renders build metadata for the module that originated
// the error. When the originating module is unknown or not linked in, every
// linked module with a non-zero version is rendered as a table instead.
func renderAssemblyInfo(originModule string) string {
	modules := loadedModules()
	if len(modules) == 0 {
		return "(no build information available)\n"
	}

	if originModule != "" {
		for _, m := range modules {
			// Module paths are prefixes of their package paths.
			if m.Path == originModule || strings.HasPrefix(originModule, m.Path+"/") {
				return renderModule(m)
			}
		}
	}

	var b strings.Builder
	for _, m := range modules {
		if isZeroVersion(parseVersionComponents(m.Version)) {
			continue
		}
		b.WriteString(renderModule(m))
	}
	if b.Len() == 0 {
		return "(no versioned modules)\n"
	}
	return b.String()
}

// renderModule renders the four metadata fields of one module.
func renderModule(m moduleDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-30s %s\n", "Assembly Codebase", m.Path)
	fmt.Fprintf(&b, "%-30s %s\n", "Assembly Full Name", m.fullName())
	fmt.Fprintf(&b, "%-30s %s\n", "Assembly Version", m.Version)
	fmt.Fprintf(&b, "%-30s %s\n", "Assembly Build Date", renderTime(m.BuildDate))
	return b.String()
}

// renderTime renders a timestamp, tolerating the zero value.
func renderTime(t time.Time) string {
	if t.IsZero() {
		return "(unknown)"
	}
	return t.Format("2006-01-02 15:04:05")
}

// executableTime returns the last-write timestamp of the running executable,
// zero when it cannot be resolved.
func executableTime() time.Time {
	path, err := os.Executable()
	if err != nil {
		return time.Time{}
	}
	fi, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return fi.ModTime()
}
