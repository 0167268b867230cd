package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oversite/web-fault-observe/pkg/webfault"
)

func TestMapSource_TypedGetters(t *testing.T) {
	src := NewMapSource("/srv/app", map[string]string{
		"AppName":   "billing",
		"LogToFile": "true",
		"SystemID":  "7",
		"BadBool":   "not-a-bool",
		"BadInt":    "seven",
	})

	assert.Equal(t, "billing", src.GetString("AppName", "fallback"))
	assert.Equal(t, "fallback", src.GetString("Missing", "fallback"))

	assert.True(t, src.GetBool("LogToFile", false))
	assert.True(t, src.GetBool("Missing", true))
	assert.True(t, src.GetBool("BadBool", true), "unparseable values fall back to the default")

	assert.Equal(t, 7, src.GetInt("SystemID", 0))
	assert.Equal(t, 42, src.GetInt("Missing", 42))
	assert.Equal(t, 42, src.GetInt("BadInt", 42))
}

func TestMapSource_GetPath(t *testing.T) {
	src := NewMapSource("/srv/app", map[string]string{
		"TildeRelative": "~/logs",
		"Relative":      "logs/app.err",
		"Absolute":      "/abs/logs",
		"Empty":         "",
	})

	assert.Equal(t, "/srv/app/logs", src.GetPath("TildeRelative"))
	assert.Equal(t, "/srv/app/logs/app.err", src.GetPath("Relative"))
	assert.Equal(t, "/abs/logs", src.GetPath("Absolute"))
	assert.Equal(t, "", src.GetPath("Empty"))
	assert.Equal(t, "", src.GetPath("Missing"))
}

func TestYAMLSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webfault.yaml")
	content := []byte(`
AppName: billing
LogToFile: true
SystemID: 7
LogFileName: ~/logs/app.err
IgnoreRegExp: "timeout|connection reset"
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	src, err := NewYAMLSource(path, "/srv/app")
	require.NoError(t, err)

	settings := webfault.LoadSettings(src)
	assert.Equal(t, "billing", settings.AppName)
	assert.True(t, settings.LogToFile)
	assert.Equal(t, 7, settings.SystemID)
	assert.Equal(t, "/srv/app/logs/app.err", settings.LogFileName)
	assert.Equal(t, "timeout|connection reset", settings.IgnoreRegExp)
	// Keys the file lacks keep their defaults.
	assert.True(t, settings.LogToUI)
	assert.True(t, settings.IgnoreDebugErrors)
}

func TestYAMLSource_MissingFile(t *testing.T) {
	_, err := NewYAMLSource(filepath.Join(t.TempDir(), "absent.yaml"), "/srv/app")
	assert.Error(t, err)
}

func TestYAMLSource_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not yaml"), 0o644))

	_, err := NewYAMLSource(path, "/srv/app")
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("WEBFAULT_APPNAME", "billing")
	t.Setenv("WEBFAULT_LOGTOEMAIL", "true")
	t.Setenv("WEBFAULT_EMAILTOADDRESSLIST", "a@example.com;b@example.com")
	t.Setenv("WEBFAULT_LOGFILENAME", "~/logs/app.err")
	t.Setenv("WEBFAULT_SYSTEMID", "3")

	settings, err := FromEnv("WEBFAULT", "/srv/app")
	require.NoError(t, err)

	assert.Equal(t, "billing", settings.AppName)
	assert.True(t, settings.LogToEmail)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, settings.Recipients())
	assert.Equal(t, "/srv/app/logs/app.err", settings.LogFileName)
	assert.Equal(t, 3, settings.SystemID)
	// Defaults still apply to unset variables.
	assert.True(t, settings.LogToUI)
	assert.True(t, settings.IgnoreDebugErrors)
}
