package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ideamans/go-l10n"

	"github.com/ericlevine/zxscan"
)

func TestConsoleLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	l := NewWriter(zxscan.LevelInfo, &out, &errOut)
	l.Debug("hidden %d", 1)
	l.Info("shown %d", 2)
	l.Warn("warned %d", 3)
	l.Error("failed %d", 4)

	if got := out.String(); got != "shown 2\n" {
		t.Errorf("stdout = %q", got)
	}
	if got := errOut.String(); got != "warned 3\nfailed 4\n" {
		t.Errorf("stderr = %q", got)
	}
}

func TestConsoleComponent(t *testing.T) {
	var out bytes.Buffer
	l := NewWriter(zxscan.LevelDebug, &out, &out).WithComponent("reader")
	l.Debug("frame %d", 7)
	if got := out.String(); !strings.HasPrefix(got, "[reader] frame 7") {
		t.Errorf("output = %q", got)
	}
}

func TestNewQuiet(t *testing.T) {
	if _, ok := New(zxscan.LevelQuiet).(zxscan.NopLogger); !ok {
		t.Error("quiet level did not yield NopLogger")
	}
	if c, ok := New(zxscan.LevelWarn).(*Console); !ok || c.Level() != zxscan.LevelWarn {
		t.Error("warn level did not yield a Console")
	}
}

func TestChineseArgumentOrder(t *testing.T) {
	l10n.ForceLanguage("zh")
	defer l10n.ResetLanguage()

	var out bytes.Buffer
	NewWriter(zxscan.LevelDebug, &out, &out).Debug("Scanning %d files with %d workers", 12, 3)
	if got, want := out.String(), "使用 3 个工作线程扫描 12 个文件\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
