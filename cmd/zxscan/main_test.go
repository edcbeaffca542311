package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"zxscan"}, args...))
	return out.String(), err
}

func TestGenerateThenScan(t *testing.T) {
	dir := t.TempDir()
	qr := filepath.Join(dir, "qr.png")
	bars := filepath.Join(dir, "bars.png")

	if _, err := runApp(t, "generate", "-o", qr, "qr", "cli round trip"); err != nil {
		t.Fatal(err)
	}
	if _, err := runApp(t, "generate", "-o", bars, "--caption", "C128", "code_128", "C128"); err != nil {
		t.Fatal(err)
	}

	out, err := runApp(t, "scan", "--log-level", "quiet", "--jobs", "2", qr, bars)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, qr+": [QR_CODE] cli round trip\n") {
		t.Errorf("missing QR line in %q", out)
	}
	if !strings.Contains(out, bars+": [CODE_128] C128\n") {
		t.Errorf("missing Code 128 line in %q", out)
	}

	out, err = runApp(t, "scan", "--qr", "--log-level", "quiet", qr)
	if err != nil {
		t.Fatal(err)
	}
	if out != "[QR_CODE] cli round trip\n" {
		t.Errorf("single file output = %q", out)
	}
}

func TestScanFailures(t *testing.T) {
	_, err := runApp(t, "scan", "--log-level", "quiet", filepath.Join(t.TempDir(), "missing.png"))
	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Errorf("missing file err = %v", err)
	}

	_, err = runApp(t, "scan")
	if !errors.As(err, &exit) || exit.ExitCode() != 2 {
		t.Errorf("no args err = %v", err)
	}

	_, err = runApp(t, "generate", "-o", filepath.Join(t.TempDir(), "x.png"), "hologram", "x")
	if !errors.As(err, &exit) || exit.ExitCode() != 2 {
		t.Errorf("bad format err = %v", err)
	}
}

func TestGeneratePDF417ASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pdf417.png")
	out, err := runApp(t, "generate", "-o", path, "--ascii", "pdf_417", "cli pdf417")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) < 12 || !strings.Contains(out, "██") {
		t.Fatalf("ascii output has %d lines", len(lines))
	}

	out, err = runApp(t, "scan", "--any", "--log-level", "quiet", path)
	if err != nil {
		t.Fatal(err)
	}
	if out != "[PDF_417] cli pdf417\n" {
		t.Errorf("scan output = %q", out)
	}
}
