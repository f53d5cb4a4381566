package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

// capture redirects Output into a buffer with colors disabled.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()

	prevOut := Output
	prevNoColor := color.NoColor
	color.NoColor = true

	var buf bytes.Buffer
	Output = &buf

	t.Cleanup(func() {
		Output = prevOut
		color.NoColor = prevNoColor
	})
	return &buf
}

func TestChange(t *testing.T) {
	buf := capture(t)

	Change("Hola", "Hello", "de", false)
	out := buf.String()

	if !strings.Contains(out, `[DE] "Hola" ➜ "Hello"`) {
		t.Errorf("unexpected change line: %q", out)
	}

	buf.Reset()
	Change("Hola", "Hello", "de", true)
	if !strings.Contains(buf.String(), "🔍") {
		t.Errorf("dry-run change should use the preview marker: %q", buf.String())
	}
}

func TestFileSummaries(t *testing.T) {
	buf := capture(t)

	FileSuccess("de", 3, "po/de/app.po", true)
	if !strings.Contains(buf.String(), "would update 3 entries in po/de/app.po") {
		t.Errorf("dry-run summary: %q", buf.String())
	}

	buf.Reset()
	FileSuccess("de", 3, "po/de/app.po", false)
	if !strings.Contains(buf.String(), "updated 3 entries in po/de/app.po") {
		t.Errorf("write summary: %q", buf.String())
	}

	buf.Reset()
	NoChanges("de", "po/de/app.po")
	if !strings.Contains(buf.String(), "de has no missing translations in po/de/app.po") {
		t.Errorf("no-changes summary: %q", buf.String())
	}
}

func TestRetry(t *testing.T) {
	buf := capture(t)

	Retry(2, 5, "connection refused")
	if !strings.Contains(buf.String(), "Retry 2/5 after error: connection refused") {
		t.Errorf("retry line: %q", buf.String())
	}
}

func TestDiff(t *testing.T) {
	buf := capture(t)

	original := "msgid \"Hi\"\nmsgstr \"\"\n"
	modified := "msgid \"Hi\"\nmsgstr \"Hallo\"\n"
	Diff("po/de/app.po", original, modified)

	out := buf.String()
	if !strings.Contains(out, "Diff for po/de/app.po") {
		t.Errorf("missing diff header: %q", out)
	}
	if !strings.Contains(out, "Line 2:") {
		t.Errorf("missing changed line number: %q", out)
	}
	if !strings.Contains(out, `- msgstr ""`) || !strings.Contains(out, `+ msgstr "Hallo"`) {
		t.Errorf("missing diff body: %q", out)
	}
	if strings.Contains(out, "Line 1:") {
		t.Errorf("unchanged line reported: %q", out)
	}
}
