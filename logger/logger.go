// Package logger implements the tool's timestamped, colored console output:
// per-string change lines, per-file summaries, retry notices, and dry-run
// diffs. Everything goes to Output (stderr by default) so that the scanned
// files' content never mixes with diagnostics on stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Output is the destination for all log lines. Swapped out in tests.
var Output io.Writer = os.Stderr

var (
	dim     = color.New(color.Faint).SprintFunc()
	red     = color.New(color.FgRed).SprintFunc()
	green   = color.New(color.FgGreen).SprintFunc()
	yellow  = color.New(color.FgYellow).SprintFunc()
	blue    = color.New(color.FgBlue).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
)

func timestamp() string {
	return time.Now().Format("[2006-01-02 15:04:05]")
}

// Change logs a single translated string.
func Change(original, translated, lang string, dryRun bool) {
	marker := yellow("✏")
	if dryRun {
		marker = cyan("🔍")
	}
	fmt.Fprintf(Output, "%s %s [%s] %q ➜ %q\n",
		dim(timestamp()), marker, blue(strings.ToUpper(lang)), original, translated)
}

// FileSuccess logs a per-file summary after entries were translated.
func FileSuccess(lang string, count int, path string, dryRun bool) {
	if dryRun {
		fmt.Fprintf(Output, "%s %s %s → would update %d entries in %s\n",
			dim(timestamp()), cyan("💡"), strings.ToUpper(lang), count, path)
		return
	}
	fmt.Fprintf(Output, "%s %s %s → updated %d entries in %s\n",
		dim(timestamp()), green("✅"), strings.ToUpper(lang), count, path)
}

// NoChanges logs that a file needed no translation.
func NoChanges(lang, path string) {
	fmt.Fprintf(Output, "%s %s %s has no missing translations in %s\n",
		dim(timestamp()), green("🟢"), lang, path)
}

// Retry logs one backoff attempt of the translation client.
func Retry(attempt, max int, errText string) {
	fmt.Fprintf(Output, "%s %s Retry %d/%d after error: %s\n",
		dim(timestamp()), yellow("🔁"), attempt, max, errText)
}

// Diff prints the changed lines between the original and modified content.
// Lines are compared pairwise; the scanners never add or remove lines.
func Diff(path, original, modified string) {
	fmt.Fprintf(Output, "%s %s Diff for %s:\n", dim(timestamp()), blue("📝"), path)

	oldLines := strings.Split(original, "\n")
	newLines := strings.Split(modified, "\n")
	n := len(oldLines)
	if len(newLines) < n {
		n = len(newLines)
	}

	for i := 0; i < n; i++ {
		if oldLines[i] == newLines[i] {
			continue
		}
		fmt.Fprintf(Output, "  %s Line %d:\n", magenta("🔄"), i+1)
		fmt.Fprintf(Output, "    %s\n", red("- "+oldLines[i]))
		fmt.Fprintf(Output, "    %s\n", green("+ "+newLines[i]))
	}

	fmt.Fprintln(Output)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	fmt.Fprintf(Output, "%s %s\n", blue("[INFO]"), fmt.Sprintf(format, args...))
}

// Warn logs a non-fatal condition, e.g. a missing language directory.
func Warn(format string, args ...any) {
	fmt.Fprintf(Output, "%s %s\n", yellow("[WARN]"), fmt.Sprintf(format, args...))
}

// Error logs a fatal condition before the process exits non-zero.
func Error(format string, args ...any) {
	fmt.Fprintf(Output, "%s %s\n", red("[ERROR]"), fmt.Sprintf(format, args...))
}
