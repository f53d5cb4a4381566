// Package pofile implements a line-oriented scanner over gettext PO
// catalogs. It recognizes singular records (msgid + msgstr) and plural
// records (msgid + msgid_plural + msgstr[0] + msgstr[1]), translates the
// ones with empty translation slots, and rewrites the affected lines in
// place. It is deliberately not a grammar-based PO parser: anything that
// does not match a record shape is passed through untouched.
package pofile

import (
	"context"
	"fmt"
	"strings"

	"github.com/potools/potranslator/langname"
)

// Recognized record line prefixes.
const (
	msgidPrefix  = "msgid "
	msgstrPrefix = "msgstr"
	pluralPrefix = "msgid_plural"
	slot0Prefix  = "msgstr[0]"
)

// MalformedLineError reports a record line without a well-formed quoted
// payload. It aborts processing of the whole file.
type MalformedLineError struct {
	Line string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed PO line: %s", e.Line)
}

// Translator issues one translation request per string.
type Translator interface {
	Send(ctx context.Context, instructions, input string) (string, error)
}

// Options control a catalog pass.
type Options struct {
	// Force retranslates every well-formed record, ignoring existing
	// translations.
	Force bool
	// OnChange, if set, is invoked once per translated record.
	OnChange func(msgid, translated string)
}

// TranslateCatalog walks the catalog's lines with a cursor, translating
// records that need it, and returns the (possibly modified) content and
// the number of records changed. Counts are per record, not per slot.
func TranslateCatalog(ctx context.Context, content, lang string, tr Translator, opts Options) (string, int, error) {
	lines := strings.Split(content, "\n")
	changes := 0

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], msgidPrefix) {
			i++
			continue
		}

		done, err := translateSingular(ctx, lines, i, lang, tr, opts)
		if err != nil {
			return "", 0, err
		}
		if done {
			changes++
			i += 2
			continue
		}

		done, err = translatePlural(ctx, lines, i, lang, tr, opts)
		if err != nil {
			return "", 0, err
		}
		if done {
			changes++
			i += 4
			continue
		}

		// Record complete, or the shape doesn't match expectations.
		i++
	}

	return strings.Join(lines, "\n"), changes, nil
}

// translateSingular handles a msgid line followed by a msgstr line.
// Returns true only when a translation was written.
func translateSingular(ctx context.Context, lines []string, i int, lang string, tr Translator, opts Options) (bool, error) {
	if i+1 >= len(lines) || !strings.HasPrefix(lines[i+1], msgstrPrefix) {
		return false, nil
	}

	msgid, err := ExtractString(lines[i])
	if err != nil {
		return false, err
	}
	msgstr, err := ExtractString(lines[i+1])
	if err != nil {
		return false, err
	}

	if msgstr != "" && !opts.Force {
		return false, nil
	}

	translated, err := translateMsg(ctx, tr, msgid, lang)
	if err != nil {
		return false, err
	}

	lines[i+1] = fmt.Sprintf("msgstr %q", translated)
	if opts.OnChange != nil {
		opts.OnChange(msgid, translated)
	}
	return true, nil
}

// translatePlural handles msgid + msgid_plural + msgstr[0] + msgstr[1].
// The plural key is translated once and written into both slots; the two
// slots are not independently pluralized.
func translatePlural(ctx context.Context, lines []string, i int, lang string, tr Translator, opts Options) (bool, error) {
	if i+3 >= len(lines) {
		return false, nil
	}
	if !strings.HasPrefix(lines[i+1], pluralPrefix) || !strings.HasPrefix(lines[i+2], slot0Prefix) {
		return false, nil
	}

	msgidPlural, err := ExtractString(lines[i+1])
	if err != nil {
		return false, err
	}
	slot0, err := ExtractString(lines[i+2])
	if err != nil {
		return false, err
	}
	slot1, err := ExtractString(lines[i+3])
	if err != nil {
		return false, err
	}

	if slot0 != "" && slot1 != "" && !opts.Force {
		return false, nil
	}

	translated, err := translateMsg(ctx, tr, msgidPlural, lang)
	if err != nil {
		return false, err
	}

	lines[i+2] = fmt.Sprintf("msgstr[0] %q", translated)
	lines[i+3] = fmt.Sprintf("msgstr[1] %q", translated)
	if opts.OnChange != nil {
		opts.OnChange(msgidPlural, translated)
	}
	return true, nil
}

// ScanMissing walks the catalog without any network calls and returns
// how many well-formed records still need translation, plus the total
// record count.
func ScanMissing(content string) (missing, total int, err error) {
	lines := strings.Split(content, "\n")

	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(lines[i], msgidPrefix) {
			i++
			continue
		}

		switch {
		case i+1 < len(lines) && strings.HasPrefix(lines[i+1], msgstrPrefix):
			msgstr, err := ExtractString(lines[i+1])
			if err != nil {
				return 0, 0, err
			}
			total++
			if msgstr == "" {
				missing++
			}
			i += 2

		case i+3 < len(lines) && strings.HasPrefix(lines[i+1], pluralPrefix) &&
			strings.HasPrefix(lines[i+2], slot0Prefix):
			slot0, err := ExtractString(lines[i+2])
			if err != nil {
				return 0, 0, err
			}
			slot1, err := ExtractString(lines[i+3])
			if err != nil {
				return 0, 0, err
			}
			total++
			if slot0 == "" || slot1 == "" {
				missing++
			}
			i += 4

		default:
			i++
		}
	}

	return missing, total, nil
}

// ExtractString returns the payload between the first and last double
// quote of a record line, e.g. `msgid "Hello"` yields `Hello`.
func ExtractString(line string) (string, error) {
	start := strings.IndexByte(line, '"')
	end := strings.LastIndexByte(line, '"')
	if start < 0 || end <= start {
		return "", &MalformedLineError{Line: line}
	}
	return line[start+1 : end], nil
}

// translateMsg sends one record's key text to the translator with a
// language-specific instruction string.
func translateMsg(ctx context.Context, tr Translator, msg, lang string) (string, error) {
	language := langname.FromCode(lang)
	return tr.Send(ctx, instructionsFor(language), buildPrompt(msg, language))
}

func instructionsFor(language string) string {
	return fmt.Sprintf("You are a professional translator for gettext messages. "+
		"You will translate the message to %s. You must preserve placeholders, "+
		"written in the format `%%{placeholder}`.", language)
}

func buildPrompt(input, language string) string {
	return fmt.Sprintf("Translate this gettext message to %s, preserving placeholders like `%%{...}`.\n\n"+
		"Important:\n"+
		"- If it's already in %s, just return the original text.\n"+
		"- Just return the translation, do not add any other text or comments.\n\n"+
		"Text to translate:\n\"%s\"", language, language, input)
}
