// Package inline extracts quoted first arguments of gettext() calls from
// arbitrary source text and translates them to English in place.
package inline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/potools/potranslator/langname"
)

// gettextPattern matches a gettext call with a quoted first argument
// (escaped-quote aware) and optional trailing arguments.
var gettextPattern = regexp.MustCompile(`gettext\s*\(\s*"((?:\\.|[^"\\])*)"\s*(?:,\s*[^)]*)?\)`)

// Translator issues one translation request per string.
type Translator interface {
	Send(ctx context.Context, instructions, input string) (string, error)
}

// splice is one pending payload replacement, addressed by byte range.
type splice struct {
	start, end int
	text       string
}

// TranslateContent translates every gettext() string literal in content
// to English and returns the rewritten content plus a flag reporting
// whether anything changed. Replacements are applied by byte range, so a
// payload recurring elsewhere in the match span is never touched.
func TranslateContent(ctx context.Context, content string, tr Translator, onChange func(original, translated string)) (string, bool, error) {
	matches := gettextPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return content, false, nil
	}

	var splices []splice
	for _, m := range matches {
		start, end := m[2], m[3]
		payload := content[start:end]

		translated, err := translateText(ctx, tr, payload)
		if err != nil {
			return "", false, err
		}
		if translated == payload {
			continue
		}

		if onChange != nil {
			onChange(payload, translated)
		}
		splices = append(splices, splice{start: start, end: end, text: translated})
	}

	if len(splices) == 0 {
		return content, false, nil
	}

	var b strings.Builder
	b.Grow(len(content))
	last := 0
	for _, s := range splices {
		b.WriteString(content[last:s.start])
		b.WriteString(s.text)
		last = s.end
	}
	b.WriteString(content[last:])

	return b.String(), true, nil
}

func translateText(ctx context.Context, tr Translator, input string) (string, error) {
	return tr.Send(ctx, instructions(), buildPrompt(input))
}

func instructions() string {
	return fmt.Sprintf("You are a professional translator for gettext messages. "+
		"You will translate the message to %s. You must preserve placeholders, "+
		"written in the format `%%{placeholder}`.", langname.Fallback)
}

func buildPrompt(input string) string {
	return fmt.Sprintf("Translate this gettext message to English, preserving placeholders like `%%{...}`.\n\n"+
		"Important:\n"+
		"- If it's already in English, just return the original text.\n"+
		"- Just return the translation, do not add any other text or comments.\n\n"+
		"Text to translate:\n\"%s\"", input)
}
