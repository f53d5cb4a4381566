package inline

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// echoTranslator maps known payloads to translations and echoes
// everything else unchanged, like a model asked to translate text that
// is already English.
type echoTranslator struct {
	known map[string]string
	calls int
}

func (e *echoTranslator) Send(_ context.Context, _, input string) (string, error) {
	e.calls++
	payload := promptPayload(input)
	if out, ok := e.known[payload]; ok {
		return out, nil
	}
	return payload, nil
}

// promptPayload extracts the quoted text from the user prompt.
func promptPayload(input string) string {
	const marker = "Text to translate:\n\""
	idx := strings.Index(input, marker)
	if idx < 0 {
		return input
	}
	s := input[idx+len(marker):]
	return strings.TrimSuffix(s, "\"")
}

func TestTranslateContentBasic(t *testing.T) {
	tr := &echoTranslator{known: map[string]string{"Hola": "Hello"}}
	content := `IO.puts(gettext("Hola"))`

	got, changed, err := TranslateContent(context.Background(), content, tr, nil)
	if err != nil {
		t.Fatalf("TranslateContent: %v", err)
	}
	if !changed {
		t.Error("changed = false, want true")
	}
	if got != `IO.puts(gettext("Hello"))` {
		t.Errorf("content = %q", got)
	}
}

func TestTranslateContentIdempotentOnEnglish(t *testing.T) {
	tr := &echoTranslator{known: map[string]string{"Hola": "Hello"}}
	content := `gettext("Hola")`

	once, changed, err := TranslateContent(context.Background(), content, tr, nil)
	if err != nil || !changed {
		t.Fatalf("first pass: changed=%v err=%v", changed, err)
	}

	twice, changed, err := TranslateContent(context.Background(), once, tr, nil)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if changed {
		t.Error("second pass reported changes")
	}
	if twice != once {
		t.Errorf("second pass rewrote content: %q", twice)
	}
}

func TestTranslateContentMultipleMatches(t *testing.T) {
	tr := &echoTranslator{known: map[string]string{
		"Hola":  "Hello",
		"Adiós": "Goodbye",
	}}
	content := "a = gettext(\"Hola\")\nb = gettext(\"Adiós\")\nc = gettext(\"plain\")\n"

	got, changed, err := TranslateContent(context.Background(), content, tr, nil)
	if err != nil {
		t.Fatalf("TranslateContent: %v", err)
	}
	if !changed {
		t.Error("changed = false")
	}
	want := "a = gettext(\"Hello\")\nb = gettext(\"Goodbye\")\nc = gettext(\"plain\")\n"
	if got != want {
		t.Errorf("content:\n%q\nwant:\n%q", got, want)
	}
	if tr.calls != 3 {
		t.Errorf("calls = %d, want 3", tr.calls)
	}
}

func TestTranslateContentTrailingArguments(t *testing.T) {
	tr := &echoTranslator{known: map[string]string{"Hola %{name}": "Hello %{name}"}}
	content := `gettext("Hola %{name}", name: name)`

	got, _, err := TranslateContent(context.Background(), content, tr, nil)
	if err != nil {
		t.Fatalf("TranslateContent: %v", err)
	}
	if got != `gettext("Hello %{name}", name: name)` {
		t.Errorf("content = %q", got)
	}
}

// The payload recurs verbatim inside the same match span (as a trailing
// argument). Span-indexed splicing must only replace the quoted literal.
func TestTranslateContentPayloadRecursInSpan(t *testing.T) {
	tr := &echoTranslator{known: map[string]string{"Hola": "Hello"}}
	content := `gettext("Hola", Hola)`

	got, _, err := TranslateContent(context.Background(), content, tr, nil)
	if err != nil {
		t.Fatalf("TranslateContent: %v", err)
	}
	if got != `gettext("Hello", Hola)` {
		t.Errorf("content = %q, trailing argument must stay untouched", got)
	}
}

func TestTranslateContentEscapedQuotes(t *testing.T) {
	tr := &echoTranslator{known: map[string]string{`say \"hola\"`: `say \"hello\"`}}
	content := `gettext("say \"hola\"")`

	got, _, err := TranslateContent(context.Background(), content, tr, nil)
	if err != nil {
		t.Fatalf("TranslateContent: %v", err)
	}
	if got != `gettext("say \"hello\"")` {
		t.Errorf("content = %q", got)
	}
}

func TestTranslateContentNoMatches(t *testing.T) {
	tr := &echoTranslator{}
	content := "def hello do\n  :ok\nend\n"

	got, changed, err := TranslateContent(context.Background(), content, tr, nil)
	if err != nil {
		t.Fatalf("TranslateContent: %v", err)
	}
	if changed || got != content {
		t.Errorf("changed=%v content=%q", changed, got)
	}
	if tr.calls != 0 {
		t.Errorf("calls = %d, want 0", tr.calls)
	}
}

func TestTranslateContentOnChange(t *testing.T) {
	tr := &echoTranslator{known: map[string]string{"Hola": "Hello"}}

	var pairs [][2]string
	_, _, err := TranslateContent(context.Background(), `gettext("Hola") gettext("ok")`, tr,
		func(original, translated string) {
			pairs = append(pairs, [2]string{original, translated})
		})
	if err != nil {
		t.Fatalf("TranslateContent: %v", err)
	}
	if len(pairs) != 1 || pairs[0] != [2]string{"Hola", "Hello"} {
		t.Errorf("pairs = %v, want only the changed literal", pairs)
	}
}

func TestTranslateContentErrorAborts(t *testing.T) {
	sentinel := errors.New("service down")
	tr := failingTranslator{err: sentinel}

	_, _, err := TranslateContent(context.Background(), `gettext("Hola")`, tr, nil)
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want %v", err, sentinel)
	}
}

type failingTranslator struct{ err error }

func (f failingTranslator) Send(context.Context, string, string) (string, error) {
	return "", f.err
}

func TestGettextPattern(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		payload string
		match   bool
	}{
		{"simple", `gettext("Hola")`, "Hola", true},
		{"spaces", `gettext ( "Hola" )`, "Hola", true},
		{"trailing args", `gettext("Hola", count: 2)`, "Hola", true},
		{"escaped quote", `gettext("a \"b\" c")`, `a \"b\" c`, true},
		{"empty", `gettext("")`, "", true},
		{"not a call", `regettext_map`, "", false},
		{"unterminated", `gettext("Hola`, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := gettextPattern.FindStringSubmatch(tc.input)
			if tc.match != (m != nil) {
				t.Fatalf("match = %v, want %v", m != nil, tc.match)
			}
			if m != nil && m[1] != tc.payload {
				t.Errorf("payload = %q, want %q", m[1], tc.payload)
			}
		})
	}
}
