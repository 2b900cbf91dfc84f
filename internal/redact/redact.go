// Package redact scrubs credentials and personal data from strings before
// they are logged. Errors coming back from the identity provider and the
// database routinely echo tokens, API keys, e-mail addresses, connection
// strings and SQL, none of which belong in log output.
package redact

import (
	"log/slog"
	"regexp"
)

// Placeholders substituted for redacted values.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

type rule struct {
	re          *regexp.Regexp
	placeholder string
}

// rules run in order. Token shapes go before the generic key=value rule and
// e-mail addresses before host names, otherwise the broader pattern would
// swallow the narrower one and leave part of it behind.
var rules = []rule{
	{regexp.MustCompile(`(?i)(postgres|postgresql|db|database)://[^@\s]+@`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},
	{regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.~+/=]{8,}`), "Bearer [REDACTED_TOKEN]"},
	{regexp.MustCompile(`\bsb_(?:secret|publishable)_[A-Za-z0-9_-]{8,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`(?i)"?refresh_token"?\s*[:=]\s*"?[A-Za-z0-9_\-]{6,}"?`), "refresh_token=[REDACTED_TOKEN]"},
	{
		regexp.MustCompile(`(?i)(apikey|api[_-]?key|service[_-]?role|jwt[_-]?secret|token|secret|key)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		RedactedKeyPlaceholder,
	},
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
	{
		regexp.MustCompile(
			`(?i)(SELECT|INSERT|UPDATE|DELETE)[\s\w,*().]+(?:FROM|INTO|SET)(?:[\s\w,*()='".$]+)?`,
		),
		"[REDACTED_SQL]",
	},
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},
	{
		regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`),
		"[REDACTED_HOST]",
	},
}

// String returns input with every sensitive fragment replaced.
func String(input string) string {
	if input == "" {
		return input
	}
	for _, r := range rules {
		input = r.re.ReplaceAllString(input, r.placeholder)
	}
	return input
}

// Error is String applied to err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// ErrorAttr returns the redacted error as a slog attribute named "error".
func ErrorAttr(err error) slog.Attr {
	return slog.String("error", Error(err))
}
