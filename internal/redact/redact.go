// Package redact provides utilities for redacting sensitive information
// from strings before they are logged. Backend errors from AWS clients
// can embed credentials, signed URLs, ARNs, and endpoint details that
// must never reach a log sink verbatim.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedURLPlaceholder        = "[REDACTED_SIGNED_URL]"
	RedactedARNPlaceholder        = "[REDACTED_ARN]"
)

// Precompiled regex patterns
var (
	// AWS access key IDs and secret-looking tokens
	awsKeyRegex = regexp.MustCompile(`\b(AKIA|ASIA)[A-Z0-9]{16}\b`)
	secretRegex = regexp.MustCompile(
		`(?i)(secret[_-]?(access[_-]?)?key|session[_-]?token|password|credential)(['"\s:=]+)[A-Za-z0-9_\-.~+/=]{8,}`,
	)

	// Presigned URLs carry the signature in the query string
	signedURLRegex = regexp.MustCompile(`https?://[^\s"']+[?&]X-Amz-[^\s"']+`)

	// Topic/table/bucket ARNs identify the deployment
	arnRegex = regexp.MustCompile(`\barn:aws[a-z-]*:[a-z0-9-]+:[a-z0-9-]*:\d{12}:[^\s"']+`)

	// Connection strings and endpoint URLs with embedded userinfo
	userinfoRegex = regexp.MustCompile(`(?i)[a-z][a-z0-9+.-]*://[^@/\s]+@`)
)

// String redacts sensitive patterns from the given string.
func String(s string) string {
	if s == "" {
		return s
	}

	s = signedURLRegex.ReplaceAllString(s, RedactedURLPlaceholder)
	s = arnRegex.ReplaceAllString(s, RedactedARNPlaceholder)
	s = awsKeyRegex.ReplaceAllString(s, RedactedCredentialPlaceholder)
	s = secretRegex.ReplaceAllString(s, "$1="+RedactedCredentialPlaceholder)
	s = userinfoRegex.ReplaceAllString(s, RedactionPlaceholder+"@")

	return s
}

// Error redacts sensitive patterns from an error's message.
// A nil error redacts to the empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
