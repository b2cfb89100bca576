package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"unicode/utf8"
)

// Attribute keys shared across packages.
const (
	KeyOperation = "operation"
	KeyService   = "service"
	KeyTool      = "tool"
	KeyProvider  = "provider"
	KeyModel     = "model"
	KeySession   = "session"
	KeyTurn      = "turn"
	KeyUserHash  = "user_hash"
	KeyDuration  = "duration"
	KeyStatus    = "status"
	KeyError     = "error"
)

// WithTool returns a logger scoped to a tool.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithService returns a logger scoped to an upstream service.
func WithService(logger *slog.Logger, service string) *slog.Logger {
	return logger.With(slog.String(KeyService, service))
}

// WithSession returns a logger scoped to a chat session.
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With(slog.String(KeySession, sessionID))
}

func Operation(op string) slog.Attr      { return slog.String(KeyOperation, op) }
func Service(svc string) slog.Attr       { return slog.String(KeyService, svc) }
func Tool(tool string) slog.Attr         { return slog.String(KeyTool, tool) }
func Provider(provider string) slog.Attr { return slog.String(KeyProvider, provider) }
func Model(model string) slog.Attr       { return slog.String(KeyModel, model) }
func Turn(turn int) slog.Attr            { return slog.Int(KeyTurn, turn) }
func Status(status string) slog.Attr     { return slog.String(KeyStatus, status) }

// Err returns an error attribute. A nil error yields an empty group, which
// slog omits.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// anonymizeEmail hashes an email so log lines can be correlated without
// carrying the address.
func anonymizeEmail(email string) string {
	if email == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(email))
	return "user:" + hex.EncodeToString(hash[:8])
}

// UserHash returns the anonymized email as an attribute.
func UserHash(email string) slog.Attr {
	return slog.String(KeyUserHash, anonymizeEmail(email))
}

// SanitizeToken reports only the length of a secret.
func SanitizeToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[token:%d chars]", len(token))
}

// Truncate shortens s to at most max runes, marking the cut with "...".
// Tool outputs and prompts can be large; debug logs only need the head.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
