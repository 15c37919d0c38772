package channel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var usernameRe = regexp.MustCompile(`^@[A-Za-z][A-Za-z0-9_]{3,31}$`)

// ChatRef addresses the storage channel either by numeric id (-100...) or by @username.
type ChatRef string

// ParseChatRef validates a configured channel reference.
func ParseChatRef(s string) (ChatRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("channel id is empty")
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ChatRef(s), nil
	}
	if !strings.HasPrefix(s, "@") {
		s = "@" + s
	}
	if !usernameRe.MatchString(s) {
		return "", fmt.Errorf("channel id %q is neither a numeric id nor an @username", s)
	}
	return ChatRef(s), nil
}

// Recipient implements tele.Recipient.
func (r ChatRef) Recipient() string { return string(r) }

func (r ChatRef) String() string { return string(r) }
