package domain

import "time"

// AccessLevel is a capability label a piece of software supports and an
// access request asks for.
type AccessLevel string

const (
	AccessLevelRead  AccessLevel = "Read"
	AccessLevelWrite AccessLevel = "Write"
	AccessLevelAdmin AccessLevel = "Admin"
)

// ParseAccessLevel validates a raw access level string.
func ParseAccessLevel(raw string) (AccessLevel, bool) {
	switch AccessLevel(raw) {
	case AccessLevelRead, AccessLevelWrite, AccessLevelAdmin:
		return AccessLevel(raw), true
	}
	return "", false
}

// Software describes a catalog entry employees can request access to.
// AccessLevels keeps assignment order but is treated as a set.
type Software struct {
	ID           string
	Name         string
	Description  string
	AccessLevels []AccessLevel
	CreatedAt    time.Time
}

// SupportsLevel reports whether the software offers the given access level.
func (s Software) SupportsLevel(level AccessLevel) bool {
	for _, l := range s.AccessLevels {
		if l == level {
			return true
		}
	}
	return false
}
