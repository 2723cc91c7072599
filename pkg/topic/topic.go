// Package topic validates MQTT topic names before they are put on the wire.
package topic

import "unicode/utf8"

const (
	// MultiWildcard matches any number of levels in a filter.
	MultiWildcard = '#'

	// SingleWildcard matches exactly one level in a filter.
	SingleWildcard = '+'

	// MaxLength is the longest topic a length-prefixed field can carry.
	MaxLength = 65535
)

// ValidateName checks a topic name for a PUBLISH. Wildcards are only
// meaningful in subscription filters and are rejected here.
func ValidateName(name string) error {
	if len(name) == 0 {
		return ErrEmptyTopic
	}
	if len(name) > MaxLength {
		return ErrTopicTooLong
	}
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case MultiWildcard, SingleWildcard:
			return ErrWildcardInName
		case 0:
			return ErrNullCharacter
		}
	}
	if !utf8.ValidString(name) {
		return ErrInvalidUTF8
	}
	return nil
}
