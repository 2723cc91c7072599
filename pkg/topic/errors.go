package topic

import "errors"

// Topic name validation errors.
var (
	// ErrEmptyTopic indicates the topic name is empty.
	ErrEmptyTopic = errors.New("topic must not be empty")

	// ErrTopicTooLong indicates the topic does not fit a 2-byte length prefix.
	ErrTopicTooLong = errors.New("topic exceeds maximum length")

	// ErrNullCharacter indicates the topic contains U+0000.
	ErrNullCharacter = errors.New("topic must not contain null character")

	// ErrWildcardInName indicates a + or # in a topic name.
	ErrWildcardInName = errors.New("topic name must not contain wildcards")

	// ErrInvalidUTF8 indicates the topic is not well-formed UTF-8.
	ErrInvalidUTF8 = errors.New("topic must be valid UTF-8")
)
