package dhcpddata

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// An error returned when the lease file text cannot be split into
// tokens, e.g. because of an unterminated quoted string.
type LexerError struct {
	Pos     lexer.Position
	message string
}

// Creates new instance of the LexerError.
func NewLexerError(pos lexer.Position, format string, args ...any) error {
	return &LexerError{
		Pos:     pos,
		message: fmt.Sprintf(format, args...),
	}
}

// Returns error string.
func (e LexerError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.message)
}

// An error returned when the tokens do not follow the lease file
// grammar. The message names the expected token and, where available,
// the token actually found.
type ParseError struct {
	Pos     lexer.Position
	message string
	cause   error
}

// Creates new instance of the ParseError.
func NewParseError(pos lexer.Position, format string, args ...any) error {
	return &ParseError{
		Pos:     pos,
		message: fmt.Sprintf(format, args...),
	}
}

// Creates the ParseError locating the error returned while converting
// the token values, e.g. an invalid date. The cause is kept.
func wrapParseError(pos lexer.Position, cause error) error {
	return &ParseError{
		Pos:     pos,
		message: cause.Error(),
		cause:   cause,
	}
}

// Returns error string.
func (e ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Column, e.message)
}

// Returns the error message without the position.
func (e ParseError) Message() string {
	return e.message
}

// Returns the error the ParseError was created from, if any.
func (e ParseError) Unwrap() error {
	return e.cause
}
