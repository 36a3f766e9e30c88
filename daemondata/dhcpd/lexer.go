package dhcpddata

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
)

// Lexer rules for the lease file. The rules are tried in order and the
// first matching rule wins. A bare word runs until whitespace or a
// semicolon, so it may contain brackets and quotes that do not start it.
var leaseFileLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments start with "#" and run to the end of the line.
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Bracket", Pattern: `[()\[\]{}]`},
	{Name: "Terminator", Pattern: `;`},
	// Quoted string with backslash escapes.
	{Name: "String", Pattern: `"(?:\\[\s\S]|[^"\\])*"`},
	// Quoted string lacking the closing quote. It always spans to the
	// end of the input and is reported as an error.
	{Name: "UnterminatedString", Pattern: `"[\s\S]*`},
	{Name: "Word", Pattern: `[^\s;]+`},
})

// Type of the token produced by the lexer.
type TokenKind int

// Token kinds.
const (
	TokenBracket TokenKind = iota
	TokenTerminator
	TokenWord
	TokenOption
	TokenDeclaration
)

// A single lease file token. Bracket and word tokens carry their text in
// Value. Keyword tokens carry the recognized keyword.
type Token struct {
	Kind        TokenKind
	Value       string
	Option      LeaseKeyword
	Declaration DeclarationKeyword
	Pos         lexer.Position
}

// Returns the token text. Keywords are rendered using their canonical
// spelling.
func (t Token) String() string {
	switch t.Kind {
	case TokenOption:
		return t.Option.String()
	case TokenDeclaration:
		return t.Declaration.String()
	case TokenTerminator:
		return ";"
	default:
		return t.Value
	}
}

// Checks if the token is the specified bracket.
func (t Token) isBracket(bracket string) bool {
	return t.Kind == TokenBracket && t.Value == bracket
}

// Checks if the token is the specified lease option keyword.
func (t Token) isOption(keyword LeaseKeyword) bool {
	return t.Kind == TokenOption && t.Option == keyword
}

// Checks if the token is the statement terminator.
func (t Token) isTerminator() bool {
	return t.Kind == TokenTerminator
}

// Classifies a bare word. Declaration keywords are checked first, then
// the lease option keywords. Other words are returned as generic words.
func classifyWord(word string, pos lexer.Position) Token {
	if keyword, err := ParseDeclarationKeyword(word); err == nil {
		return Token{Kind: TokenDeclaration, Declaration: keyword, Pos: pos}
	}
	if keyword, err := ParseLeaseKeyword(word); err == nil {
		return Token{Kind: TokenOption, Option: keyword, Pos: pos}
	}
	return Token{Kind: TokenWord, Value: word, Pos: pos}
}

// Decodes the body of a quoted string (without the opening quote).
// A backslash followed by a backslash or a quote produces the second
// character. Any other escape is copied literally including the
// backslash. The second returned value is false when the body ends with
// an unpaired backslash.
func decodeQuoted(body string) (string, bool) {
	var builder strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			builder.WriteByte(c)
			continue
		}
		i++
		if i == len(body) {
			return builder.String(), false
		}
		switch body[i] {
		case '\\', '"':
			builder.WriteByte(body[i])
		default:
			builder.WriteByte('\\')
			builder.WriteByte(body[i])
		}
	}
	return builder.String(), true
}

// Splits the lease file text into tokens. Comments and whitespace are
// dropped. It returns LexerError when a quoted string is not terminated.
func Lex(input string) ([]Token, error) {
	lex, err := leaseFileLexer.Lex("", strings.NewReader(input))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	symbols := leaseFileLexer.Symbols()

	var tokens []Token
	for {
		raw, err := lex.Next()
		if err != nil {
			var lexErr *lexer.Error
			if errors.As(err, &lexErr) {
				return nil, NewLexerError(lexErr.Pos, "%s", lexErr.Msg)
			}
			return nil, errors.WithStack(err)
		}
		if raw.EOF() {
			break
		}
		switch raw.Type {
		case symbols["Comment"], symbols["Whitespace"]:
			continue
		case symbols["Bracket"]:
			tokens = append(tokens, Token{Kind: TokenBracket, Value: raw.Value, Pos: raw.Pos})
		case symbols["Terminator"]:
			tokens = append(tokens, Token{Kind: TokenTerminator, Pos: raw.Pos})
		case symbols["String"]:
			value, _ := decodeQuoted(raw.Value[1 : len(raw.Value)-1])
			tokens = append(tokens, Token{Kind: TokenWord, Value: value, Pos: raw.Pos})
		case symbols["UnterminatedString"]:
			if _, ok := decodeQuoted(raw.Value[1:]); !ok {
				return nil, NewLexerError(raw.Pos, "unexpected end of input after backslash")
			}
			return nil, NewLexerError(raw.Pos, "unterminated quoted string")
		default:
			tokens = append(tokens, classifyWord(raw.Value, raw.Pos))
		}
	}
	return tokens, nil
}
