package dhcpddata

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Top-level directives having the form: NAME VALUE;. They are consumed
// and their values are discarded.
var topLevelDirectives = []string{
	"authoring-byte-order",
	"server-duid",
	"db-time-format",
}

// The result of parsing the lease file.
type ParseResult struct {
	// Leases in the order of their declarations.
	Leases Leases
}

// Recursive descent parser walking over the lease file tokens. The parser
// stops at the first error.
type parser struct {
	tokens []Token
	pos    int
	// Position just past the last character of the input.
	eof lexer.Position
}

// Returns the current token without consuming it. The second value is
// false at the end of input.
func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

// Consumes the current token.
func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

// Returns the position of the current token or the end of input.
func (p *parser) position() lexer.Position {
	if token, ok := p.peek(); ok {
		return token.Pos
	}
	return p.eof
}

// Describes the current token for the error messages.
func (p *parser) found() string {
	if token, ok := p.peek(); ok {
		return fmt.Sprintf("'%s'", token)
	}
	return "end of input"
}

// Creates an error located at the current token.
func (p *parser) errorf(format string, args ...any) error {
	return NewParseError(p.position(), format, args...)
}

// Consumes the statement terminator or returns an error if the current
// token is not a terminator.
func (p *parser) expectTerminator(statement string) error {
	if token, ok := p.peek(); !ok || !token.isTerminator() {
		return p.errorf("semicolon expected after %s statement, found %s", statement, p.found())
	}
	p.advance()
	return nil
}

// Consumes a single value token. If there are no more tokens it returns
// an error saying that the named value is expected.
func (p *parser) expectValue(name string) (string, error) {
	token, ok := p.peek()
	if !ok {
		return "", p.errorf("%s expected", name)
	}
	p.advance()
	return token.String(), nil
}

// Consumes a single bare or quoted word. Keywords, brackets and
// terminators are rejected.
func (p *parser) expectWord(name string) (string, error) {
	token, ok := p.peek()
	if !ok {
		return "", p.errorf("%s expected", name)
	}
	if token.Kind != TokenWord {
		return "", p.errorf("%s expected, found %s", name, p.found())
	}
	p.advance()
	return token.Value, nil
}

// Parses the date statement contents following the date keyword:
//
//	<weekday> <date> <time> [<timezone>];
//
// The field names the parsed date in the error messages. The "never"
// form results in a nil date. The "epoch <seconds>" form is also
// accepted.
func (p *parser) parseDate(field string) (*Date, error) {
	weekday, ok := p.peek()
	if !ok {
		return nil, p.errorf("weekday for %q date expected", field)
	}
	p.advance()

	if weekday.Kind == TokenWord {
		switch weekday.Value {
		case "never":
			if err := p.expectTerminator(fmt.Sprintf("%q date", field)); err != nil {
				return nil, err
			}
			return nil, nil
		case "epoch":
			secondsPos := p.position()
			seconds, err := p.expectValue(fmt.Sprintf("seconds for %q date", field))
			if err != nil {
				return nil, err
			}
			if err := p.expectTerminator(fmt.Sprintf("%q date", field)); err != nil {
				return nil, err
			}
			date, err := NewDateFromEpoch(seconds)
			if err != nil {
				return nil, wrapParseError(secondsPos, err)
			}
			return &date, nil
		}
	}

	date, ok := p.peek()
	if !ok {
		return nil, p.errorf("date for %q date expected", field)
	}
	p.advance()

	clock, ok := p.peek()
	if !ok {
		return nil, p.errorf("time for %q date expected", field)
	}
	p.advance()

	timezone, ok := p.peek()
	if !ok {
		return nil, p.errorf("timezone for %q date expected", field)
	}
	zone := ""
	if !timezone.isTerminator() {
		zone = timezone.String()
		p.advance()
		terminator, ok := p.peek()
		if !ok {
			return nil, p.errorf("semicolon after timezone for %q date expected", field)
		}
		if !terminator.isTerminator() {
			return nil, p.errorf("expected semicolon after timezone for %q date, found %s", field, p.found())
		}
	}
	p.advance()

	value, err := NewDate(weekday.String(), date.String(), clock.String(), zone)
	if err != nil {
		return nil, wrapParseError(weekday.Pos, err)
	}
	return &value, nil
}

// Parses the binding state statement. The current token must be the
// "binding" keyword:
//
//	binding state <active|free|abandoned>;
//
// It is used for the plain, next and rewind binding state statements.
func (p *parser) parseBindingState() (BindingState, error) {
	p.advance()
	if token, ok := p.peek(); !ok || !token.isOption(OptionState) {
		return 0, p.errorf("expected 'state' after 'binding', found %s", p.found())
	}
	p.advance()

	token, ok := p.peek()
	if !ok || token.Kind != TokenWord {
		return 0, p.errorf("expected binding state value, found %s", p.found())
	}
	state, err := ParseBindingState(token.Value)
	if err != nil {
		return 0, p.errorf("expected binding state value, found %s", p.found())
	}
	p.advance()

	if err := p.expectTerminator("binding state"); err != nil {
		return 0, err
	}
	return state, nil
}

// Parses the binding state statement qualified with the "next" or
// "rewind" keyword. The current token must be the qualifier.
func (p *parser) parseQualifiedBindingState(qualifier LeaseKeyword) (*BindingState, error) {
	p.advance()
	if token, ok := p.peek(); !ok || !token.isOption(OptionBinding) {
		return nil, p.errorf("expected 'binding' after '%s', found %s", qualifier, p.found())
	}
	state, err := p.parseBindingState()
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Parses the hardware statement contents:
//
//	hardware <type> <address>;
func (p *parser) parseHardware() (*Hardware, error) {
	hardwareType, err := p.expectValue("hardware type")
	if err != nil {
		return nil, err
	}
	mac, err := p.expectValue("MAC address")
	if err != nil {
		return nil, err
	}
	if err := p.expectTerminator("hardware"); err != nil {
		return nil, err
	}
	return &Hardware{Type: hardwareType, MAC: mac}, nil
}

// Parses a statement having a single value and returns the value.
func (p *parser) parseValueStatement(keyword LeaseKeyword, name string) (string, error) {
	value, err := p.expectValue(name)
	if err != nil {
		return "", err
	}
	if err := p.expectTerminator(keyword.String()); err != nil {
		return "", err
	}
	return value, nil
}

// Parses the set statement contents:
//
//	set <name> = <value>;
//
// Only the vendor-class-identifier value is stored in the lease. Other
// values are dropped.
func (p *parser) parseSet(lease *Lease) error {
	name, err := p.expectWord("value name after 'set'")
	if err != nil {
		return err
	}
	if token, ok := p.peek(); !ok || token.Kind != TokenWord || token.Value != "=" {
		return p.errorf("'=' expected after 'set %s', found %s", name, p.found())
	}
	p.advance()
	value, err := p.expectWord("value after '='")
	if err != nil {
		return err
	}
	if err := p.expectTerminator("set"); err != nil {
		return err
	}
	if name == "vendor-class-identifier" {
		lease.VendorClassIdentifier = &value
	}
	return nil
}

// Removes all double quotes from the hostname.
func unquote(hostname string) string {
	return strings.ReplaceAll(hostname, `"`, "")
}

// Parses the statements within the lease block and stores their values
// in the lease. A repeated statement overwrites the earlier value. It
// returns without consuming the closing brace or when there are no
// more tokens.
func (p *parser) parseLeaseBody(lease *Lease) error {
	for {
		token, ok := p.peek()
		if !ok || token.isBracket("}") {
			return nil
		}
		if token.Kind != TokenOption {
			return p.errorf("unexpected option '%s'", token)
		}

		var err error
		switch token.Option {
		case OptionStarts, OptionEnds, OptionTstp, OptionTsfp, OptionAtsfp, OptionCltt:
			p.advance()
			err = p.parseDateOption(token.Option, lease)
		case OptionHardware:
			p.advance()
			lease.Hardware, err = p.parseHardware()
		case OptionUID:
			p.advance()
			var uid string
			if uid, err = p.parseValueStatement(token.Option, "client identifier"); err == nil {
				lease.UID = &uid
			}
		case OptionClientHostname:
			p.advance()
			var hostname string
			if hostname, err = p.parseValueStatement(token.Option, "client hostname"); err == nil {
				hostname = unquote(hostname)
				lease.ClientHostname = &hostname
			}
		case OptionHostname:
			p.advance()
			var hostname string
			if hostname, err = p.parseValueStatement(token.Option, "hostname"); err == nil {
				hostname = unquote(hostname)
				lease.Hostname = &hostname
			}
		case OptionBinding:
			lease.BindingState, err = p.parseBindingState()
		case OptionNext:
			lease.NextBindingState, err = p.parseQualifiedBindingState(token.Option)
		case OptionRewind:
			lease.RewindBindingState, err = p.parseQualifiedBindingState(token.Option)
		case OptionSet:
			p.advance()
			err = p.parseSet(lease)
		default:
			err = p.errorf("unexpected option '%s'", token)
		}
		if err != nil {
			return err
		}
	}
}

// Parses the date statement and stores the date in the lease field
// matching the keyword.
func (p *parser) parseDateOption(keyword LeaseKeyword, lease *Lease) error {
	var (
		field  string
		target **Date
	)
	switch keyword {
	case OptionStarts:
		field, target = "start", &lease.Dates.Starts
	case OptionEnds:
		field, target = "end", &lease.Dates.Ends
	case OptionTstp:
		field, target = "tstp", &lease.Dates.Tstp
	case OptionTsfp:
		field, target = "tsfp", &lease.Dates.Tsfp
	case OptionAtsfp:
		field, target = "atsfp", &lease.Dates.Atsfp
	case OptionCltt:
		field, target = "cltt", &lease.Dates.Cltt
	default:
		return p.errorf("'%s' is not a date option", keyword)
	}
	date, err := p.parseDate(field)
	if err != nil {
		return err
	}
	*target = date
	return nil
}

// Parses the lease declaration:
//
//	lease <ip-address> { <statements> }
//
// The current token must be the "lease" keyword.
func (p *parser) parseLeaseDeclaration() (Lease, error) {
	p.advance()
	lease := NewLease()
	token, ok := p.peek()
	if !ok {
		return lease, p.errorf("IP address expected")
	}
	lease.IP = token.String()
	p.advance()

	if token, ok := p.peek(); !ok || !token.isBracket("{") {
		return lease, p.errorf("expected '{' after 'lease %s', found %s", lease.IP, p.found())
	}
	p.advance()

	if err := p.parseLeaseBody(&lease); err != nil {
		return lease, err
	}

	if token, ok := p.peek(); !ok || !token.isBracket("}") {
		return lease, p.errorf("expected end of section with '}', found %s", p.found())
	}
	p.advance()
	return lease, nil
}

// Parses the top-level directive having the form: NAME VALUE;.
func (p *parser) parseDirective(name string) error {
	p.advance()
	if _, err := p.expectValue(fmt.Sprintf("value for %s", name)); err != nil {
		return err
	}
	return p.expectTerminator(name)
}

// Parses all top-level declarations and directives.
func (p *parser) parseConfig() (Leases, error) {
	leases := Leases{}
	for {
		token, ok := p.peek()
		if !ok {
			return leases, nil
		}
		switch {
		case token.Kind == TokenDeclaration && token.Declaration == DeclarationLease:
			lease, err := p.parseLeaseDeclaration()
			if err != nil {
				return nil, err
			}
			leases = append(leases, lease)
		case token.Kind == TokenWord && slices.Contains(topLevelDirectives, token.Value):
			if err := p.parseDirective(token.Value); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorf("unexpected %s", p.found())
		}
	}
}

// Returns the position just past the last character of the input.
func endPosition(input string) lexer.Position {
	line := strings.Count(input, "\n") + 1
	column := len(input) - strings.LastIndex(input, "\n")
	return lexer.Position{
		Offset: len(input),
		Line:   line,
		Column: column,
	}
}

// Parses the lease file contents. The parsing stops at the first error
// and no partial result is returned.
func Parse(input string) (*ParseResult, error) {
	tokens, err := Lex(input)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	p := &parser{
		tokens: tokens,
		eof:    endPosition(input),
	}
	leases, err := p.parseConfig()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &ParseResult{Leases: leases}, nil
}

// Reads and parses the lease file.
func ParseFile(path string) (*ParseResult, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read lease file: %s", path)
	}
	result, err := Parse(string(contents))
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to parse lease file: %s", path)
	}
	log.WithFields(log.Fields{
		"file":   path,
		"leases": len(result.Leases),
	}).Debug("Parsed lease file")
	return result, nil
}
