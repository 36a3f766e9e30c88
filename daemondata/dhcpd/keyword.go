package dhcpddata

import "github.com/pkg/errors"

// Keyword introducing a top-level declaration in the lease file.
type DeclarationKeyword int

// Supported top-level declarations. Only the lease declaration is
// currently recognized.
const (
	DeclarationLease DeclarationKeyword = iota
)

// Lookup table of the declaration keywords. The declaration keywords
// are checked before the lease option keywords when classifying words.
var declarationKeywords = []struct {
	text    string
	keyword DeclarationKeyword
}{
	{"lease", DeclarationLease},
}

// Returns the canonical spelling of the declaration keyword.
func (k DeclarationKeyword) String() string {
	for _, entry := range declarationKeywords {
		if entry.keyword == k {
			return entry.text
		}
	}
	return "unknown"
}

// Converts a word into the declaration keyword. The match is exact and
// case-sensitive.
func ParseDeclarationKeyword(word string) (DeclarationKeyword, error) {
	for _, entry := range declarationKeywords {
		if entry.text == word {
			return entry.keyword, nil
		}
	}
	return 0, errors.Errorf("'%s' declaration is not supported", word)
}

// Keyword recognized inside the lease block.
type LeaseKeyword int

// Lease options.
const (
	OptionStarts LeaseKeyword = iota
	OptionEnds
	OptionTstp
	OptionTsfp
	OptionAtsfp
	OptionCltt
	OptionHardware
	OptionUID
	OptionClientHostname
	OptionHostname
	OptionBinding
	OptionState
	OptionNext
	OptionRewind
	OptionSet
)

// Lookup table of the lease option keywords.
var leaseKeywords = []struct {
	text    string
	keyword LeaseKeyword
}{
	{"starts", OptionStarts},
	{"ends", OptionEnds},
	{"tstp", OptionTstp},
	{"tsfp", OptionTsfp},
	{"atsfp", OptionAtsfp},
	{"cltt", OptionCltt},
	{"hardware", OptionHardware},
	{"uid", OptionUID},
	{"client-hostname", OptionClientHostname},
	{"hostname", OptionHostname},
	{"binding", OptionBinding},
	{"state", OptionState},
	{"next", OptionNext},
	{"rewind", OptionRewind},
	{"set", OptionSet},
}

// Returns the canonical spelling of the lease option keyword.
func (k LeaseKeyword) String() string {
	for _, entry := range leaseKeywords {
		if entry.keyword == k {
			return entry.text
		}
	}
	return "unknown"
}

// Converts a word into the lease option keyword. The match is exact and
// case-sensitive.
func ParseLeaseKeyword(word string) (LeaseKeyword, error) {
	for _, entry := range leaseKeywords {
		if entry.text == word {
			return entry.keyword, nil
		}
	}
	return 0, errors.Errorf("'%s' is not a recognized lease option", word)
}
