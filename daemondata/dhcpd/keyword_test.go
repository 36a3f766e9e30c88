package dhcpddata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test that every lease option keyword lexes to its keyword token and
// is rendered using the same spelling.
func TestLeaseKeywordRoundTrip(t *testing.T) {
	for _, entry := range leaseKeywords {
		t.Run(entry.text, func(t *testing.T) {
			tokens, err := Lex(entry.text)
			require.NoError(t, err)
			require.Len(t, tokens, 1)
			require.Equal(t, TokenOption, tokens[0].Kind)
			require.Equal(t, entry.keyword, tokens[0].Option)
			require.Equal(t, entry.text, tokens[0].String())
			require.Equal(t, entry.text, entry.keyword.String())
		})
	}
}

// Test that the declaration keyword lexes to its keyword token and is
// rendered using the same spelling.
func TestDeclarationKeywordRoundTrip(t *testing.T) {
	tokens, err := Lex("lease")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	require.Equal(t, TokenDeclaration, tokens[0].Kind)
	require.Equal(t, DeclarationLease, tokens[0].Declaration)
	require.Equal(t, "lease", tokens[0].String())
}

// Test converting words into keywords.
func TestParseKeywords(t *testing.T) {
	keyword, err := ParseLeaseKeyword("client-hostname")
	require.NoError(t, err)
	require.Equal(t, OptionClientHostname, keyword)

	_, err = ParseLeaseKeyword("Starts")
	require.ErrorContains(t, err, "'Starts' is not a recognized lease option")

	declaration, err := ParseDeclarationKeyword("lease")
	require.NoError(t, err)
	require.Equal(t, DeclarationLease, declaration)

	_, err = ParseDeclarationKeyword("host")
	require.ErrorContains(t, err, "'host' declaration is not supported")
}

// Test that unknown keyword values are rendered as unknown.
func TestUnknownKeywordString(t *testing.T) {
	require.Equal(t, "unknown", LeaseKeyword(100).String())
	require.Equal(t, "unknown", DeclarationKeyword(100).String())
}
