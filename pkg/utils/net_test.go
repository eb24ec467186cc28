package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestCanonicalServerName(t *testing.T) {
	cases := []struct {
		name string
		in   *string
		want *string
	}{
		{"absent", nil, nil},
		{"plain name", ptr("example.com"), ptr("example.com")},
		{"fqdn root dot", ptr("example.com."), ptr("example.com")},
		{"only one dot stripped", ptr("example.com.."), ptr("example.com.")},
		{"ipv4 literal", ptr("192.0.2.1"), nil},
		{"ipv4 literal with root dot", ptr("192.0.2.1."), nil},
		{"ipv6 literal", ptr("2001:db8::1"), nil},
		{"ipv6 loopback", ptr("::1"), nil},
		{"v4-mapped v6", ptr("::ffff:192.0.2.1"), nil},
		{"zoned v6 isn't a literal", ptr("fe80::1%eth0"), ptr("fe80::1%eth0")},
		{"leading zeros aren't a literal", ptr("010.0.0.1"), ptr("010.0.0.1")},
		{"bracketed v6 isn't a literal", ptr("[::1]"), ptr("[::1]")},
		{"empty", ptr(""), ptr("")},
		{"just a dot", ptr("."), ptr("")},
		{"single label", ptr("localhost"), ptr("localhost")},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, CanonicalServerName(c.in))
		})
	}
}

func TestCanonicalServerNameCopies(t *testing.T) {
	in := "example.com"
	out := CanonicalServerName(&in)
	require.NotNil(t, out)
	require.NotSame(t, &in, out)

	in = "changed.example"
	require.Equal(t, "example.com", *out)
}

func TestServerNameConformant(t *testing.T) {
	require.True(t, ServerNameConformant("example.com"))
	require.False(t, ServerNameConformant("example.com."))
	require.False(t, ServerNameConformant("192.0.2.1"))
	require.False(t, ServerNameConformant("example.com:443"))
}
