package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClosestRowAfter(t *testing.T) {
	require.Equal(t, []byte("a\x00"), ClosestRowAfter([]byte("a")))
	require.Equal(t, []byte{0}, ClosestRowAfter(nil))

	row := []byte("ab")
	next := ClosestRowAfter(row)
	next[0] = 'z'
	require.Equal(t, []byte("ab"), row)
}

func TestPrefixStopRow(t *testing.T) {
	require.Equal(t, []byte("ord"), PrefixStopRow([]byte("orc")))
	require.Equal(t, []byte("b"), PrefixStopRow([]byte{'a', 0xff, 0xff}))
	require.Nil(t, PrefixStopRow(nil))
	require.Nil(t, PrefixStopRow([]byte{0xff, 0xff}))

	prefix := []byte("ab")
	PrefixStopRow(prefix)
	require.Equal(t, []byte("ab"), prefix)
}

func TestInRange(t *testing.T) {
	cases := []struct {
		row, start, stop string
		want             bool
	}{
		{"b", "", "", true},
		{"a", "a", "c", true},
		{"c", "a", "c", false},
		{"0", "a", "", false},
		{"zz", "a", "", true},
		{"a", "", "a", false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, InRange([]byte(c.row), []byte(c.start), []byte(c.stop)), "%q in [%q, %q)", c.row, c.start, c.stop)
	}
}
