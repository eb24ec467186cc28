package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransportStrings(t *testing.T) {
	require.Equal(t, "fd 7", DescriptorPair{Read: 7, Write: 7}.String())
	require.Equal(t, "fds r3/w4", DescriptorPair{Read: 3, Write: 4}.String())
	require.Equal(t, "callbacks", CallbackPair{}.String())
}

func TestCallbackWriteLoops(t *testing.T) {
	var got []byte
	calls := 0
	write := func(arg any, p []byte) (int, error) {
		calls++
		n := min(len(p), 3)
		got = append(got, p[:n]...)
		return n, nil
	}

	nc, err := transportConn(CallbackPair{Read: nopRead, Write: write})
	require.NoError(t, err)

	n, err := nc.Write([]byte("abcdefgh"))
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, "abcdefgh", string(got))
	require.Equal(t, 3, calls)
}

func TestCallbackWriteErrors(t *testing.T) {
	boom := errors.New("peer went away")
	stuck := func(arg any, p []byte) (int, error) { return 0, nil }
	failing := func(arg any, p []byte) (int, error) { return 1, boom }

	nc, _ := transportConn(CallbackPair{Read: nopRead, Write: stuck})
	_, err := nc.Write([]byte("abc"))
	require.Error(t, err)

	nc, _ = transportConn(CallbackPair{Read: nopRead, Write: failing})
	n, err := nc.Write([]byte("abc"))
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, n)
}

func TestCallbackArgPassedThrough(t *testing.T) {
	type token struct{ id int }
	arg := &token{id: 42}

	var seen []any
	read := func(a any, p []byte) (int, error) {
		seen = append(seen, a)
		return copy(p, "x"), nil
	}
	write := func(a any, p []byte) (int, error) {
		seen = append(seen, a)
		return len(p), nil
	}

	nc, err := transportConn(CallbackPair{Read: read, Write: write, Arg: arg})
	require.NoError(t, err)
	_, _ = nc.Read(make([]byte, 1))
	_, _ = nc.Write([]byte("y"))

	require.Len(t, seen, 2)
	require.Same(t, arg, seen[0])
	require.Same(t, arg, seen[1])
	require.NoError(t, nc.Close())
}
