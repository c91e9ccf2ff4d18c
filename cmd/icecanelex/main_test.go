package main

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/dr0pdb/icecanelex/pkg/common"
	"github.com/dr0pdb/icecanelex/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDirectory = path.Join(test.TestDirectory, "cmd")

func writeTestFile(t *testing.T, name, contents string) string {
	p := path.Join(testDirectory, name)
	require.Nil(t, os.WriteFile(p, []byte(contents), 0o644))
	return p
}

func TestCompareFiles(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	a := writeTestFile(t, "a.txt", "Hello, icecane")
	b := writeTestFile(t, "b.txt", "Hello, Icecane")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"compare", "--a", a, "--b", b}, "1\n"},
		{[]string{"compare", "--a", b, "--b", a, "--workers", "3"}, "-1\n"},
		{[]string{"compare", "--a", a, "--b", a, "--workers", "2", "--subworkers", "2"}, "0\n"},
		{[]string{"compare", "--random", "5000", "--seed", "7", "--loglevel", "debug"}, ""},
	}
	for _, tt := range tests {
		out := &bytes.Buffer{}
		require.Nil(t, run(tt.args, out), "args %v", tt.args)
		if tt.want != "" {
			assert.Equal(t, tt.want, out.String(), "args %v", tt.args)
		} else {
			assert.Contains(t, []string{"-1\n", "0\n", "1\n"}, out.String())
		}
	}
}

func TestCompareLengthMismatch(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	a := writeTestFile(t, "a.txt", "abc")
	b := writeTestFile(t, "b.txt", "abcd")

	err := run([]string{"compare", "--a", a, "--b", b}, &bytes.Buffer{})
	var ia common.InvalidArgumentError
	assert.True(t, errors.As(err, &ia), "Expected InvalidArgumentError, got %v", err)

	err = run([]string{"compare", "--a", a}, &bytes.Buffer{})
	assert.True(t, errors.As(err, &ia), "Expected InvalidArgumentError, got %v", err)
}

func TestUsageErrors(t *testing.T) {
	assert.NotNil(t, run(nil, &bytes.Buffer{}))
	err := run([]string{"sort"}, &bytes.Buffer{})
	require.NotNil(t, err)
	assert.True(t, strings.Contains(err.Error(), "unknown command"))
	assert.NotNil(t, run([]string{"compare", "--workers", "-1", "--random", "10"}, &bytes.Buffer{}))
}

func freePort(t *testing.T) string {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	defer lis.Close()
	_, port, err := net.SplitHostPort(lis.Addr().String())
	require.Nil(t, err)
	return port
}

func TestClusterCompare(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	conf := writeTestFile(t, "config.yaml", "port: \"0\"\npeers: 3\n")
	a := writeTestFile(t, "a.txt", "lexicographic ordering")
	b := writeTestFile(t, "b.txt", "lexicographic orderinG")

	out := &bytes.Buffer{}
	require.Nil(t, run([]string{"compare", "--cluster", "--config", conf, "--a", a, "--b", b}, out))
	assert.Equal(t, "1\n", out.String())
}

func TestCoordinatorAndPeers(t *testing.T) {
	test.CreateTestDirectory(testDirectory)
	defer test.CleanupTestDirectory(testDirectory)

	conf := writeTestFile(t, "config.yaml", fmt.Sprintf("port: \"%s\"\npeers: 2\ndialTimeout: 2s\n", freePort(t)))
	a := writeTestFile(t, "a.txt", "0123456789")
	b := writeTestFile(t, "b.txt", "0123406789")

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out := &bytes.Buffer{}
		err := run([]string{"coordinator", "--config", conf, "--length", "10", "--timeout", "10s"}, out)
		done <- result{out.String(), err}
	}()

	for _, rank := range []string{"1", "0"} {
		out := &bytes.Buffer{}
		require.Nil(t, run([]string{"peer", "--config", conf, "--rank", rank, "--a", a, "--b", b}, out))
		assert.True(t, strings.HasPrefix(out.String(), "rank "+rank))
	}

	res := <-done
	require.Nil(t, res.err)
	assert.Equal(t, "1\n", res.out)
}
