package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMain(t *testing.T) {
	out := bytes.NewBuffer([]byte{})
	errout := bytes.NewBuffer([]byte{})
	rc := 0
	exit := func(c int) {
		rc = c
	}

	realMain([]string{"atecc-tool", "version"}, out, errout, exit)
	assert.Equal(t, 80, rc)
	assert.Equal(t, "atecc-tool: error: unexpected argument version\n", errout.String())
	assert.Empty(t, out.String())
}

func TestMain_Random(t *testing.T) {
	out := bytes.NewBuffer([]byte{})
	errout := bytes.NewBuffer([]byte{})
	rc := 0
	exit := func(c int) {
		rc = c
	}

	realMain([]string{"atecc-tool", "--cfg", "cli/testdata/test_success.yaml", "random"}, out, errout, exit)
	assert.Equal(t, 0, rc)
	assert.Equal(t, "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f\n", out.String())

	// the session is released after the command
	out.Reset()
	realMain([]string{"atecc-tool", "--cfg", "cli/testdata/test_success.yaml", "random"}, out, errout, exit)
	assert.Equal(t, 0, rc)
	assert.NotEmpty(t, out.String())
}
