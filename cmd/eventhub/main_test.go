package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecute(t *testing.T) {
	t.Chdir(t.TempDir())

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"eventhub", "version"}
	assert.NoError(t, Execute())
}
