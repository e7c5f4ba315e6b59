package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixAndOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	defer SetOutput(os.Stdout, os.Stderr)
	defer UpdatePrefix("")

	UpdatePrefix("stud")
	Printf("batch %d open", 3)
	Errorf("ledger down")

	assert.Contains(t, out.String(), "[stud] ")
	assert.Contains(t, out.String(), "batch 3 open")
	assert.Contains(t, errOut.String(), "[stud] ")
	assert.Contains(t, errOut.String(), "log_test.go")
	assert.Contains(t, errOut.String(), "ledger down")

	out.Reset()
	UpdatePrefix("")
	Println("no label")
	assert.NotContains(t, out.String(), "[")
}
