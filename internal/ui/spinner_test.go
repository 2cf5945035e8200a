package ui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer

	s := NewSpinner(&buf, "Resolving accessions")
	s.Start()
	s.Start()
	s.Stop("finished")
	s.Stop("again")

	assert.Equal(t, "Resolving accessions...\nfinished\n", buf.String())
}

func TestShowSpinner(t *testing.T) {
	var buf bytes.Buffer

	err := ShowSpinner(&buf, "Working", func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, "Working...\n✓ Done\n", buf.String())

	buf.Reset()
	boom := errors.New("boom")
	err = ShowSpinner(&buf, "Working", func() error { return boom })
	assert.Equal(t, boom, err)
	assert.Equal(t, "Working...\n✗ Working\n", buf.String())
}

func TestStopBeforeStart(t *testing.T) {
	var buf bytes.Buffer

	NewSpinner(&buf, "idle").Stop("never shown")
	assert.Empty(t, buf.String())
}
