package shell

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompterSelect(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("7\nabc\n2\n"), &out)

	choice, err := p.Select("Pick one:", []string{"first", "second"})
	require.NoError(t, err)

	assert.Equal(t, 1, choice)
	assert.Contains(t, out.String(), "1. first\n2. second\n")
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid choice"))
}

func TestLinePrompterInputRevalidates(t *testing.T) {
	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("bad\n  good  \n"), &out)

	answer, err := p.Input("Value", func(s string) error {
		if s != "good" {
			return errors.New("not good")
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, "good", answer)
	assert.Contains(t, out.String(), "not good")
}

func TestLinePrompterConfirm(t *testing.T) {
	tests := []struct {
		input string
		def   bool
		want  bool
	}{
		{"\n", true, true},
		{"\n", false, false},
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"maybe\nno\n", true, false},
		{"y", false, true},
	}

	for _, tt := range tests {
		p := NewLinePrompter(strings.NewReader(tt.input), io.Discard)
		got, err := p.Confirm("Sure?", tt.def)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestLinePrompterEOF(t *testing.T) {
	p := NewLinePrompter(strings.NewReader(""), io.Discard)

	_, err := p.Select("Pick", []string{"a"})
	assert.ErrorIs(t, err, io.EOF)
	_, err = p.Confirm("Sure?", true)
	assert.ErrorIs(t, err, io.EOF)
}
