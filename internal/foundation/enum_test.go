package foundation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

func TestNormalizer(t *testing.T) {
	n := NewNormalizer(map[string]color{
		"red":     "red",
		"Crimson": "red",
		"blue":    "blue",
	}, "")

	assert.Equal(t, color("red"), n.Normalize(" RED "))
	assert.Equal(t, color("red"), n.Normalize("crimson"))
	assert.Equal(t, color("blue"), n.Normalize("Blue"))
	assert.Equal(t, color(""), n.Normalize("green"))

	got, err := n.Lookup("crimson")
	require.NoError(t, err)
	assert.Equal(t, color("red"), got)

	_, err = n.Lookup("green")
	require.ErrorIs(t, err, ErrUnknownValue)
	assert.Contains(t, err.Error(), `"green"`)
}
