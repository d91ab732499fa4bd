package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("getting-started", "api")
	assert.True(t, s.Has("api"))
	assert.False(t, s.Has("faq"))

	s.Add("faq")
	s.Add("faq")
	assert.True(t, s.Has("faq"))
	assert.Len(t, s, 3)

	var empty Set[string]
	assert.False(t, empty.Has("api"))
}
