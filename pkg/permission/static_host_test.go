package permission

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitAnswer(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case granted := <-ch:
		return granted
	case <-time.After(time.Second):
		t.Fatal("prompt was never answered")
		return false
	}
}

func TestStaticHost_PreGranted(t *testing.T) {
	h := NewStaticHost([]Kind{FineLocation}, false, zerolog.Nop())

	granted, err := h.Query(FineLocation)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestStaticHost_PromptGrantSticks(t *testing.T) {
	h := NewStaticHost(nil, true, zerolog.Nop())

	granted, err := h.Query(FineLocation)
	require.NoError(t, err)
	assert.False(t, granted)

	answers := make(chan bool, 1)
	h.Prompt(FineLocation, func(g bool) { answers <- g })
	assert.True(t, waitAnswer(t, answers))

	granted, err = h.Query(FineLocation)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestStaticHost_PromptDenied(t *testing.T) {
	h := NewStaticHost(nil, false, zerolog.Nop())

	answers := make(chan bool, 1)
	h.Prompt(FineLocation, func(g bool) { answers <- g })
	assert.False(t, waitAnswer(t, answers))

	granted, _ := h.Query(FineLocation)
	assert.False(t, granted)
}
