package util

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostPacerSpacesSameHost(t *testing.T) {
	p := NewHostPacer(50 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.WaitURL(context.Background(), "https://a.example/search"))
	require.NoError(t, p.WaitURL(context.Background(), "https://a.example/detail/1"))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 45*time.Millisecond)
}

func TestHostPacerIndependentHosts(t *testing.T) {
	p := NewHostPacer(200 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.WaitURL(context.Background(), "https://a.example/x"))
	require.NoError(t, p.WaitURL(context.Background(), "https://b.example/y"))
	elapsed := time.Since(start)

	// different hosts don't wait on each other
	assert.Less(t, elapsed, 150*time.Millisecond)
}

func TestHostPacerDisabled(t *testing.T) {
	p := NewHostPacer(0)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, p.WaitURL(context.Background(), "https://a.example/x"))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestHostPacerContextCancel(t *testing.T) {
	p := NewHostPacer(time.Hour)
	require.NoError(t, p.WaitURL(context.Background(), "https://a.example/x"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, p.WaitURL(ctx, "https://a.example/y"))
}
