package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweep struct {
	expired int
	err     error
}

func (s *fakeSweep) ExpireOverdueDonations(context.Context) (int, error) {
	return s.expired, s.err
}

func TestNewExpiryJob_RequiresSweep(t *testing.T) {
	_, err := NewExpiryJob(nil, discardLogger())
	require.Error(t, err)
}

func TestExpiryJob_Run(t *testing.T) {
	job, err := NewExpiryJob(&fakeSweep{expired: 3}, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, "donation-expiry-sweep", job.Name())
	require.NoError(t, job.Run(context.Background()))
}

func TestExpiryJob_RunPropagatesError(t *testing.T) {
	job, err := NewExpiryJob(&fakeSweep{err: assert.AnError}, discardLogger())
	require.NoError(t, err)

	require.ErrorIs(t, job.Run(context.Background()), assert.AnError)
}
