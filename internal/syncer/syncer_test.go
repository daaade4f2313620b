package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	conf "pricefeed/internal/config"
	"pricefeed/internal/feed"
)

func TestRunOnceRejectsOverlappingRuns(t *testing.T) {
	entered := make(chan struct{}, 2)
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]feed.Batch, error) {
		entered <- struct{}{}
		<-release
		return nil, errors.New("fetch aborted")
	}

	s := New(zerolog.Nop(), &conf.Config{}, fetch, nil)

	done := make(chan error, 1)
	go func() {
		_, err := s.RunOnce(context.Background(), "schedule")
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first run never started")
	}

	// second trigger while the first is mid-fetch
	_, err := s.RunOnce(context.Background(), "http")
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	require.Error(t, <-done)

	// guard is released once the run ends
	_, err = s.RunOnce(context.Background(), "http")
	assert.NotErrorIs(t, err, ErrRunInProgress)
}

func TestIntervalDefaultsToOneHour(t *testing.T) {
	s := New(zerolog.Nop(), &conf.Config{}, nil, nil)
	assert.Equal(t, time.Hour, s.interval())

	s = New(zerolog.Nop(), &conf.Config{Sync: conf.SyncConfig{IntervalMinutes: 15}}, nil, nil)
	assert.Equal(t, 15*time.Minute, s.interval())
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	s := New(zerolog.Nop(), &conf.Config{}, nil, nil)
	s.Stop()
	assert.False(t, s.IsRunning())
}
