package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressIsLifecycleStart(t *testing.T) {
	p := NewProgress()

	assert.Equal(t, 1, p.CurrentLevel)
	assert.False(t, p.Completed)
	assert.Nil(t, p.StartedAt)
	assert.Nil(t, p.EndedAt)
	assert.Nil(t, p.ElapsedSeconds)
	assert.Empty(t, p.Scans)
}

func TestAdvanceMovesToTargetAndLogsScan(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewProgress()

	next := p.Advance(2, now, false)

	assert.Equal(t, 2, next.CurrentLevel)
	assert.False(t, next.Completed)
	require.Len(t, next.Scans, 1)
	assert.Equal(t, Scan{Level: 2, ScannedAt: now}, next.Scans[0])

	// Original is untouched
	assert.Equal(t, 1, p.CurrentLevel)
	assert.Empty(t, p.Scans)
}

func TestAdvanceFinalCompletesAndTruncatesElapsed(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(90*time.Second + 999*time.Millisecond)
	p := NewProgress()
	p.StartedAt = &start
	p.CurrentLevel = 11

	next := p.Advance(12, end, true)

	assert.True(t, next.Completed)
	require.NotNil(t, next.EndedAt)
	assert.Equal(t, end, *next.EndedAt)
	require.NotNil(t, next.ElapsedSeconds)
	assert.Equal(t, int64(90), *next.ElapsedSeconds)
}

func TestAdvanceFinalWithoutStartYieldsZero(t *testing.T) {
	p := NewProgress()
	p.CurrentLevel = 11

	next := p.Advance(12, time.Now(), true)

	require.NotNil(t, next.ElapsedSeconds)
	assert.Equal(t, int64(0), *next.ElapsedSeconds)
}

func TestCloneDoesNotShareState(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	p := NewProgress()
	p.StartedAt = &start
	p.Scans = append(p.Scans, Scan{Level: 2, ScannedAt: start})

	c := p.Clone()
	c.Scans[0].Level = 99
	*c.StartedAt = start.Add(time.Hour)

	assert.Equal(t, 2, p.Scans[0].Level)
	assert.Equal(t, start, *p.StartedAt)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0h 0m 0s", FormatElapsed(0))
	assert.Equal(t, "0h 1m 5s", FormatElapsed(65))
	assert.Equal(t, "2h 0m 1s", FormatElapsed(7201))
}

func TestAccountCanPlay(t *testing.T) {
	player := &Account{Role: RolePlayer, Active: false}
	admin := &Account{Role: RoleAdmin, Active: false}

	assert.False(t, player.CanPlay())
	assert.True(t, admin.CanPlay())
}

func TestSameInstant(t *testing.T) {
	a := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b := a.In(time.FixedZone("x", 3600))
	c := a.Add(time.Second)

	assert.True(t, SameInstant(nil, nil))
	assert.True(t, SameInstant(&a, &b))
	assert.False(t, SameInstant(&a, &c))
	assert.False(t, SameInstant(&a, nil))
	assert.False(t, SameInstant(nil, &a))
}
