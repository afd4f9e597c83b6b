package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishState_VisibleStates(t *testing.T) {
	tests := []struct {
		state PublishState
		want  []PublishState
	}{
		{NotPublished, nil},
		{PublishDeveloper, []PublishState{PublishDeveloper, PublishNightly, PublishBeta, PublishRelease}},
		{PublishBeta, []PublishState{PublishBeta, PublishRelease}},
		{PublishRelease, []PublishState{PublishRelease}},
		{PublishState(42), nil},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.VisibleStates())
		})
	}
}

func TestPublishState_Parse(t *testing.T) {
	for _, s := range []PublishState{NotPublished, PublishDeveloper, PublishNightly, PublishBeta, PublishRelease} {
		got, err := ParsePublishState(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParsePublishState("beta")
	require.NoError(t, err)
	assert.Equal(t, PublishBeta, got)

	_, err = ParsePublishState("GOLD")
	assert.ErrorIs(t, err, ErrInvalidPublishState)
}

func TestPublishState_IsPublished(t *testing.T) {
	assert.False(t, NotPublished.IsPublished())
	assert.True(t, PublishNightly.IsPublished())
	assert.False(t, PublishState(9).IsPublished())
}

func TestBuildState_Parse(t *testing.T) {
	got, err := ParseBuildState("uploaded")
	require.NoError(t, err)
	assert.Equal(t, BuildUploaded, got)
	assert.Equal(t, "SUCCESS", BuildSuccess.String())

	_, err = ParseBuildState("")
	assert.ErrorIs(t, err, ErrInvalidBuildState)
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("  Alice "))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrSourceNotFound))
	assert.False(t, IsNotFound(ErrInvalidCredentials))
}
