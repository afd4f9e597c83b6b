package models

import (
	"fmt"
	"strings"
)

// PublishState is the visibility tier of a Source or ResourceData. Tiers
// are ordered: an item published as BETA is visible to anyone asking for
// DEVELOPER, NIGHTLY or BETA builds, but not to RELEASE-only clients.
type PublishState uint32

const (
	NotPublished PublishState = iota
	PublishDeveloper
	PublishNightly
	PublishBeta
	PublishRelease
)

var publishStateNames = [...]string{"NOTPUBLISHED", "DEVELOPER", "NIGHTLY", "BETA", "RELEASE"}

func (p PublishState) String() string {
	if int(p) < len(publishStateNames) {
		return publishStateNames[p]
	}
	return fmt.Sprintf("PublishState(%d)", uint32(p))
}

// Valid reports whether p is a known state.
func (p PublishState) Valid() bool {
	return int(p) < len(publishStateNames)
}

// IsPublished reports whether p makes an item world-readable.
func (p PublishState) IsPublished() bool {
	return p != NotPublished && p.Valid()
}

// VisibleStates returns every state whose items are listed to a client
// asking for p, i.e. p and all more mature tiers.
func (p PublishState) VisibleStates() []PublishState {
	if !p.IsPublished() {
		return nil
	}
	states := make([]PublishState, 0, int(PublishRelease-p)+1)
	for s := p; s <= PublishRelease; s++ {
		states = append(states, s)
	}
	return states
}

// ParsePublishState parses a state name (case-insensitive).
func ParsePublishState(s string) (PublishState, error) {
	for i, name := range publishStateNames {
		if strings.EqualFold(s, name) {
			return PublishState(i), nil
		}
	}
	return NotPublished, fmt.Errorf("%w: %q", ErrInvalidPublishState, s)
}

// BuildState tracks a Source through the build pipeline.
type BuildState uint32

const (
	BuildCreated BuildState = iota
	BuildUploaded
	BuildBuilding
	BuildSuccess
	BuildError
)

var buildStateNames = [...]string{"CREATED", "UPLOADED", "BUILDING", "SUCCESS", "ERROR"}

func (b BuildState) String() string {
	if int(b) < len(buildStateNames) {
		return buildStateNames[b]
	}
	return fmt.Sprintf("BuildState(%d)", uint32(b))
}

// Valid reports whether b is a known state.
func (b BuildState) Valid() bool {
	return int(b) < len(buildStateNames)
}

// ParseBuildState parses a state name (case-insensitive).
func ParseBuildState(s string) (BuildState, error) {
	for i, name := range buildStateNames {
		if strings.EqualFold(s, name) {
			return BuildState(i), nil
		}
	}
	return BuildCreated, fmt.Errorf("%w: %q", ErrInvalidBuildState, s)
}
