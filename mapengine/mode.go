// Package mapengine assembles a province map snapshot and answers point,
// outline, preview and tile queries against it.
package mapengine

import (
	"errors"
	"strings"
)

var (
	// ErrNotInitialized is returned by queries made before a successful
	// Initialize, or after Clear.
	ErrNotInitialized = errors.New("map context not initialized")
	// ErrNotFound is returned for unknown province or state ids.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is returned for unusable render dimensions.
	ErrInvalidArgument = errors.New("invalid argument")
)

// RenderMode selects which color table a render uses.
type RenderMode int

const (
	ModeProvince RenderMode = iota
	ModeState
	ModeCountry
	ModeTerrain

	numModes
)

var modeNames = [numModes]string{"province", "state", "country", "terrain"}

// ParseRenderMode maps a mode name to a RenderMode. Unknown names fall back
// to ModeProvince.
func ParseRenderMode(s string) RenderMode {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range modeNames {
		if name == s {
			return RenderMode(i)
		}
	}
	return ModeProvince
}

func (m RenderMode) String() string {
	if m < 0 || m >= numModes {
		return modeNames[ModeProvince]
	}
	return modeNames[m]
}

// Modes lists every render mode.
func Modes() []RenderMode {
	return []RenderMode{ModeProvince, ModeState, ModeCountry, ModeTerrain}
}
