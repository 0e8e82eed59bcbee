package mapdata

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	rComment        = regexp.MustCompile(`#.*`)
	rStateID        = regexp.MustCompile(`(?:^|[\s{])id\s*=\s*(\d+)`)
	rStateName      = regexp.MustCompile(`(?:^|[\s{])name\s*=\s*"([^"]*)"`)
	rStateOwner     = regexp.MustCompile(`\bowner\s*=\s*([A-Za-z0-9]{3,4})\b`)
	rStateCore      = regexp.MustCompile(`\badd_core_of\s*=\s*([A-Za-z0-9]{3,4})\b`)
	rStateClaim     = regexp.MustCompile(`\badd_claim_by\s*=\s*([A-Za-z0-9]{3,4})\b`)
	rStateProvinces = regexp.MustCompile(`\bprovinces\s*=\s*\{([^}]*)\}`)
)

var errStateEmpty = fmt.Errorf("%w: state empty", ErrParse)

// LoadState parses a single history/states file.
func LoadState(path string) (StateDefinition, error) {
	s, err := readText(path)
	if err != nil {
		return StateDefinition{}, err
	}
	state, err := ParseState(s)
	if err != nil {
		return state, fmt.Errorf("%q: %w", path, err)
	}
	return state, nil
}

// ParseState parses the contents of a state file. The file must contain an
// id and a provinces block; everything else is optional.
func ParseState(s string) (state StateDefinition, err error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = rComment.ReplaceAllLiteralString(s, "")
	if strings.TrimSpace(s) == "" {
		return state, errStateEmpty
	}

	r := rStateID.FindStringSubmatch(s)
	if r == nil {
		return state, fmt.Errorf("%w: missing id", ErrParse)
	}
	id, err := strconv.ParseUint(r[1], 10, 32)
	if err != nil {
		return state, fmt.Errorf("%w: id: %v", ErrParse, err)
	}
	state.ID = uint32(id)

	if r = rStateName.FindStringSubmatch(s); r != nil {
		state.Name = r[1]
	}
	if r = rStateOwner.FindStringSubmatch(s); r != nil {
		state.Owner = r[1]
	}
	state.Cores = uniqueTags(rStateCore.FindAllStringSubmatch(s, -1))
	state.Claims = uniqueTags(rStateClaim.FindAllStringSubmatch(s, -1))

	r = rStateProvinces.FindStringSubmatch(s)
	if r == nil {
		return state, ErrNoProvinces
	}
	for _, p := range strings.Fields(r[1]) {
		pID, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return state, fmt.Errorf("%w: state %d: province %q", ErrParse, state.ID, p)
		}
		state.Provinces = append(state.Provinces, uint32(pID))
	}
	return state, nil
}

func uniqueTags(matches [][]string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			tags = append(tags, m[1])
		}
	}
	return tags
}

// LoadAllStates parses every *.txt file in dir in file name order. Files that
// fail to parse are reported to skip, when non-nil, and left out of the
// result. Only an unreadable directory is returned as an error.
func LoadAllStates(dir string, skip func(path string, err error)) ([]StateDefinition, error) {
	entries, err := os.ReadDir(filepath.FromSlash(dir))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	var states []StateDefinition
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		state, err := LoadState(path)
		if err != nil {
			if skip != nil {
				skip(path, err)
			}
			continue
		}
		states = append(states, state)
	}
	return states, nil
}
