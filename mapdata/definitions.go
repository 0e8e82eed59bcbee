package mapdata

import (
	"fmt"
	"strconv"
	"strings"
)

// LoadDefinitions parses definition.csv.
func LoadDefinitions(path string) ([]ProvinceDefinition, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	defs, err := ParseDefinitions(lines)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return defs, nil
}

// ParseDefinitions parses definition lines of the form
// id;r;g;b;type;coastal;terrain;continent. Fields may also be separated by
// commas. Lines with fewer than 8 fields are skipped.
func ParseDefinitions(lines []string) ([]ProvinceDefinition, error) {
	var defs []ProvinceDefinition
	for i, s := range lines {
		// Skip commented and empty lines.
		if strings.HasPrefix(strings.TrimSpace(s), "#") {
			continue
		}
		fields := strings.Split(strings.ReplaceAll(s, ",", ";"), ";")
		if len(fields) < 8 {
			continue
		}
		p, err := parseDefinitionFields(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		defs = append(defs, p)
	}
	return defs, nil
}

func parseDefinitionFields(f []string) (p ProvinceDefinition, err error) {
	id, err := strconv.ParseUint(strings.TrimSpace(f[0]), 10, 32)
	if err != nil {
		return p, fmt.Errorf("%w: id: %v", ErrParse, err)
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(strings.TrimSpace(f[i+1]), 10, 8)
		if err != nil {
			return p, fmt.Errorf("%w: %c: %v", ErrParse, "rgb"[i], err)
		}
		rgb[i] = uint8(v)
	}
	p.ID = uint32(id)
	p.Color = RGB(rgb[0], rgb[1], rgb[2])
	p.Type = strings.TrimSpace(f[4])
	p.Coastal = strings.EqualFold(strings.TrimSpace(f[5]), "true")
	p.Terrain = strings.TrimSpace(f[6])
	if c, err := strconv.ParseUint(strings.TrimSpace(f[7]), 10, 32); err == nil {
		p.Continent = uint32(c)
	}
	return p, nil
}
