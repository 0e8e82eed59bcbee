package mapdata

import (
	"regexp"
	"strconv"
)

var rCountryColor = regexp.MustCompile(`(?m)^\s*([A-Za-z0-9]{3})\s*=\s*\{\s*color\s*=\s*(?:rgb)?\s*\{\s*(\d+)\s+(\d+)\s+(\d+)\s*\}`)

// LoadCountryColors parses common/countries/colors.txt into a tag to color
// table.
func LoadCountryColors(path string) (map[string]RGBColor, error) {
	s, err := readText(path)
	if err != nil {
		return nil, err
	}
	return ParseCountryColors(s), nil
}

// ParseCountryColors extracts every TAG = { color = rgb { r g b } } entry.
// Entries that do not match, or carry channel values above 255, are dropped.
func ParseCountryColors(s string) map[string]RGBColor {
	colors := make(map[string]RGBColor)
	for _, m := range rCountryColor.FindAllStringSubmatch(rComment.ReplaceAllLiteralString(s, ""), -1) {
		var rgb [3]uint8
		ok := true
		for i := range rgb {
			v, err := strconv.ParseUint(m[i+2], 10, 8)
			if err != nil {
				ok = false
				break
			}
			rgb[i] = uint8(v)
		}
		if ok {
			colors[m[1]] = RGB(rgb[0], rgb[1], rgb[2])
		}
	}
	return colors
}
