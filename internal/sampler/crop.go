package sampler

import (
	"strconv"
	"strings"
)

// ParseCropFilter extracts width and height from "crop=W:H:X:Y" or "W:H:X:Y".
func ParseCropFilter(filter string) (width, height int, ok bool) {
	s := strings.TrimSpace(filter)
	if s == "" {
		return 0, 0, false
	}
	s = strings.TrimPrefix(s, "crop=")
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}
