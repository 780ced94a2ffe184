package webhook

import (
	"fmt"
	"strconv"
	"strings"
)

// HexToColor parses "#7b68ee" or "7b68ee" into the 24-bit integer Discord expects.
func HexToColor(hex string) (int, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if s == "" {
		return 0, fmt.Errorf("%w: empty hex color", ErrInvalidColor)
	}

	v, err := strconv.ParseInt(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidColor, err)
	}

	if v < 0 || v > MaxColor {
		return 0, ErrInvalidColor
	}

	return int(v), nil
}

func ColorToHex(color int) string {
	return fmt.Sprintf("#%06x", color&MaxColor)
}
