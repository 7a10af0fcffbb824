package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

var playerPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4",
	"#FFEEAD", "#D4A5A5", "#9B59B6", "#E67E22",
	"#2ECC71", "#3498DB",
}

// pickColor returns a palette color nobody in the roster uses yet, falling
// back to a random color once the palette is exhausted.
func pickColor(used []string) string {
	available := make([]string, 0, len(playerPalette))
	for _, color := range playerPalette {
		if !slices.Contains(used, color) {
			available = append(available, color)
		}
	}
	if len(available) == 0 {
		return fmt.Sprintf("#%06x", rand.IntN(0x1000000))
	}
	return available[rand.IntN(len(available))]
}
