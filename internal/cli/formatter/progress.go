package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
	bandTol     = 1e-6
)

// RenderBand renders value against the band [lo, hi] as a bar scaled to hi,
// like [█████████░] 2950. The bar is green inside the band, yellow below it
// and red above it.
func RenderBand(value, lo, hi float64, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 0.0
	if hi > 0 {
		pct = min(max(value/hi, 0), 1)
	}
	filled := int(pct * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case value < lo-bandTol:
		style = StyleYellow
	case value > hi+bandTol:
		style = StyleRed
	}
	return fmt.Sprintf("[%s] %.0f", style.Render(bar), value)
}

// InBand reports whether value lies in [lo, hi] up to solver tolerance.
func InBand(value, lo, hi float64) bool {
	return value >= lo-bandTol && value <= hi+bandTol
}
