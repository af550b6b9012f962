package audio

import (
	"fmt"
	"strings"
)

// FilterChain is one stem's compiled filter expression, labeled for the
// mix stage.
type FilterChain struct {
	Index int
	Label string
	Expr  string
}

// VolumeFilterExpr builds a time-evaluated gain expression from consecutive
// curve point pairs. Each pair contributes one half-open window
// gte(t,t0)*lt(t,t1) multiplied by the window's volume; windows never overlap
// because curve times are strictly increasing.
func VolumeFilterExpr(c Curve) string {
	var terms []string
	for i := 0; i < len(c)-1; i++ {
		terms = append(terms, fmt.Sprintf(
			"gte(t,%.3f)*lt(t,%.3f)*%.4f",
			c[i].Time, c[i+1].Time, c[i].Value,
		))
	}
	return strings.Join(terms, "+")
}

// VolumeFilter wraps the gain expression in a volume filter re-evaluated
// every frame, so the gain tracks the curve as the encoder advances.
func VolumeFilter(c Curve) string {
	return fmt.Sprintf("volume='%s':eval=frame", VolumeFilterExpr(c))
}

// PanGains derives static left/right channel gains from a pan position in
// [-1, 1]. Negative pan attenuates the right channel, positive the left.
func PanGains(pan float64) (left, right float64) {
	left = 1 - pan
	if pan < 0 {
		left = 1
	}
	right = 1 + pan
	if pan > 0 {
		right = 1
	}
	return left, right
}

// PanFilter builds a static stereo split from a single pan position. The
// time-varying pan curve is collapsed to its mean before this is called;
// kept that way for output compatibility.
func PanFilter(pan float64) string {
	left, right := PanGains(pan)
	return fmt.Sprintf("pan=stereo|c0=%.4f*c0|c1=%.4f*c1", left, right)
}

// StemChain compiles one stem's full filter chain: normalize the layout to
// stereo, apply the time-windowed gain, then the static pan split.
func StemChain(index int, volume Curve, pan Curve) FilterChain {
	label := fmt.Sprintf("s%d", index)
	expr := fmt.Sprintf(
		"[%d:a]aformat=sample_rates=44100:channel_layouts=stereo,%s,%s[%s]",
		index, VolumeFilter(volume), PanFilter(pan.Mean()), label,
	)
	return FilterChain{Index: index, Label: label, Expr: expr}
}

// MixGraph combines all stem chains into one filter_complex: every chain,
// then a single amix stage followed by dynamic loudness normalization so the
// sum never clips regardless of stem count.
func MixGraph(chains []FilterChain) string {
	var sb strings.Builder
	for _, ch := range chains {
		sb.WriteString(ch.Expr)
		sb.WriteString(";")
	}
	for _, ch := range chains {
		fmt.Fprintf(&sb, "[%s]", ch.Label)
	}
	fmt.Fprintf(&sb,
		"amix=inputs=%d:duration=longest:dropout_transition=0,dynaudnorm[aout]",
		len(chains),
	)
	return sb.String()
}
