package twitter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iconidentify/xclip/internal/domain"
)

// SyndicationToken derives the embed token the syndication CDN expects:
// base36((id / 1e15) * pi) with every '0' and '.' removed.
func SyndicationToken(postID string) (string, error) {
	if !ValidPostID(postID) {
		return "", fmt.Errorf("%w: non-numeric post id %q", domain.ErrFetchFailed, postID)
	}
	n, err := strconv.ParseFloat(postID, 64)
	if err != nil {
		return "", fmt.Errorf("%w: parse post id: %v", domain.ErrFetchFailed, err)
	}

	s := formatRadix((n/1e15)*math.Pi, 36)
	return strings.Map(func(r rune) rune {
		if r == '0' || r == '.' {
			return -1
		}
		return r
	}, s), nil
}

const radixDigits = "0123456789abcdefghijklmnopqrstuvwxyz"

// formatRadix renders v in the given radix the way JavaScript's
// Number.prototype.toString(radix) does: fraction digits are emitted only
// up to the precision of the input double, rounding half to even.
func formatRadix(v float64, radix int) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 0) {
		if v < 0 {
			return "-Infinity"
		}
		return "Infinity"
	}
	if v == 0 {
		return "0"
	}

	negative := v < 0
	if negative {
		v = -v
	}
	r := float64(radix)

	integer := math.Floor(v)
	fraction := v - integer

	delta := 0.5 * (math.Nextafter(v, math.Inf(1)) - v)
	delta = math.Max(math.Nextafter(0, 1), delta)

	var frac []byte
	if fraction >= delta {
		frac = append(frac, '.')
		for {
			// Explicit conversions keep each step rounded to float64.
			fraction = float64(fraction * r)
			delta = float64(delta * r)
			digit := int(fraction)
			frac = append(frac, radixDigits[digit])
			fraction -= float64(digit)

			if fraction > 0.5 || (fraction == 0.5 && digit&1 == 1) {
				if fraction+delta > 1 {
					// Round up, propagating the carry through written digits.
					for {
						last := len(frac) - 1
						if last == 0 {
							integer++
							frac = frac[:0]
							break
						}
						d := strings.IndexByte(radixDigits, frac[last])
						if d+1 < radix {
							frac[last] = radixDigits[d+1]
							break
						}
						frac = frac[:last]
					}
					break
				}
			}
			if fraction < delta {
				break
			}
		}
	}

	var intDigits []byte
	for doubleExponent(integer/r) > 0 {
		integer /= r
		intDigits = append(intDigits, '0')
	}
	for {
		rem := math.Mod(integer, r)
		intDigits = append(intDigits, radixDigits[int(rem)])
		integer = (integer - rem) / r
		if integer <= 0 {
			break
		}
	}

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i := len(intDigits) - 1; i >= 0; i-- {
		b.WriteByte(intDigits[i])
	}
	b.Write(frac)
	return b.String()
}

// doubleExponent is the binary exponent of d when written as an integer
// significand times a power of two.
func doubleExponent(d float64) int {
	const (
		significandSize = 52
		exponentBias    = 0x3ff + significandSize
		denormalExp     = -exponentBias + 1
	)
	bits := math.Float64bits(d)
	biased := int((bits >> significandSize) & 0x7ff)
	if biased == 0 {
		return denormalExp
	}
	return biased - exponentBias
}
