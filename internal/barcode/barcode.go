// Package barcode generates and validates product barcodes. EAN-13 codes
// carry a real check digit; Code128 is an uppercase passthrough of the
// product code, an identifier proxy rather than a symbol encoding.
package barcode

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	countryPrefix      = "621"  // Philippines
	manufacturerPrefix = "0001" // campus store default
)

// GenerateEAN13 derives a 13-digit EAN from a product identifier: the
// fixed country and manufacturer prefixes, the last four digits found in
// the identifier (zero-padded), a filler zero, and the check digit.
func GenerateEAN13(productID string) string {
	digits := digitsOnly(productID)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	digits = strings.Repeat("0", 4-len(digits)) + digits

	base := countryPrefix + manufacturerPrefix + digits + "0"
	return base + checkDigit(base)
}

// GenerateCode128 returns the product code uppercased.
func GenerateCode128(productCode string) string {
	return strings.ToUpper(productCode)
}

// ValidateEAN13 reports whether the code is 13 digits with a correct
// check digit.
func ValidateEAN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return checkDigit(code[:12]) == code[12:]
}

// checkDigit computes the EAN-13 check digit over the first 12 digits:
// even positions (0-indexed) weigh 1, odd positions weigh 3.
func checkDigit(base12 string) string {
	sum := 0
	for i, r := range base12 {
		d := int(r - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return strconv.Itoa((10 - sum%10) % 10)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LabelSVG renders a simple printable bar pattern for the code. This is a
// visual stand-in, not scannable symbology.
func LabelSVG(code string, width, height int) string {
	var bars strings.Builder
	n := len(code) * 2
	if n == 0 {
		n = 1
	}
	barWidth := float64(width) / float64(n)
	x := 0.0
	for _, r := range code {
		if r%2 == 0 {
			bars.WriteString(fmt.Sprintf(`<rect x="%.1f" y="0" width="%.1f" height="%d" fill="black"/>`, x, barWidth, height-20))
		}
		x += barWidth
		bars.WriteString(fmt.Sprintf(`<rect x="%.1f" y="0" width="%.1f" height="%d" fill="black"/>`, x, barWidth, height-20))
		x += barWidth
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">%s<text x="%d" y="%d" text-anchor="middle" font-size="12" font-family="monospace">%s</text></svg>`,
		width, height, width, height, bars.String(), width/2, height-5, code)
}

// LabelHTML wraps the SVG in a minimal printable label with the product
// name, code and price.
func LabelHTML(name, productCode, code string, unitPrice float64) string {
	svg := LabelSVG(code, 200, 80)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Barcode Label - %s</title></head>
<body onload="window.print()">
<div style="width:220px;text-align:center;font-family:Arial,sans-serif">
<div style="font-weight:bold">%s</div>
%s
<div style="color:#666;font-size:10px">%s</div>
<div style="font-weight:bold">%.2f</div>
</div>
</body>
</html>`, productCode, name, svg, productCode, unitPrice)
}
