package native

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/c360/uploadguard/config"
	"github.com/c360/uploadguard/types"
)

// Built-in PII detectors. Word boundaries keep version strings and longer
// digit runs from matching the shorter patterns.
var (
	phonePattern      = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	ssnPattern        = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	creditCardPattern = regexp.MustCompile(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`)
	ipAddressPattern  = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	emailPattern      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	numericPattern    = regexp.MustCompile(`\b\d{9,12}\b`)
)

// piiDetector runs the built-in detectors plus any custom patterns from
// the operation's configuration
type piiDetector struct {
	custom []customPattern
}

type customPattern struct {
	piiType    string
	re         *regexp.Regexp
	confidence float64
}

func newPIIDetector(patterns []config.PIIPatternConfig) (*piiDetector, error) {
	d := &piiDetector{}
	for _, p := range patterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			return nil, err
		}
		d.custom = append(d.custom, customPattern{
			piiType:    p.Type,
			re:         re,
			confidence: p.Confidence,
		})
	}
	return d, nil
}

// detect scans one chunk; baseOffset shifts chunk-local match positions to
// absolute file positions
func (d *piiDetector) detect(chunk string, baseOffset int) []types.PIIMatch {
	var matches []types.PIIMatch

	for _, loc := range phonePattern.FindAllStringIndex(chunk, -1) {
		m := chunk[loc[0]:loc[1]]
		matches = append(matches, types.PIIMatch{
			Type:       "phone",
			Pattern:    m,
			Position:   baseOffset + loc[0],
			Confidence: phoneConfidence(m),
		})
	}

	for _, loc := range ssnPattern.FindAllStringIndex(chunk, -1) {
		matches = append(matches, types.PIIMatch{
			Type:       "ssn",
			Pattern:    chunk[loc[0]:loc[1]],
			Position:   baseOffset + loc[0],
			Confidence: 0.95,
		})
	}

	for _, loc := range creditCardPattern.FindAllStringIndex(chunk, -1) {
		m := chunk[loc[0]:loc[1]]
		matches = append(matches, types.PIIMatch{
			Type:       "credit_card",
			Pattern:    m,
			Position:   baseOffset + loc[0],
			Confidence: creditCardConfidence(m),
		})
	}

	for _, loc := range ipAddressPattern.FindAllStringIndex(chunk, -1) {
		m := chunk[loc[0]:loc[1]]
		if !isValidIPAddress(m) {
			continue
		}
		matches = append(matches, types.PIIMatch{
			Type:       "ip_address",
			Pattern:    m,
			Position:   baseOffset + loc[0],
			Confidence: 0.9,
		})
	}

	for _, loc := range emailPattern.FindAllStringIndex(chunk, -1) {
		matches = append(matches, types.PIIMatch{
			Type:       "email",
			Pattern:    chunk[loc[0]:loc[1]],
			Position:   baseOffset + loc[0],
			Confidence: 0.85,
		})
	}

	for _, loc := range numericPattern.FindAllStringIndex(chunk, -1) {
		m := chunk[loc[0]:loc[1]]
		// Skip runs already claimed by a more specific detector.
		if len(m) == 10 && phonePattern.MatchString(m) {
			continue
		}
		matches = append(matches, types.PIIMatch{
			Type:       "numeric",
			Pattern:    m,
			Position:   baseOffset + loc[0],
			Confidence: 0.8,
		})
	}

	for _, custom := range d.custom {
		for _, loc := range custom.re.FindAllStringIndex(chunk, -1) {
			matches = append(matches, types.PIIMatch{
				Type:       custom.piiType,
				Pattern:    chunk[loc[0]:loc[1]],
				Position:   baseOffset + loc[0],
				Confidence: custom.confidence,
			})
		}
	}

	return matches
}

func phoneConfidence(phone string) float64 {
	digits := digitsOnly(phone)
	if len(digits) == 10 {
		if strings.ContainsAny(phone, "-.") {
			return 0.9
		}
		return 0.8
	}
	return 0.6
}

func creditCardConfidence(card string) float64 {
	digits := digitsOnly(card)
	if len(digits) == 16 {
		if luhnCheck(digits) {
			return 0.95
		}
		return 0.7
	}
	return 0.5
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

// luhnCheck validates a digit string with the Luhn checksum
func luhnCheck(digits string) bool {
	sum := 0
	alternate := false
	for i := len(digits) - 1; i >= 0; i-- {
		num := int(digits[i] - '0')
		if alternate {
			num *= 2
			if num > 9 {
				num = num%10 + 1
			}
		}
		sum += num
		alternate = !alternate
	}
	return sum%10 == 0
}

// isValidIPAddress requires every dotted octet to parse as 0-255
func isValidIPAddress(ip string) bool {
	for _, octet := range strings.Split(ip, ".") {
		n, err := strconv.Atoi(octet)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}
