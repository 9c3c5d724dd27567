package utils

import (
	"strconv"
	"strings"
)

const sizeUnitStep = 1024

var sizeUnits = [...]string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders byteCount in the largest binary unit that keeps the
// value at or above one. Values below ten keep a single decimal place.
func FormatFileSize(byteCount int64) string {
	if byteCount < sizeUnitStep {
		return strconv.FormatInt(max(byteCount, 0), 10) + sizeUnits[0]
	}
	scaled := float64(byteCount)
	unitIndex := 0
	for scaled >= sizeUnitStep && unitIndex < len(sizeUnits)-1 {
		scaled /= sizeUnitStep
		unitIndex++
	}
	precision := 0
	if scaled < 10 {
		precision = 1
	}
	formatted := strings.TrimSuffix(strconv.FormatFloat(scaled, 'f', precision, 64), ".0")
	return formatted + sizeUnits[unitIndex]
}
