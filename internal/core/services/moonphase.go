package services

import (
	"fmt"
	"math"
	"time"
)

const synodicMonth = 29.530588853

// knownNewMoon is the new moon of 2000-01-06 18:14 UTC.
var knownNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

var moonPhases = [8]struct {
	symbol string
	name   string
}{
	{"🌑", "New moon"},
	{"🌒", "Waxing crescent"},
	{"🌓", "First quarter"},
	{"🌔", "Waxing gibbous"},
	{"🌕", "Full moon"},
	{"🌖", "Waning gibbous"},
	{"🌗", "Last quarter"},
	{"🌘", "Waning crescent"},
}

// MoonAge returns the age of the moon in days at noon UTC of the ISO date.
func MoonAge(date string) (float64, bool) {
	d, err := time.Parse(isoDate, date)
	if err != nil {
		return 0, false
	}
	noon := d.Add(12 * time.Hour)
	days := float64(noon.Unix()-knownNewMoon.Unix()) / secondsPerDay
	age := math.Mod(days, synodicMonth)
	if age < 0 {
		age += synodicMonth
	}
	return age, true
}

// MoonPhase returns a token like "7 🌓 First quarter" for an ISO date:
// the moon's age in whole days, a symbol and the phase name.
// An empty or malformed date gives "".
func MoonPhase(date string) string {
	age, ok := MoonAge(date)
	if !ok {
		return ""
	}
	index := int(math.Floor(age/synodicMonth*8+0.5)) % 8
	phase := moonPhases[index]
	return fmt.Sprintf("%d %s %s", int(age), phase.symbol, phase.name)
}
