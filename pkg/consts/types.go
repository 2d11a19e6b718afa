package consts

import (
	"fmt"
	"strings"
)

// ClockMode identifies one operating configuration of the Multipurpose Clock Generator (MCG).
// The declaration order is used for table indexing only.
type ClockMode uint8

const (
	ClockModeNone ClockMode = iota // Sentinel, never a valid table key or value
	ClockModeFEI                   // FLL Engaged Internal
	ClockModeFEE                   // FLL Engaged External
	ClockModeFBI                   // FLL Bypassed Internal
	ClockModeBLPI                  // Bypassed Low Power Internal
	ClockModeFBE                   // FLL Bypassed External
	ClockModeBLPE                  // Bypassed Low Power External
	ClockModePBE                   // PLL Bypassed External
	ClockModePEE                   // PLL Engaged External
)

// NumOperatingModes is the number of non-sentinel clock modes.
const NumOperatingModes = 8

const (
	// DefaultResetMode is the mode the MCG is in out of power-on reset.
	DefaultResetMode = ClockModeFEI
	// MaxTransitionSteps is the worst-case path length tolerated before a
	// request is declared unreachable or divergent.
	MaxTransitionSteps = 6
)

var modeNames = [...]string{
	ClockModeNone: "None",
	ClockModeFEI:  "FEI",
	ClockModeFEE:  "FEE",
	ClockModeFBI:  "FBI",
	ClockModeBLPI: "BLPI",
	ClockModeFBE:  "FBE",
	ClockModeBLPE: "BLPE",
	ClockModePBE:  "PBE",
	ClockModePEE:  "PEE",
}

// String returns the short display name. Out-of-range values map to "None".
func (m ClockMode) String() string {
	if int(m) >= len(modeNames) {
		return modeNames[ClockModeNone]
	}
	return modeNames[m]
}

// Valid reports whether m is one of the eight operating modes.
func (m ClockMode) Valid() bool {
	return m >= ClockModeFEI && m <= ClockModePEE
}

// Index returns the zero-based table position of an operating mode.
func (m ClockMode) Index() (int, bool) {
	if !m.Valid() {
		return -1, false
	}
	return int(m - ClockModeFEI), true
}

// ModeAt is the inverse of Index.
func ModeAt(idx int) (ClockMode, bool) {
	if idx < 0 || idx >= NumOperatingModes {
		return ClockModeNone, false
	}
	return ClockModeFEI + ClockMode(idx), true
}

// DisplayName is total over every ClockMode value, including the sentinel.
func DisplayName(m ClockMode) string {
	return m.String()
}

// OperatingModes lists the eight operating modes in table order.
func OperatingModes() []ClockMode {
	modes := make([]ClockMode, 0, NumOperatingModes)
	for m := ClockModeFEI; m <= ClockModePEE; m++ {
		modes = append(modes, m)
	}
	return modes
}

// ParseClockMode resolves a display name (case-insensitive) to an operating mode.
func ParseClockMode(name string) (ClockMode, error) {
	want := strings.TrimSpace(name)
	for _, m := range OperatingModes() {
		if strings.EqualFold(m.String(), want) {
			return m, nil
		}
	}
	return ClockModeNone, fmt.Errorf("unknown clock mode %q", name)
}

// MarshalYAML writes the display name instead of the numeric value.
func (m ClockMode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}

// UnmarshalYAML accepts display names only.
func (m *ClockMode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseClockMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Personal.AI order the ending
