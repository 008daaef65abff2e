package gtfs

import "strings"

// Mode is a normalized transport mode.
type Mode string

const (
	ModeSubway Mode = "subway"
	ModeRail   Mode = "rail"
	ModeBus    Mode = "bus"
	ModeTram   Mode = "tram"
	ModeFerry  Mode = "ferry"
	ModeOther  Mode = "other"
)

// Display returns a human-readable label for the mode, using the Berlin
// network's conventional names.
func (m Mode) Display() string {
	switch m {
	case ModeSubway:
		return "U-Bahn"
	case ModeRail:
		return "S-Bahn"
	case ModeBus:
		return "Bus"
	case ModeTram:
		return "Tram"
	case ModeFerry:
		return "Ferry"
	default:
		return "Public Transport"
	}
}

// DetectMode infers the transport mode from a route's short name and raw
// schedule type code. BVG publishes non-standard route_type values, so the
// name heuristics take precedence: U1-U9 are subway, S-lines and RE/RB are
// rail, M-lines and numbered routes are buses.
func DetectMode(name string, typeCode int) Mode {
	name = strings.ToUpper(strings.TrimSpace(name))

	switch {
	case strings.HasPrefix(name, "U") && len(name) <= 3:
		return ModeSubway
	case strings.HasPrefix(name, "S") && len(name) <= 3:
		return ModeRail
	case strings.HasPrefix(name, "RE"), strings.HasPrefix(name, "RB"):
		return ModeRail
	case strings.HasPrefix(name, "M"), strings.HasPrefix(name, "BUS"), isDigits(name):
		return ModeBus
	case strings.Contains(name, "TRAM"), strings.HasPrefix(name, "T"):
		return ModeTram
	}

	switch typeCode {
	case 0:
		return ModeTram
	case 1:
		return ModeSubway
	case 2:
		return ModeRail
	case 3:
		return ModeBus
	case 4:
		return ModeFerry
	}
	return ModeOther
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
