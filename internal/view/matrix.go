package view

import "strings"

// Zone is the qualitative band a matrix cell falls into.
type Zone string

const (
	ZoneLow      Zone = "low"
	ZoneModerate Zone = "moderate"
	ZoneHigh     Zone = "high"
	ZoneExtreme  Zone = "extreme"
)

// Risk carries the fields the derived views need. Collections come straight
// from the backend and are never mutated here.
type Risk struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Severity    string `json:"severity"`
	Probability string `json:"probability"`
	Status      string `json:"status"`
	ProcessName string `json:"process_name"`
	ProcessAlt  string `json:"processName"`
}

func (r Risk) Process() string {
	if r.ProcessName != "" {
		return r.ProcessName
	}
	return r.ProcessAlt
}

type Cell struct {
	Probability int // 0..4
	Severity    int // 0..4
	Level       int // (p+1)*(s+1), 1..25
	Zone        Zone
	Items       []Risk
}

// Matrix is the 5x5 probability x severity grid, indexed [probability][severity].
type Matrix [5][5]Cell

// ordinalScale maps the named 5-level scale and its 1-indexed numeric form
// onto 0-based indices.
var ordinalScale = map[string]int{
	"low": 0, "medium": 1, "high": 2, "critical": 3, "very_high": 4,
	"1": 0, "2": 1, "3": 2, "4": 3, "5": 4,
}

// ScaleIndex resolves a severity or probability value to its ordinal,
// case-insensitive. Unrecognized values default to medium.
func ScaleIndex(value string) int {
	if index, ok := ordinalScale[strings.ToLower(strings.TrimSpace(value))]; ok {
		return index
	}
	return 1
}

// ZoneForLevel applies the fixed banding: >=16 extreme, >=10 high,
// >=5 moderate, else low.
func ZoneForLevel(level int) Zone {
	switch {
	case level >= 16:
		return ZoneExtreme
	case level >= 10:
		return ZoneHigh
	case level >= 5:
		return ZoneModerate
	default:
		return ZoneLow
	}
}

// BuildMatrix buckets each risk into exactly one cell by its probability and
// severity ordinals. Risks resolving outside the 5x5 grid are dropped.
func BuildMatrix(risks []Risk) Matrix {
	var matrix Matrix
	for p := 0; p < 5; p++ {
		for s := 0; s < 5; s++ {
			level := (p + 1) * (s + 1)
			matrix[p][s] = Cell{
				Probability: p,
				Severity:    s,
				Level:       level,
				Zone:        ZoneForLevel(level),
			}
		}
	}

	for _, risk := range risks {
		p := ScaleIndex(risk.Probability)
		s := ScaleIndex(risk.Severity)
		if p >= 5 || s >= 5 {
			continue
		}
		matrix[p][s].Items = append(matrix[p][s].Items, risk)
	}
	return matrix
}
