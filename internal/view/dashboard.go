package view

import (
	"math"
	"sort"
	"time"
)

const (
	deadlineWindowDays  = 15
	deadlineLimit       = 6
	processGroupDefault = 8
)

type Action struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	DueDate    string `json:"dueDate"`
	DueDateAlt string `json:"due_date"`
}

func (a Action) Due() string {
	if a.DueDate != "" {
		return a.DueDate
	}
	return a.DueDateAlt
}

type Commitment struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Status      string `json:"status"`
	DueDate     string `json:"dueDate"`
	DueDateAlt  string `json:"due_date"`
}

func (c Commitment) Due() string {
	if c.DueDate != "" {
		return c.DueDate
	}
	return c.DueDateAlt
}

type Deadline struct {
	Title   string
	Kind    string
	DueDate time.Time
	Days    int
}

// UpcomingDeadlines merges actions and commitments due within the next 15
// days (inclusive on both ends), sorted by days remaining and capped to the
// six nearest entries.
func UpcomingDeadlines(actions []Action, commitments []Commitment, now time.Time) []Deadline {
	deadlines := make([]Deadline, 0, len(actions)+len(commitments))

	for _, action := range actions {
		if deadline, ok := deadlineFor(action.Title, "action", action.Due(), now); ok {
			deadlines = append(deadlines, deadline)
		}
	}
	for _, commitment := range commitments {
		if deadline, ok := deadlineFor(commitment.Description, "commitment", commitment.Due(), now); ok {
			deadlines = append(deadlines, deadline)
		}
	}

	sort.SliceStable(deadlines, func(i, j int) bool {
		return deadlines[i].Days < deadlines[j].Days
	})
	if len(deadlines) > deadlineLimit {
		deadlines = deadlines[:deadlineLimit]
	}
	return deadlines
}

func deadlineFor(title, kind, due string, now time.Time) (Deadline, bool) {
	parsed, ok := parseDate(due)
	if !ok {
		return Deadline{}, false
	}
	days := int(math.Ceil(parsed.Sub(now).Hours() / 24))
	if days < 0 || days > deadlineWindowDays {
		return Deadline{}, false
	}
	return Deadline{Title: title, Kind: kind, DueDate: parsed, Days: days}, true
}

func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

type ProcessCount struct {
	Process string
	Count   int
}

// GroupByProcess counts risks per process name for charting, keeping the
// first limit labels in first-seen order. Risks without a process fall under
// a shared bucket.
func GroupByProcess(risks []Risk, limit int) []ProcessCount {
	if limit <= 0 {
		limit = processGroupDefault
	}

	counts := map[string]int{}
	order := []string{}
	for _, risk := range risks {
		process := risk.Process()
		if process == "" {
			process = "Sin proceso"
		}
		if _, seen := counts[process]; !seen {
			order = append(order, process)
		}
		counts[process]++
	}

	if len(order) > limit {
		order = order[:limit]
	}
	grouped := make([]ProcessCount, 0, len(order))
	for _, process := range order {
		grouped = append(grouped, ProcessCount{Process: process, Count: counts[process]})
	}
	return grouped
}
