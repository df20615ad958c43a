package lines

import (
	"fmt"
	"strings"
	"time"
)

// Stats captures what the cleaner did to one document.
type Stats struct {
	InputBytes  int `json:"input_bytes"`
	OutputBytes int `json:"output_bytes"`

	// Line counts. LinesIn excludes blank lines.
	LinesIn   int            `json:"lines_in"`
	LinesKept int            `json:"lines_kept"`
	Dropped   map[Reason]int `json:"dropped"`
	Merges    int            `json:"merges"`

	CommentsRemoved int `json:"comments_removed"`

	// Duration marshals as integer nanoseconds.
	Duration time.Duration `json:"duration_ns"`
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		Dropped: make(map[Reason]int),
	}
}

// ReductionPercent returns the percentage reduction in size.
func (s *Stats) ReductionPercent() float64 {
	if s.InputBytes == 0 {
		return 0
	}
	return float64(s.InputBytes-s.OutputBytes) / float64(s.InputBytes) * 100
}

// TotalDropped returns the number of lines dropped by any rule.
func (s *Stats) TotalDropped() int {
	total := 0
	for _, count := range s.Dropped {
		total += count
	}
	return total
}

// Add accumulates other into s.
func (s *Stats) Add(other *Stats) {
	if other == nil {
		return
	}
	s.InputBytes += other.InputBytes
	s.OutputBytes += other.OutputBytes
	s.LinesIn += other.LinesIn
	s.LinesKept += other.LinesKept
	s.Merges += other.Merges
	s.CommentsRemoved += other.CommentsRemoved
	s.Duration += other.Duration
	for reason, count := range other.Dropped {
		s.Dropped[reason] += count
	}
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %d -> %d bytes (%.1f%% reduction)\n",
		s.InputBytes, s.OutputBytes, s.ReductionPercent()))

	sb.WriteString(fmt.Sprintf("Lines: %d in, %d kept, %d dropped, %d merges\n",
		s.LinesIn, s.LinesKept, s.TotalDropped(), s.Merges))

	if len(s.Dropped) > 0 {
		sb.WriteString("Dropped by rule: ")
		parts := make([]string, 0, len(s.Dropped))
		for _, reason := range Reasons {
			if count := s.Dropped[reason]; count > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", reason, count))
			}
		}
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if s.CommentsRemoved > 0 {
		sb.WriteString(fmt.Sprintf("Comments removed: %d\n", s.CommentsRemoved))
	}

	sb.WriteString(fmt.Sprintf("Timing: total=%v\n", s.Duration.Round(time.Microsecond)))

	return sb.String()
}

// Result contains the output of a cleaning operation.
type Result struct {
	// Content is the cleaned text.
	Content string `json:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats"`
}
