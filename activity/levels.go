package activity

import (
	"time"

	"github.com/google/go-github/v57/github"
)

// Days is the size of the activity window.
const Days = 7

const dateLayout = "2006-01-02"

// DailyCommits buckets push events into the last Days UTC calendar dates,
// oldest first, today last. Events outside the window are ignored.
func DailyCommits(events []*github.Event, now time.Time) [Days]int {
	index := make(map[string]int, Days)
	today := now.UTC()
	for i := 0; i < Days; i++ {
		day := today.AddDate(0, 0, -(Days - 1 - i))
		index[day.Format(dateLayout)] = i
	}

	var counts [Days]int
	for _, e := range events {
		if e.GetType() != "PushEvent" {
			continue
		}
		i, ok := index[e.GetCreatedAt().UTC().Format(dateLayout)]
		if !ok {
			continue
		}
		counts[i] += pushCommits(e)
	}
	return counts
}

func pushCommits(e *github.Event) int {
	payload, err := e.ParsePayload()
	if err != nil {
		return 0
	}
	push, ok := payload.(*github.PushEvent)
	if !ok {
		return 0
	}
	if push.Size != nil {
		return push.GetSize()
	}
	return len(push.Commits)
}

// Levels classifies each day's commits into 0..3 relative to the busiest day.
func Levels(counts [Days]int) [Days]int {
	peak := 1
	for _, c := range counts {
		if c > peak {
			peak = c
		}
	}

	var levels [Days]int
	for i, c := range counts {
		switch {
		case c <= 0:
			levels[i] = 0
		case float64(c) <= float64(peak)/3:
			levels[i] = 1
		case float64(c) <= 2*float64(peak)/3:
			levels[i] = 2
		default:
			levels[i] = 3
		}
	}
	return levels
}

func total(counts [Days]int) int {
	sum := 0
	for _, c := range counts {
		sum += c
	}
	return sum
}
