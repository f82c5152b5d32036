package schedule

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// NoTimeBucket labels the calendar bucket for unscheduled sessions.
const NoTimeBucket = "No Time"

type Bucket struct {
	Label   string
	Entries []Entry
}

// GroupByTimeOfDay buckets sessions by their local start clock (HH:mm in
// the display zone). Unscheduled sessions land in the "No Time" bucket.
// Buckets come back ordered alphabetically by label.
func GroupByTimeOfDay(entries []Entry, z Zone) []Bucket {
	byLabel := make(map[string][]Entry)
	for _, entry := range entries {
		label := NoTimeBucket
		if at, dated := entry.Timing.Instant(); dated {
			label = at.In(z.Location()).Format("15:04")
		}
		byLabel[label] = append(byLabel[label], entry)
	}
	return sortedBuckets(byLabel)
}

// GroupByTrainer buckets sessions by trainer display name. nameOf maps a
// trainer id to its full name; unknown ids fall back to the numeric id
// so no session silently disappears from the view.
func GroupByTrainer(entries []Entry, nameOf func(int64) string) []Bucket {
	byLabel := make(map[string][]Entry)
	for _, entry := range entries {
		label := ""
		if nameOf != nil {
			label = strings.TrimSpace(nameOf(entry.TrainerID))
		}
		if label == "" {
			label = "Trainer " + strconv.FormatInt(entry.TrainerID, 10)
		}
		byLabel[label] = append(byLabel[label], entry)
	}
	return sortedBuckets(byLabel)
}

func sortedBuckets(byLabel map[string][]Entry) []Bucket {
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	buckets := make([]Bucket, 0, len(labels))
	for _, label := range labels {
		buckets = append(buckets, Bucket{Label: label, Entries: byLabel[label]})
	}
	return buckets
}

// ClientGroup aggregates the sessions shared by one exact set of
// members, regardless of the order members were attached in.
type ClientGroup struct {
	MemberIDs   []int64 `json:"member_ids"`
	Total       int     `json:"total"`
	Upcoming    int     `json:"upcoming"`
	Completed   int     `json:"completed"`
	Cancelled   int     `json:"cancelled"`
	Unscheduled int     `json:"unscheduled"`
	Revenue     float64 `json:"revenue"`
}

// ClientGroups clusters sessions by participating member-id set and
// tallies per-status counts plus summed revenue. Cancelled sessions are
// counted but earn nothing. Groups come back ordered by their member-id
// key for deterministic output.
func ClientGroups(entries []Entry, now time.Time, z Zone) []ClientGroup {
	groups := make(map[string]*ClientGroup)
	keys := make([]string, 0)

	for _, entry := range entries {
		ids := append([]int64(nil), entry.MemberIDs...)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		key := memberKey(ids)

		group, ok := groups[key]
		if !ok {
			group = &ClientGroup{MemberIDs: ids}
			groups[key] = group
			keys = append(keys, key)
		}

		group.Total++
		switch Classify(entry, now, z) {
		case StatusUpcoming:
			group.Upcoming++
		case StatusCompleted:
			group.Completed++
		case StatusCancelled:
			group.Cancelled++
		case StatusUnscheduled:
			group.Unscheduled++
		}
		if !entry.Cancelled {
			group.Revenue += entry.Price
		}
	}

	sort.Strings(keys)
	result := make([]ClientGroup, 0, len(keys))
	for _, key := range keys {
		result = append(result, *groups[key])
	}
	return result
}

func memberKey(sorted []int64) string {
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
