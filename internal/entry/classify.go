package entry

import "time"

// Partition splits a fetched history into the editable entry for today and the
// read-only past.
type Partition struct {
	TodayEntry      *DailyEntry  `json:"todayEntry"`
	HistoricEntries []DailyEntry `json:"historicEntries"`
	HasTodayEntry   bool         `json:"hasTodayEntry"`
}

// SameDay compares calendar days in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Classify partitions entries by whether UpdatedAt falls on today's calendar
// day, judged in today's location. Input order is preserved. Should more than
// one entry land on today, the first wins and the rest count as history.
func Classify(entries []DailyEntry, today time.Time) Partition {
	p := Partition{HistoricEntries: make([]DailyEntry, 0, len(entries))}
	loc := today.Location()
	for i := range entries {
		if p.TodayEntry == nil && SameDay(entries[i].UpdatedAt, today, loc) {
			e := entries[i]
			p.TodayEntry = &e
			continue
		}
		p.HistoricEntries = append(p.HistoricEntries, entries[i])
	}
	p.HasTodayEntry = p.TodayEntry != nil
	return p
}

// IsToday is the single-record flag: editable form for today, read-only display
// for any other requested day. Both sides are compared by their own calendar
// fields.
func IsToday(requested, today time.Time) bool {
	return DateKey(requested) == DateKey(today)
}
