// Package journey reconstructs a patient's chronological care journey
// from the unordered ATD record set of one patient (optionally one stay).
package journey

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"patient-journey/internal/hl7"
	"patient-journey/internal/models"
	"patient-journey/internal/reference"
)

// ErrNoEvents is returned when no admission/transfer/discharge event
// survives filtering. Callers surface it as a not-found condition, which
// is distinct from a decode failure.
var ErrNoEvents = errors.New("no admission, transfer or discharge events found")

// Two transfers for the same stay and unit closer than this are upstream
// duplicates, not real movements.
const dedupWindow = 5 * time.Minute

const displayLayout = "02/01/2006 15:04:05"

type event struct {
	code      models.EventCode
	at        time.Time
	unit      string
	service   string
	stay      string
	patient   string
	physician string
}

// Build filters, deduplicates and orders a patient's ATD records into a
// journey with per-segment durations.
func Build(records []models.WishRecord) ([]models.JourneyEntry, error) {
	events := qualify(records)
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	events, admission := collapseAdmissions(events)
	events = dedupTransfers(events)
	events = admissionFirst(events, admission)

	entries := make([]models.JourneyEntry, 0, len(events))
	for i, e := range events {
		entry := models.JourneyEntry{
			StayID:    e.stay,
			PatientID: e.patient,
			Resource:  fmt.Sprintf("%s - %s", e.code, e.code.Label()),
			Unit:      reference.UnitLabelOrCode(e.unit),
			Service:   serviceLabel(e.service),
			Start:     e.at.Format(displayLayout),
			Physician: e.physician,
		}
		switch {
		case i < len(events)-1:
			next := events[i+1]
			entry.End = next.at.Format(displayLayout)
			entry.Elapsed = formatDuration(next.at.Sub(e.at))
		case e.code == models.EventDischarge:
			entry.End = e.at.Format(displayLayout)
			if admission != nil {
				entry.TotalStay = formatDuration(e.at.Sub(admission.at))
			}
		default:
			entry.End = models.InProgress
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// BuildAll reconstructs one journey per stay and concatenates them in
// chronological order, for timeline views spanning every hospitalization
// of a patient. The latest-admission collapse applies within each stay
// only, so an earlier stay keeps its own admission on the combined
// timeline. Stays whose records yield no qualifying events are skipped.
func BuildAll(records []models.WishRecord) ([]models.JourneyEntry, error) {
	groups := make(map[string][]models.WishRecord)
	for _, rec := range records {
		var stay string
		if rec.StayID != nil {
			stay = *rec.StayID
		}
		groups[stay] = append(groups[stay], rec)
	}

	type stayJourney struct {
		first   time.Time
		entries []models.JourneyEntry
	}
	journeys := make([]stayJourney, 0, len(groups))
	for _, group := range groups {
		entries, err := Build(group)
		if errors.Is(err, ErrNoEvents) {
			continue
		}
		if err != nil {
			return nil, err
		}
		first, _ := time.Parse(displayLayout, entries[0].Start)
		journeys = append(journeys, stayJourney{first: first, entries: entries})
	}
	if len(journeys) == 0 {
		return nil, ErrNoEvents
	}

	sort.Slice(journeys, func(i, j int) bool {
		if !journeys[i].first.Equal(journeys[j].first) {
			return journeys[i].first.Before(journeys[j].first)
		}
		return journeys[i].entries[0].StayID < journeys[j].entries[0].StayID
	})
	var out []models.JourneyEntry
	for _, j := range journeys {
		out = append(out, j.entries...)
	}
	return out, nil
}

// qualify keeps A01/A02/A03 records with a decodable effective timestamp
// and sorts them ascending.
func qualify(records []models.WishRecord) []event {
	var events []event
	for _, rec := range records {
		if rec.EventCode == nil || rec.EffectiveAt == nil {
			continue
		}
		code, ok := models.ParseEventCode(*rec.EventCode)
		if !ok {
			continue
		}
		at, ok := hl7.ParseISO(*rec.EffectiveAt)
		if !ok {
			continue
		}
		e := event{
			code:    code,
			at:      at,
			unit:    rec.UnitCode,
			service: rec.ServiceCode,
		}
		if rec.StayID != nil {
			e.stay = *rec.StayID
		}
		if rec.PatientID != nil {
			e.patient = *rec.PatientID
		}
		if rec.Physician != nil {
			e.physician = *rec.Physician
		}
		events = append(events, e)
	}
	sortByTime(events)
	return events
}

func sortByTime(events []event) {
	// Insertion sort keeps the pass stable; journeys are small.
	for i := 1; i < len(events); i++ {
		for j := i; j > 0 && events[j].at.Before(events[j-1].at); j-- {
			events[j], events[j-1] = events[j-1], events[j]
		}
	}
}

// collapseAdmissions retains only the chronologically latest admission.
// Earlier admissions are stale re-admissions superseded by the latest.
func collapseAdmissions(events []event) ([]event, *event) {
	var latest *event
	for i := range events {
		if events[i].code == models.EventAdmission {
			latest = &events[i]
		}
	}
	if latest == nil {
		return events, nil
	}
	adm := *latest
	out := events[:0]
	for _, e := range events {
		if e.code == models.EventAdmission && e != adm {
			continue
		}
		out = append(out, e)
	}
	return out, &adm
}

// dedupTransfers collapses adjacent same-stay same-unit transfers inside
// the dedup window. The one carrying a priority technical service
// (operating or recovery room) wins; otherwise the later of the pair is
// kept and the earlier one is treated as a noise blip.
func dedupTransfers(events []event) []event {
	var out []event
	for _, e := range events {
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.code == models.EventTransfer && e.code == models.EventTransfer &&
				last.stay == e.stay && last.unit == e.unit &&
				e.at.Sub(last.at) < dedupWindow {
				if reference.IsPriorityService(last.service) && !reference.IsPriorityService(e.service) {
					continue
				}
				out[len(out)-1] = e
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// admissionFirst reinserts the retained admission as the first entry
// regardless of where deduplication left it.
func admissionFirst(events []event, admission *event) []event {
	if admission == nil {
		return events
	}
	out := make([]event, 0, len(events))
	out = append(out, *admission)
	for _, e := range events {
		if e == *admission {
			continue
		}
		out = append(out, e)
	}
	return out
}

func serviceLabel(code string) string {
	if code == "" {
		return ""
	}
	if label := reference.ServiceLabel(code); label != "" {
		return label
	}
	return code
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%02dm", h, m)
}
