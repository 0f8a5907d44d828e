// Package census replays ATD events in chronological order to produce a
// facility-wide bed-occupancy count sampled at hourly granularity.
package census

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"patient-journey/internal/hl7"
	"patient-journey/internal/models"
)

// ErrNoEvents is returned when the event set is empty after filtering;
// callers surface it as a not-found condition.
var ErrNoEvents = errors.New("no occupancy events found")

// DefaultRangeDays is the trailing window used when the caller does not
// bound the query.
const DefaultRangeDays = 30

const dateLayout = "2006-01-02"

// State is the running occupancy of the facility at one point of the
// replay: the total patient count, the per-unit counts, and which unit
// each stay currently occupies. The zero value is not usable; start from
// NewState.
type State struct {
	Total int
	Units map[string]int

	current map[models.StayKey]string

	// SkippedUnknown counts transfer/discharge events for stays that were
	// never admitted inside the replayed history. Skipping them is a
	// deliberate recovery choice for missing historical data, and the
	// counter keeps the gap diagnosable.
	SkippedUnknown int

	logger *zap.Logger
}

// NewState returns an empty occupancy state. logger may be nil.
func NewState(logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		Units:   make(map[string]int),
		current: make(map[models.StayKey]string),
		logger:  logger,
	}
}

// Apply advances the state by one event. Transitions are total: an event
// that cannot be applied (transfer or discharge of an unknown stay) is a
// counted no-op.
func (s *State) Apply(e models.CensusEvent) {
	switch e.Code {
	case models.EventAdmission:
		s.Total++
		s.Units[e.Unit]++
		s.current[e.Stay] = e.Unit
	case models.EventTransfer:
		from, known := s.current[e.Stay]
		if !known {
			s.skip(e)
			return
		}
		s.Units[from]--
		s.Units[e.Unit]++
		s.current[e.Stay] = e.Unit
	case models.EventDischarge:
		from, known := s.current[e.Stay]
		if !known {
			s.skip(e)
			return
		}
		s.Total--
		s.Units[from]--
		delete(s.current, e.Stay)
	}
}

func (s *State) skip(e models.CensusEvent) {
	s.SkippedUnknown++
	s.logger.Debug("occupancy event for unknown stay skipped",
		zap.String("code", string(e.Code)),
		zap.String("patient", e.Stay.PatientID),
		zap.String("stay", e.Stay.StayID),
		zap.Time("at", e.At))
}

// Snapshot captures the state for one hour bucket. Zero and negative unit
// counts are excluded rather than floored: a negative count signals a
// missing earlier admission and must not be masked into a zero.
func (s *State) Snapshot(hour string) models.HourlySnapshot {
	byUnit := make(map[string]int)
	for unit, n := range s.Units {
		if n > 0 {
			byUnit[unit] = n
		}
	}
	return models.HourlySnapshot{
		Hour:          hour,
		TotalPatients: s.Total,
		ByUnit:        byUnit,
	}
}

// Aggregator replays event sets into census reports.
type Aggregator struct {
	logger *zap.Logger
}

func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger}
}

// DefaultRange is the trailing 30 days ending today.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	end := midnight(now)
	return end.AddDate(0, 0, -(DefaultRangeDays - 1)), end
}

// Replay runs the event set through the occupancy state machine. Events
// strictly before the start date establish the opening state without
// emitting output; from the start date onward each hour bucket is applied
// and snapshotted. The replay is inherently sequential: each bucket's
// state depends on the previous one, so it must not be parallelized
// across time.
func (a *Aggregator) Replay(events []models.CensusEvent, start, end time.Time) (*models.CensusReport, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.Before(events[j].At)
	})

	start = midnight(start)
	endExclusive := midnight(end).AddDate(0, 0, 1)

	state := NewState(a.logger)
	idx := 0
	for idx < len(events) && events[idx].At.Before(start) {
		state.Apply(events[idx])
		idx++
	}

	report := &models.CensusReport{
		StartDate: start.Format(dateLayout),
		EndDate:   midnight(end).Format(dateLayout),
	}
	for day := start; day.Before(endExclusive); day = day.AddDate(0, 0, 1) {
		daily := models.DailyCensus{
			Date:         day.Format(dateLayout),
			HourlyCounts: make([]models.HourlySnapshot, 0, 24),
		}
		for hour := 0; hour < 24; hour++ {
			bucketEnd := day.Add(time.Duration(hour+1) * time.Hour)
			for idx < len(events) && events[idx].At.Before(bucketEnd) {
				state.Apply(events[idx])
				idx++
			}
			daily.HourlyCounts = append(daily.HourlyCounts, state.Snapshot(fmt.Sprintf("%02d:00", hour)))
		}
		report.DailyCounts = append(report.DailyCounts, daily)
	}

	if state.SkippedUnknown > 0 {
		a.logger.Info("occupancy replay skipped events for unknown stays",
			zap.Int("skipped", state.SkippedUnknown))
	}
	return report, nil
}

// FromWishRecords normalizes decoded ATD records into the common
// (timestamp, code, stay, unit) tuple the replay consumes. Records with
// unknown codes or undecodable timestamps are dropped here, before the
// state machine ever sees them.
func FromWishRecords(records []models.WishRecord) []models.CensusEvent {
	var events []models.CensusEvent
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
		var key models.StayKey
		if rec.PatientID != nil {
			key.PatientID = *rec.PatientID
		}
		if rec.StayID != nil {
			key.StayID = *rec.StayID
		}
		events = append(events, models.CensusEvent{
			At:   at,
			Code: code,
			Stay: key,
			Unit: rec.UnitCode,
		})
	}
	return events
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
