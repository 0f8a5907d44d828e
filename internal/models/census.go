package models

import "time"

// StayKey identifies one hospitalization episode. It is the identity under
// which the census tracks occupancy; it is never persisted on its own.
type StayKey struct {
	PatientID string
	StayID    string
}

// CensusEvent is the normalized (timestamp, code, stay, unit) tuple both
// dialects reduce to before occupancy replay.
type CensusEvent struct {
	At   time.Time
	Code EventCode
	Stay StayKey
	Unit string
}

// HourlySnapshot is the census state after one hour bucket has been
// applied. ByUnit only carries strictly positive counts.
type HourlySnapshot struct {
	Hour          string         `json:"hour"`
	TotalPatients int            `json:"total_patients"`
	ByUnit        map[string]int `json:"by_unit"`
}

// DailyCensus holds the 24 hourly snapshots of one day.
type DailyCensus struct {
	Date         string           `json:"date"`
	HourlyCounts []HourlySnapshot `json:"hourly_counts"`
}

// CensusReport is the full occupancy answer for a date range.
type CensusReport struct {
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	DailyCounts []DailyCensus `json:"daily_counts"`
}
