package models

import "encoding/json"

// JourneyEntry is one step of a patient's reconstructed care journey.
// The payload keys match what the dashboard frontend already renders;
// two of them contain characters a struct tag cannot carry, so the
// whole mapping lives in MarshalJSON.
type JourneyEntry struct {
	StayID    string
	PatientID string
	// Resource is "<code> - <label>", e.g. "A01 - ADMISSION".
	Resource string
	Unit     string
	Service  string
	Start    string
	// End is the next entry's start, the discharge's own timestamp for the
	// final entry, or the in-progress sentinel.
	End       string
	Elapsed   string
	TotalStay string
	Physician string
}

// Dashboard payload keys, verbatim.
const (
	keyStay      = "NSEJ"
	keyPatient   = "CBMRN"
	keyResource  = "Resource"
	keyUnit      = "Unité de soins"
	keyService   = "Service technique"
	keyStart     = "Date/heure d'événement"
	keyEnd       = "Date/heure de sortie"
	keyElapsed   = "Temps passé"
	keyTotalStay = "Durée totale de séjour"
	keyPhysician = "Medecin"
)

func (e JourneyEntry) MarshalJSON() ([]byte, error) {
	m := map[string]string{
		keyStay:     e.StayID,
		keyPatient:  e.PatientID,
		keyResource: e.Resource,
		keyUnit:     e.Unit,
		keyStart:    e.Start,
	}
	// Optional columns are omitted when blank, matching the upstream
	// payload shape.
	for key, v := range map[string]string{
		keyService:   e.Service,
		keyEnd:       e.End,
		keyElapsed:   e.Elapsed,
		keyTotalStay: e.TotalStay,
		keyPhysician: e.Physician,
	} {
		if v != "" {
			m[key] = v
		}
	}
	return json.Marshal(m)
}

func (e *JourneyEntry) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	e.StayID = m[keyStay]
	e.PatientID = m[keyPatient]
	e.Resource = m[keyResource]
	e.Unit = m[keyUnit]
	e.Service = m[keyService]
	e.Start = m[keyStart]
	e.End = m[keyEnd]
	e.Elapsed = m[keyElapsed]
	e.TotalStay = m[keyTotalStay]
	e.Physician = m[keyPhysician]
	return nil
}

// InProgress marks the open end of a stay that has no discharge yet.
const InProgress = "EN COURS"
