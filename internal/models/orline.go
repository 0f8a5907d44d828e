package models

// ORRecord is the canonical operating-room/scheduling record decoded from
// one ORLine dialect message. Field sources span up to eight segment
// types; any missing segment leaves the matching fields nil.
type ORRecord struct {
	ID               int64   `json:"id"`
	MessageID        *string `json:"message_id"`
	MessageDate      *string `json:"date_message"`
	MessageType      *string `json:"message_type"`
	PatientID        *string `json:"id_pat"`
	StayID           *string `json:"id_sejour"`
	OperationID      *string `json:"id_ope"`
	OperationDate    *string `json:"date_ope"`
	PrevScheduled    *string `json:"date_ope_prev"`
	Planning         *string `json:"planning"`
	ScheduledStart   *string `json:"heu_deb_ope_prev"`
	TheaterID        *string `json:"id_sal_ope"`
	RoomArrival      *string `json:"arr_sal_ope"`
	ScheduledEnd     *string `json:"heu_fin_ope_prev"`
	ExpectedDuration *string `json:"tps_ope_prev"`
	Anesthesia       *string `json:"anesth"`
	Discipline       *string `json:"discip"`
	OperationType    *string `json:"type_ope"`
	Surgeon          *string `json:"chir"`
	BirthDate        *string `json:"naissance"`
	Sex              *string `json:"sexe"`
}

// Planning-horizon bucket labels, derived from the day gap between the
// operation date and the previous scheduled date.
const (
	PlanningSameDay   = "D0"
	PlanningShortTerm = ">D1,<D7"
	PlanningLongTerm  = ">D7"
)
