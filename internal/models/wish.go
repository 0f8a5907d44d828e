package models

// WishRecord is the canonical admission/transfer/discharge record decoded
// from one WISH dialect message. Optional fields are pointers: nil means
// the source segment did not carry the field or it failed to decode.
// JSON tags keep the column names of the upstream system so existing
// dashboard consumers keep working.
type WishRecord struct {
	ID            int64   `json:"id"`
	MessageID     *string `json:"message_id"`
	MessageDate   *string `json:"date_message"`
	EventCode     *string `json:"clrs_cd"`
	StayID        *string `json:"nsej"`
	PatientID     *string `json:"cbmrn"`
	PatientClass  *string `json:"cbtype"`
	AdmissionType *string `json:"cbadty"`
	Source        string  `json:"tsv"`
	EffectiveAt   *string `json:"clfrom"`
	UnitCode      string  `json:"clnsid"`
	UnitLabel     string  `json:"nsdscr"`
	Room          string  `json:"clroom"`
	Bed           string  `json:"clbed"`
	ServiceCode   string  `json:"clsvtc"`
	ServiceLabel  string  `json:"tectxtfr"`
	Department    *string `json:"cldept"`
	PhysicianID   *string `json:"nrpr"`
	Physician     *string `json:"nomm"`
	IssuedAt      *string `json:"cltima"`
}
