// Package reference holds the static code→label tables shared by the
// decoders and the journey/census builders. The tables are built once and
// never mutated; every consumer goes through the lookup helpers so the
// per-consumer fallback policy stays explicit.
package reference

// unitLabels maps a nursing-unit code to its display label. Union of the
// labels carried by the WISH feed and the journey dashboard.
var unitLabels = map[string]string{
	"101":  "101-DIALYSE",
	"210":  "210-ONCOLOGIE/ENDOCRINOLOGIE",
	"215":  "215-HOPITAL DE JOUR MEDICAL",
	"220":  "220-REVALIDATION",
	"225":  "225-NEUROCHIR/ORTHO (CD5)",
	"230":  "230-CARDIOLOGIE/CHIR. VASCULAIRE",
	"235":  "235-GASTROENTEROLOGIE",
	"240":  "240-MEDECINE INTERNE GENERALE",
	"245":  "245-GERIATRIE",
	"255":  "255-PNEUMOLOGIE/NEPHROLOGIE",
	"310":  "310-SOINS INTENSIFS",
	"311":  "311-SOINS INTENSIFS",
	"316":  "316-SOINS INTENSIFS",
	"317":  "317-STROKE",
	"318":  "318-SOINS INTENSIFS",
	"410":  "410-HOPITAL DE JOUR CHIR/UAPO",
	"410A": "410-HOPITAL DE JOUR CHIR/UAPO-HJ",
	"413":  "413-SALLE DE REVEIL (COVID 19)",
	"415":  "415-HOPITAL DE JOUR CHIRURGICAL",
	"420":  "420-NEUROCHIR/ORTHO (CD7)",
	"425":  "425-NEUROLOGIE",
	"426":  "426-POLYSOMNOGRAPHIE ADULTES",
	"430":  "430-CHIRURGIE ABDOMINALE",
	"435":  "435-GYNECOLOGIE/UROLOGIE",
	"440":  "440-GERIATRIE",
	"445":  "445-GERIATRIE",
	"450":  "450-PSYCHIATRIE COURT SEJOUR",
	"514":  "514-HOPIT. DE JOUR PEDIA MEDICAL",
	"610":  "610-HJ CHIR (CIRCUIT-COURT)",
	"613":  "613-HOPIT. DE JOUR PEDIA CHIR.",
	"640":  "640-PEDIATRIE",
	"700":  "700-URGENCES PEDIATRIQUES",
	"707":  "707-URGENCES ADULTES",
	"809":  "809-SOINS INTENSIFS PEDIATRIQUES",
	"810":  "810-BLOC OBSTETRIQUE",
	"812":  "812-ACCUEIL ACCOUCHEMENT",
	"815":  "815-MIC",
	"820":  "820-NIC",
	"820D": "820D-HAD_PREMI HOME",
	"820K": "820K-KANGOUROU",
	"820M": "820M-MATERNITE/KANGOUROU",
	"820N": "820N-NEONAT/N* (KANGOUROU)",
	"825":  "825-ETUDE DU SOMMEIL PEDIATRIQUE",
	"830":  "830-MATERNITE",
	"835":  "835-MATERNITE",
	"840":  "840-PEDIATRIE",
	"845":  "845-PEDIATRIE",
	"910":  "910-PSYCHIATRIE",
	"8BLE": "BLOC OPERATOIRE EXTERNE -MLE",
	"8MLE": "AMBULATOIRE/FACTURATION - MLE",
	"8SMU": "SMUR - MLE",
}

// serviceLabels maps a technical-service code to its label. Labels kept
// verbatim from the upstream system, typo included.
var serviceLabels = map[string]string{
	"8BLO": "BLOC OPERTAOIRE-MLE",
	"8REV": "SALLE REVEIL-MLE",
	"8BCE": "SALLE CESARIENNE-MLE",
	"8OUT": "EXAMENS HORS-MLE",
}

// priorityServices are the technical services that win tie-breaks during
// transfer deduplication: operating room and recovery room.
var priorityServices = map[string]bool{
	"8BLO": true,
	"8REV": true,
}

// UnitLabel reports the display label of a unit code and whether the code
// is known. Callers decide the fallback: the WISH decoder stores an empty
// label for unknown codes, the journey builder falls back to the raw code.
func UnitLabel(code string) (string, bool) {
	label, ok := unitLabels[code]
	return label, ok
}

// UnitLabelOrCode is the journey-side fallback: the raw code stands in for
// a missing mapping.
func UnitLabelOrCode(code string) string {
	if label, ok := unitLabels[code]; ok {
		return label
	}
	return code
}

// ServiceLabel returns the technical-service label, empty when unmapped.
func ServiceLabel(code string) string {
	return serviceLabels[code]
}

// IsPriorityService reports whether a technical-service code outranks
// plain ward transfers during journey deduplication.
func IsPriorityService(code string) bool {
	return priorityServices[code]
}
