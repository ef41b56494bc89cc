package model

// DataType enumerates the personal data categories handled by the system.
type DataType string

const (
	DataTypeSpecial   DataType = "special"
	DataTypeBiometric DataType = "biometric"
	DataTypePublic    DataType = "public"
	DataTypeOther     DataType = "other"
)

// ThreatType enumerates the actual threat types. ThreatUnknown is the
// catch-all answer used when the operator cannot classify the threats.
type ThreatType string

const (
	ThreatType1   ThreatType = "1"
	ThreatType2   ThreatType = "2"
	ThreatType3   ThreatType = "3"
	ThreatUnknown ThreatType = "unknown"
)

// Scope enumerates the number of non-employee data subjects.
type Scope string

const (
	ScopeUnder100k Scope = "under_100k"
	ScopeOver100k  Scope = "over_100k"
)

// AnswerSet is the payload sent to the evaluate endpoint. Threats is always
// serialised as an array, possibly empty.
type AnswerSet struct {
	DataType         DataType     `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	Threats          []ThreatType `json:"threats" yaml:"threats"`
	EmployeesOnly    *bool        `json:"employeesOnly,omitempty" yaml:"employeesOnly,omitempty"`
	NonEmployeeScope Scope        `json:"nonEmployeeScope,omitempty" yaml:"nonEmployeeScope,omitempty"`
}

// HasUnknownThreats reports whether the catch-all threat answer was chosen.
func (a AnswerSet) HasUnknownThreats() bool {
	for _, threat := range a.Threats {
		if threat == ThreatUnknown {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no mutable state with a.
func (a AnswerSet) Clone() AnswerSet {
	out := a
	if a.Threats != nil {
		out.Threats = append([]ThreatType(nil), a.Threats...)
	}
	if a.EmployeesOnly != nil {
		v := *a.EmployeesOnly
		out.EmployeesOnly = &v
	}
	return out
}

// Bool returns a pointer to v, handy when building answer sets by hand.
func Bool(v bool) *bool {
	return &v
}
