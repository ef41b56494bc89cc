package model

// Measure is a single organisational or technical control returned for a
// protection level. Section holds a category key such as "ИАФ".
type Measure struct {
	Code        string `json:"code"`
	Section     string `json:"section"`
	Description string `json:"description"`
}

// PossibleLevel describes the hypothetical level for one threat type when the
// threat classification is unknown.
type PossibleLevel struct {
	ThreatType ThreatType `json:"threatType"`
	Level      int        `json:"level"`
}

// EvaluationResult is the backend response for an AnswerSet. Level is nil
// when the backend did not settle on a level.
type EvaluationResult struct {
	Level            *int            `json:"level,omitempty"`
	BaseRequirements []string        `json:"baseRequirements"`
	Measures         []Measure       `json:"measures"`
	PossibleLevels   []PossibleLevel `json:"possibleLevels,omitempty"`
	UnknownThreats   bool            `json:"unknownThreats,omitempty"`
}

// Undetermined reports whether the result only carries hypothetical levels.
func (r EvaluationResult) Undetermined() bool {
	return r.UnknownThreats && len(r.PossibleLevels) > 0
}

// Clone returns a deep copy of r.
func (r EvaluationResult) Clone() EvaluationResult {
	out := r
	if r.Level != nil {
		v := *r.Level
		out.Level = &v
	}
	out.BaseRequirements = append([]string(nil), r.BaseRequirements...)
	out.Measures = append([]Measure(nil), r.Measures...)
	out.PossibleLevels = append([]PossibleLevel(nil), r.PossibleLevels...)
	return out
}

// Level returns a pointer to v.
func Level(v int) *int {
	return &v
}
