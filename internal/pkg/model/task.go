package model

// Task is one account to submit a reservation for. Immutable once loaded.
type Task struct {
	AccountID string `json:"account_id" validate:"required"`
	Label     string `json:"label"`
	Token     string `json:"token" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required"`
	// Selection contains one or two benefit codes, sent verbatim in the submit call.
	Selection []int `json:"selection" validate:"required,min=1,max=2,dive,gt=0"`
}

func (t Task) String() string {
	if t.Label != "" {
		return t.Label
	}
	return t.AccountID
}
