package model

// TaskOutcome pairs a task with its terminal outcome.
type TaskOutcome struct {
	Task    Task
	Outcome Outcome
}

// Summary of one run, one entry per input task.
type Summary struct {
	Outcomes []TaskOutcome
}

func (s *Summary) Total() int {
	return len(s.Outcomes)
}

func (s *Summary) Count(status OutcomeStatus) int {
	count := 0
	for _, o := range s.Outcomes {
		if o.Outcome.Status == status {
			count++
		}
	}
	return count
}

func (s *Summary) Succeeded() int {
	return s.Count(StatusSuccess)
}

func (s *Summary) Duplicates() int {
	return s.Count(StatusDuplicate)
}

func (s *Summary) Failed() int {
	return s.Count(StatusFailed)
}
