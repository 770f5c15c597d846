package schedule

type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Pending   int `json:"pending"`
}

func Summarize(slots []Slot) Summary {
	summary := Summary{Total: len(slots)}
	for _, slot := range slots {
		switch slot.State() {
		case StateTaken:
			summary.Completed++
		case StateSkipped:
			summary.Skipped++
		}
	}
	summary.Pending = summary.Total - summary.Completed - summary.Skipped
	return summary
}

// Percent is the completed share in whole percent; an empty schedule is 0.
func (summary Summary) Percent() int {
	if summary.Total <= 0 {
		return 0
	}
	return summary.Completed * 100 / summary.Total
}
