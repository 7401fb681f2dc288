package domain

import "math"

// OpenTask is an unfinished task annotated with its time estimate. The three
// estimate fields are nil when the task's template has no completed history.
type OpenTask struct {
	Task
	AvgSecondsPerMachine  *int `json:"avgSecondsPerMachine"`
	MachinesCount         *int `json:"machinesCount"`
	EstimatedSecondsTotal *int `json:"estimatedSecondsTotal"`
}

// machinesFor counts the machines a task's production builds for the task's
// template borne, defaulting to one.
func machinesFor(t *Task) int {
	if t.Template == nil || t.Template.BorneID == nil || t.Production == nil {
		return 1
	}
	if n := t.Production.MachinesFor(*t.Template.BorneID); n > 0 {
		return n
	}
	return 1
}

// Estimate annotates open tasks with a per-template average of seconds per
// machine computed from completed history. Both slices must have Template
// and Production.Lines loaded.
func Estimate(open, history []Task) []OpenTask {
	type sample struct {
		sum   float64
		count int
	}
	samples := make(map[uint]*sample)
	for i := range history {
		h := &history[i]
		if h.TaskTemplateID == nil || h.Template == nil || h.TotalSeconds <= 0 {
			continue
		}
		s, ok := samples[*h.TaskTemplateID]
		if !ok {
			s = &sample{}
			samples[*h.TaskTemplateID] = s
		}
		s.sum += float64(h.TotalSeconds) / float64(machinesFor(h))
		s.count++
	}

	out := make([]OpenTask, 0, len(open))
	for i := range open {
		ot := OpenTask{Task: open[i]}
		if tid := open[i].TaskTemplateID; tid != nil {
			if s, ok := samples[*tid]; ok && s.count > 0 {
				avg := int(math.Round(s.sum / float64(s.count)))
				machines := machinesFor(&open[i])
				total := avg * machines
				ot.AvgSecondsPerMachine = &avg
				ot.MachinesCount = &machines
				ot.EstimatedSecondsTotal = &total
			}
		}
		out = append(out, ot)
	}
	return out
}
