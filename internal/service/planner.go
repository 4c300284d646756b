package service

import (
	"github.com/veranemoloko/mdk-downloader/internal/domain"
)

// Plan expands discovery results into the ordered task list.
// Coarse identifiers keep their configured order, fines keep page order.
// A failed or empty discovery contributes no tasks.
func Plan(discoveries []domain.Discovery) []domain.Task {
	var tasks []domain.Task
	for _, d := range discoveries {
		if d.Failed() {
			continue
		}
		for _, fine := range d.Fines {
			tasks = append(tasks, domain.Task{Coarse: d.Coarse, Fine: fine})
		}
	}
	return tasks
}

// Pending counts the tasks not yet marked completed in record.
func Pending(tasks []domain.Task, record domain.ProgressRecord) int {
	n := 0
	for _, t := range tasks {
		if !record.IsCompleted(t.Key()) {
			n++
		}
	}
	return n
}
