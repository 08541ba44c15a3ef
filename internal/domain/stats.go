package domain

import (
	"fmt"
	"time"
)

const dueSoonWindow = 7 * 24 * time.Hour

// Derived is the result of computing stats client-side. Stats always
// describe exactly the filtered Exchanges and Tasks.
type Derived struct {
	Stats     Stats
	Exchanges []Exchange
	Tasks     []Task
}

// Derive applies role visibility and then computes the aggregate counters.
func Derive(exchanges []Exchange, tasks []Task, viewer Viewer, visibility Visibility, now time.Time) (Derived, error) {
	visibleExchanges, err := FilterExchanges(exchanges, viewer, visibility)
	if err != nil {
		return Derived{}, fmt.Errorf("filter exchanges: %w", err)
	}

	visibleTasks, err := FilterTasks(tasks, viewer, visibility)
	if err != nil {
		return Derived{}, fmt.Errorf("filter tasks: %w", err)
	}

	return Derived{
		Stats:     ComputeStats(visibleExchanges, visibleTasks, now),
		Exchanges: visibleExchanges,
		Tasks:     visibleTasks,
	}, nil
}

// ComputeStats counts already filtered records. now is evaluated once by the
// caller so every date comparison in one computation uses the same instant.
func ComputeStats(exchanges []Exchange, tasks []Task, now time.Time) Stats {
	stats := Stats{
		Exchanges: ExchangeStats{Total: len(exchanges)},
		Tasks:     TaskStats{Total: len(tasks)},
	}

	for _, exchange := range exchanges {
		switch exchange.Status.Category() {
		case ExchangeCategoryPending:
			stats.Exchanges.Pending++
		case ExchangeCategoryActive:
			stats.Exchanges.Active++
		case ExchangeCategoryCompleted:
			stats.Exchanges.Completed++
		}
	}

	weekEnd := now.Add(dueSoonWindow)
	for _, task := range tasks {
		switch task.Status.normalized() {
		case TaskStatusPending:
			stats.Tasks.Pending++
		case TaskStatusInProgress:
			stats.Tasks.InProgress++
		case TaskStatusCompleted:
			stats.Tasks.Completed++
		}

		terminal := task.Status.Terminal()
		if !terminal && task.Priority.Highest() {
			stats.Tasks.Urgent++
		}

		if task.DueDate == nil {
			continue
		}
		due := *task.DueDate
		if !terminal && due.Before(now) {
			stats.Tasks.Overdue++
		}
		if !due.Before(now) && !due.After(weekEnd) {
			stats.Tasks.DueThisWeek++
		}
	}

	return stats
}
