package domain

import "fmt"

// Visibility decides which raw records a viewer may see. The ownership
// predicates depend on the backend entity shape and are supplied by
// configuration.
type Visibility interface {
	Elevated(role Role) bool
	ExchangeVisible(viewer Viewer, exchange Exchange) (bool, error)
	TaskVisible(viewer Viewer, task Task) (bool, error)
}

func FilterExchanges(exchanges []Exchange, viewer Viewer, visibility Visibility) ([]Exchange, error) {
	if visibility == nil || visibility.Elevated(viewer.Role.Normalize()) {
		return cloneExchanges(exchanges), nil
	}

	filtered := make([]Exchange, 0, len(exchanges))
	for _, exchange := range exchanges {
		visible, err := visibility.ExchangeVisible(viewer, exchange)
		if err != nil {
			return nil, fmt.Errorf("evaluate exchange %s visibility: %w", exchange.ID, err)
		}
		if visible {
			filtered = append(filtered, exchange.clone())
		}
	}

	return filtered, nil
}

func FilterTasks(tasks []Task, viewer Viewer, visibility Visibility) ([]Task, error) {
	if visibility == nil || visibility.Elevated(viewer.Role.Normalize()) {
		return cloneTasks(tasks), nil
	}

	filtered := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		visible, err := visibility.TaskVisible(viewer, task)
		if err != nil {
			return nil, fmt.Errorf("evaluate task %s visibility: %w", task.ID, err)
		}
		if visible {
			filtered = append(filtered, task.clone())
		}
	}

	return filtered, nil
}

func cloneExchanges(exchanges []Exchange) []Exchange {
	out := make([]Exchange, len(exchanges))
	for i, exchange := range exchanges {
		out[i] = exchange.clone()
	}
	return out
}

func cloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, task := range tasks {
		out[i] = task.clone()
	}
	return out
}
