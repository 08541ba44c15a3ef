package fixture

import "time"

// sampleSchema describes a small office: two exchanges for client-1, one
// for another client, and a mix of open and closed tasks around now.
func sampleSchema(now time.Time) fileSchema {
	day := 24 * time.Hour
	due := func(offset time.Duration) string { return formatTime(now.Add(offset)) }

	return fileSchema{
		Version: currentSchemaVersion,
		Enhanced: &enhancedSchema{
			Stats: statsSchema{
				Exchanges: exchangeStatsSchema{Total: 3, Pending: 1, Active: 1, Completed: 1},
				Tasks:     taskStatsSchema{Total: 5, Pending: 2, InProgress: 1, Completed: 2, Overdue: 2, Urgent: 1, DueThisWeek: 1},
				Documents: &pairSchema{Total: 4, Count: 1},
				Messages:  &pairSchema{Total: 12, Count: 3},
			},
			RecentExchanges: []string{"ex-100", "ex-101"},
			Users: []userSchema{
				{ID: "admin-1", Email: "admin@example.com", Role: "admin", Active: true},
				{ID: "client-1", Email: "client@example.com", Role: "client", Active: true},
			},
		},
		Overview: &statsSchema{
			Exchanges: exchangeStatsSchema{Total: 3, Pending: 1, Active: 1, Completed: 1},
			Tasks:     taskStatsSchema{Total: 5, Pending: 2, InProgress: 1, Completed: 2},
		},
		Exchanges: []exchangeSchema{
			{ID: "ex-100", Name: "Maple St relinquished", Status: "45D", Coordinator: "coord-1", Client: "client-1", CreatedAt: due(-30 * day)},
			{ID: "ex-101", Name: "Harbor Ave replacement", Status: "PENDING", Coordinator: "coord-1", Client: "client-1", Participants: []string{"agency-1"}, CreatedAt: due(-3 * day)},
			{ID: "ex-102", Name: "Ridge Rd portfolio", Status: "COMPLETED", Coordinator: "coord-2", Client: "client-2", CreatedAt: due(-200 * day)},
		},
		Tasks: []taskSchema{
			{ID: "task-1", Title: "Sign assignment", Status: "PENDING", Priority: "URGENT", Due: due(-2 * day), AssignedTo: "client-1", ExchangeID: "ex-100"},
			{ID: "task-2", Title: "Identify replacement property", Status: "IN_PROGRESS", Priority: "HIGH", Due: due(-1 * day), AssignedTo: "client-1", ExchangeID: "ex-100"},
			{ID: "task-3", Title: "Upload closing statement", Status: "PENDING", Priority: "MEDIUM", Due: due(3 * day), CreatedBy: "client-1", ExchangeID: "ex-101"},
			{ID: "task-4", Title: "Review title report", Status: "COMPLETED", Priority: "LOW", Due: due(-5 * day), AssignedTo: "coord-2", ExchangeID: "ex-102"},
			{ID: "task-5", Title: "Wire funds", Status: "CANCELLED", Priority: "URGENT", Due: due(-4 * day), AssignedTo: "coord-2", ExchangeID: "ex-102"},
		},
	}
}
