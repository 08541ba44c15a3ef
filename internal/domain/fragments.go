package domain

// EnhancedFragment is the decoded payload of the enhanced analytics source.
type EnhancedFragment struct {
	Stats           Stats
	RecentExchanges []Exchange
	Documents       []Document
	Messages        []Message
	Users           []User
}

// OverviewFragment is the decoded payload of the standard overview source.
type OverviewFragment struct {
	Stats Stats
}

type SyncReceipt struct {
	JobID           string
	Status          string
	ExchangesSynced int
	TasksSynced     int
	IdempotencyKey  string
}
