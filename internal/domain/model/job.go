package model

// EntryJob asks for every FDV row of one candidate entry day.
type EntryJob struct {
	RunID    string
	EntryDay int
	FDVs     []float64
}
