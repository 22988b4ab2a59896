package domain

import "time"

// Course is a catalogue entry identified by a unique course code such as "CPSC 413".
type Course struct {
	ID           string
	Code         string
	Name         string
	Department   string
	Professor    string
	Semester     string
	Year         *int
	Tags         []string
	Description  string
	ProblemCount int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
