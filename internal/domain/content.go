package domain

import "time"

// Problem is a past exam or assignment question posted against a course.
type Problem struct {
	ID          string
	CourseID    string
	AuthorID    string
	Title       string
	Description string
	Tags        []string
	Difficulty  string
	ExamType    string
	Votes       int64
	IsVerified  bool
	IsFlagged   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Comment is a response posted under a problem.
type Comment struct {
	ID             string
	ProblemID      string
	AuthorID       string
	AuthorUsername string
	Content        string
	Votes          int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Summary is a set of course notes, optionally backed by an uploaded attachment.
type Summary struct {
	ID             string
	CourseID       string
	CourseCode     string
	AuthorID       string
	AuthorUsername string
	Title          string
	Content        string
	AttachmentKey  string
	Votes          int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SearchResult groups the entities matched by a free-text query.
type SearchResult struct {
	Courses  []Course
	Problems []Problem
}
