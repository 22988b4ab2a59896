package domain

import "time"

// Account represents a registered user of the archive.
type Account struct {
	ID                string
	Username          string
	Email             string
	PasswordHash      string
	Degree            string
	YearOfStudy       *int
	Preferences       []string
	ContributionCount int64
	Reputation        int64
	JoinedAt          time.Time
	LastLoginAt       time.Time
}

// Sanitized returns a copy of the account without its credential.
func (a *Account) Sanitized() *Account {
	if a == nil {
		return nil
	}
	out := *a
	out.PasswordHash = ""
	return &out
}
