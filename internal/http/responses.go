package http

import (
	"time"

	"uarchive/internal/auth"
	"uarchive/internal/domain"
)

type UserResponse struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	Email             string   `json:"email,omitempty"`
	Degree            string   `json:"degree,omitempty"`
	YearOfStudy       *int     `json:"year_of_study,omitempty"`
	Preferences       []string `json:"preferences,omitempty"`
	ContributionCount int64    `json:"contribution_count"`
	Reputation        int64    `json:"reputation"`
	JoinedAt          string   `json:"joined_at"`
	LastLoginAt       *string  `json:"last_login_at,omitempty"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   string       `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type CourseResponse struct {
	ID           string   `json:"id"`
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Department   string   `json:"department,omitempty"`
	Professor    string   `json:"professor,omitempty"`
	Semester     string   `json:"semester,omitempty"`
	Year         *int     `json:"year,omitempty"`
	Tags         []string `json:"tags"`
	Description  string   `json:"description,omitempty"`
	ProblemCount int64    `json:"problem_count"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

type ProblemResponse struct {
	ID          string   `json:"id"`
	CourseID    string   `json:"course_id"`
	AuthorID    string   `json:"author_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Difficulty  string   `json:"difficulty,omitempty"`
	ExamType    string   `json:"exam_type,omitempty"`
	Votes       int64    `json:"votes"`
	IsVerified  bool     `json:"is_verified"`
	IsFlagged   bool     `json:"is_flagged"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type CommentResponse struct {
	ID             string `json:"id"`
	ProblemID      string `json:"problem_id"`
	AuthorID       string `json:"author_id"`
	AuthorUsername string `json:"author_username"`
	Content        string `json:"content"`
	Votes          int64  `json:"votes"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type SummaryResponse struct {
	ID             string `json:"id"`
	CourseID       string `json:"course_id"`
	CourseCode     string `json:"course_code"`
	AuthorID       string `json:"author_id"`
	AuthorUsername string `json:"author_username"`
	Title          string `json:"title"`
	Content        string `json:"content"`
	HasAttachment  bool   `json:"has_attachment"`
	Votes          int64  `json:"votes"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type SearchResponse struct {
	Courses  []CourseResponse  `json:"courses"`
	Problems []ProblemResponse `json:"problems"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// userToResponse renders a profile. Email and preferences are only included for the
// account owner.
func userToResponse(account *domain.Account, includeEmail bool) UserResponse {
	resp := UserResponse{
		ID:                account.ID,
		Username:          account.Username,
		Degree:            account.Degree,
		YearOfStudy:       account.YearOfStudy,
		ContributionCount: account.ContributionCount,
		Reputation:        account.Reputation,
		JoinedAt:          formatTime(account.JoinedAt),
	}
	if includeEmail {
		resp.Email = account.Email
		resp.Preferences = account.Preferences
	}
	if !account.LastLoginAt.IsZero() {
		v := formatTime(account.LastLoginAt)
		resp.LastLoginAt = &v
	}
	return resp
}

func loginToResponse(token auth.Token, account *domain.Account) LoginResponse {
	return LoginResponse{
		AccessToken: token.Value,
		TokenType:   "bearer",
		ExpiresAt:   formatTime(token.ExpiresAt),
		User:        userToResponse(account, true),
	}
}

func courseToResponse(course *domain.Course) CourseResponse {
	return CourseResponse{
		ID:           course.ID,
		Code:         course.Code,
		Name:         course.Name,
		Department:   course.Department,
		Professor:    course.Professor,
		Semester:     course.Semester,
		Year:         course.Year,
		Tags:         nonNilTags(course.Tags),
		Description:  course.Description,
		ProblemCount: course.ProblemCount,
		CreatedAt:    formatTime(course.CreatedAt),
		UpdatedAt:    formatTime(course.UpdatedAt),
	}
}

func problemToResponse(problem *domain.Problem) ProblemResponse {
	return ProblemResponse{
		ID:          problem.ID,
		CourseID:    problem.CourseID,
		AuthorID:    problem.AuthorID,
		Title:       problem.Title,
		Description: problem.Description,
		Tags:        nonNilTags(problem.Tags),
		Difficulty:  problem.Difficulty,
		ExamType:    problem.ExamType,
		Votes:       problem.Votes,
		IsVerified:  problem.IsVerified,
		IsFlagged:   problem.IsFlagged,
		CreatedAt:   formatTime(problem.CreatedAt),
		UpdatedAt:   formatTime(problem.UpdatedAt),
	}
}

func commentToResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:             comment.ID,
		ProblemID:      comment.ProblemID,
		AuthorID:       comment.AuthorID,
		AuthorUsername: comment.AuthorUsername,
		Content:        comment.Content,
		Votes:          comment.Votes,
		CreatedAt:      formatTime(comment.CreatedAt),
		UpdatedAt:      formatTime(comment.UpdatedAt),
	}
}

func summaryToResponse(summary *domain.Summary) SummaryResponse {
	return SummaryResponse{
		ID:             summary.ID,
		CourseID:       summary.CourseID,
		CourseCode:     summary.CourseCode,
		AuthorID:       summary.AuthorID,
		AuthorUsername: summary.AuthorUsername,
		Title:          summary.Title,
		Content:        summary.Content,
		HasAttachment:  summary.AttachmentKey != "",
		Votes:          summary.Votes,
		CreatedAt:      formatTime(summary.CreatedAt),
		UpdatedAt:      formatTime(summary.UpdatedAt),
	}
}

// renderList maps records to their response shape, always producing a JSON array.
func renderList[T, R any](items []T, render func(*T) R) []R {
	resp := make([]R, len(items))
	for i := range items {
		resp[i] = render(&items[i])
	}
	return resp
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
