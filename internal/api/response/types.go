package response

import (
	"time"

	"github.com/mcoot/treasurehunt-go/internal/model"
	"github.com/mcoot/treasurehunt-go/internal/services/auth"
	"github.com/mcoot/treasurehunt-go/internal/services/hunt"
)

// Clue is a clue as shown to players (no code)
type Clue struct {
	Level    int    `json:"level"`
	Location string `json:"location"`
	Text     string `json:"clue"`
	Hint     string `json:"hint,omitempty"`
}

// ClueFromModel converts a model.Clue to a response Clue
func ClueFromModel(c *model.Clue) *Clue {
	if c == nil {
		return nil
	}
	return &Clue{
		Level:    c.Level,
		Location: c.Location,
		Text:     c.Text,
		Hint:     c.Hint,
	}
}

// AdminClue includes the secret code for printing location stickers
type AdminClue struct {
	Clue
	Code string `json:"code"`
}

// AdminCluesFromModel converts the full clue table
func AdminCluesFromModel(clues []model.Clue) []AdminClue {
	result := make([]AdminClue, len(clues))
	for i := range clues {
		result[i] = AdminClue{
			Clue: *ClueFromModel(&clues[i]),
			Code: clues[i].Code,
		}
	}
	return result
}

// Account represents an account in API responses
type Account struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Role           string     `json:"role"`
	IsAdmin        bool       `json:"is_admin"`
	Active         bool       `json:"active"`
	CurrentLevel   int        `json:"current_level"`
	Completed      bool       `json:"completed"`
	StartedAt      *time.Time `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at"`
	ElapsedSeconds *int64     `json:"elapsed_seconds"`
	FormattedTime  string     `json:"formatted_time,omitempty"`
	ScanCount      int        `json:"scan_count"`
	CreatedAt      time.Time  `json:"created_at"`
}

// AccountFromModel converts a model.Account to a response Account
func AccountFromModel(a *model.Account) Account {
	p := a.Progress
	return Account{
		ID:             string(a.ID),
		Username:       a.Username,
		Role:           string(a.Role),
		IsAdmin:        a.IsAdmin(),
		Active:         a.Active,
		CurrentLevel:   p.CurrentLevel,
		Completed:      p.Completed,
		StartedAt:      p.StartedAt,
		EndedAt:        p.EndedAt,
		ElapsedSeconds: p.ElapsedSeconds,
		FormattedTime:  formatted(p.ElapsedSeconds),
		ScanCount:      len(p.Scans),
		CreatedAt:      a.CreatedAt,
	}
}

// AccountsFromModel converts a list of accounts
func AccountsFromModel(accounts []*model.Account) []Account {
	result := make([]Account, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromModel(a)
	}
	return result
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   Account   `json:"account"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		Account:   AccountFromModel(&s.Account),
	}
}

// ClueResponse is the response for the current clue endpoint
type ClueResponse struct {
	Completed      bool       `json:"completed"`
	Clue           *Clue      `json:"clue,omitempty"`
	TotalLevels    int        `json:"total_levels"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	ElapsedSeconds *int64     `json:"elapsed_seconds,omitempty"`
	FormattedTime  string     `json:"formatted_time,omitempty"`
	Message        string     `json:"message,omitempty"`
}

// ClueResponseFromResult converts a hunt.ClueResult
func ClueResponseFromResult(r *hunt.ClueResult) ClueResponse {
	resp := ClueResponse{
		Completed:      r.Completed,
		Clue:           ClueFromModel(r.Clue),
		TotalLevels:    r.TotalLevels,
		StartedAt:      r.StartedAt,
		ElapsedSeconds: r.ElapsedSeconds,
		FormattedTime:  formatted(r.ElapsedSeconds),
	}
	if r.Completed {
		resp.Message = "Game already completed!"
	}
	return resp
}

// ScanResponse is the response for an accepted code
type ScanResponse struct {
	Advanced       bool   `json:"advanced"`
	Completed      bool   `json:"completed"`
	Duplicate      bool   `json:"duplicate,omitempty"`
	Level          int    `json:"level"`
	NextClue       *Clue  `json:"next_clue,omitempty"`
	ElapsedSeconds *int64 `json:"elapsed_seconds,omitempty"`
	FormattedTime  string `json:"formatted_time,omitempty"`
	Message        string `json:"message"`
}

// ScanResponseFromResult converts a hunt.ScanResult
func ScanResponseFromResult(r *hunt.ScanResult) ScanResponse {
	resp := ScanResponse{
		Advanced:       r.Accepted,
		Completed:      r.Completed,
		Duplicate:      r.Duplicate,
		Level:          r.Level,
		NextClue:       ClueFromModel(r.NextClue),
		ElapsedSeconds: r.ElapsedSeconds,
		FormattedTime:  formatted(r.ElapsedSeconds),
		Message:        "Correct! Moving to next level.",
	}
	if r.Completed {
		resp.Message = "Congratulations! You completed the treasure hunt!"
	}
	return resp
}

// Message is a simple acknowledgement body
type Message struct {
	Message string `json:"message"`
}

// Health is the health check body
type Health struct {
	Status string `json:"status"`
}

func formatted(seconds *int64) string {
	if seconds == nil {
		return ""
	}
	return model.FormatElapsed(*seconds)
}
