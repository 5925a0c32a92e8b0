package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter writing to w and errW
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Account:
		o.printAccount(v)
	case []Account:
		o.printAccounts(v)
	case AuthResult:
		o.printAuthResult(v)
	case ClueResult:
		o.printClueResult(v)
	case ScanResult:
		o.printScanResult(v)
	case []AdminClue:
		o.printAdminClues(v)
	case MessageResult:
		_, _ = fmt.Fprintln(o.w, v.Message)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Account response type (matches API)
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

// AuthResult combines account and token
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   Account   `json:"account"`
}

// Clue response type
type Clue struct {
	Level    int    `json:"level"`
	Location string `json:"location"`
	Text     string `json:"clue"`
	Hint     string `json:"hint,omitempty"`
}

// AdminClue includes the location's secret code
type AdminClue struct {
	Clue
	Code string `json:"code"`
}

// ClueResult response type
type ClueResult struct {
	Completed      bool       `json:"completed"`
	Clue           *Clue      `json:"clue,omitempty"`
	TotalLevels    int        `json:"total_levels"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	ElapsedSeconds *int64     `json:"elapsed_seconds,omitempty"`
	FormattedTime  string     `json:"formatted_time,omitempty"`
	Message        string     `json:"message,omitempty"`
}

// ScanResult response type
type ScanResult struct {
	Advanced       bool   `json:"advanced"`
	Completed      bool   `json:"completed"`
	Duplicate      bool   `json:"duplicate,omitempty"`
	Level          int    `json:"level"`
	NextClue       *Clue  `json:"next_clue,omitempty"`
	ElapsedSeconds *int64 `json:"elapsed_seconds,omitempty"`
	FormattedTime  string `json:"formatted_time,omitempty"`
	Message        string `json:"message"`
}

// MessageResult response type
type MessageResult struct {
	Message string `json:"message"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAccount(a Account) {
	_, _ = fmt.Fprintf(o.w, "Account: %s (%s)\n", a.Username, a.ID)
	_, _ = fmt.Fprintf(o.w, "Role: %s\n", a.Role)
	_, _ = fmt.Fprintf(o.w, "Active: %s\n", yesNo(a.Active))
	if a.IsAdmin {
		return
	}
	if a.Completed {
		_, _ = fmt.Fprintf(o.w, "Completed: yes (%s)\n", a.FormattedTime)
	} else {
		_, _ = fmt.Fprintf(o.w, "Level: %d\n", a.CurrentLevel)
	}
	_, _ = fmt.Fprintf(o.w, "Scans: %d\n", a.ScanCount)
}

func (o *Output) printAccounts(accounts []Account) {
	if len(accounts) == 0 {
		_, _ = fmt.Fprintln(o.w, "No players")
		return
	}
	for _, a := range accounts {
		status := fmt.Sprintf("level %d", a.CurrentLevel)
		if a.Completed {
			status = "completed in " + a.FormattedTime
		}
		active := ""
		if !a.Active {
			active = " [disabled]"
		}
		_, _ = fmt.Fprintf(o.w, "  - %s (%s) - %s%s\n", a.Username, a.ID, status, active)
	}
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printAccount(a.Account)
	_, _ = fmt.Fprintf(o.w, "Token: %s\n", a.Token)
	_, _ = fmt.Fprintf(o.w, "Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printClue(c *Clue) {
	_, _ = fmt.Fprintf(o.w, "Level %d: %s\n", c.Level, c.Location)
	_, _ = fmt.Fprintf(o.w, "Clue: %s\n", c.Text)
	if c.Hint != "" {
		_, _ = fmt.Fprintf(o.w, "Hint: %s\n", c.Hint)
	}
}

func (o *Output) printClueResult(c ClueResult) {
	if c.Completed {
		_, _ = fmt.Fprintf(o.w, "Hunt completed in %s\n", c.FormattedTime)
		return
	}
	if c.Clue != nil {
		o.printClue(c.Clue)
		_, _ = fmt.Fprintf(o.w, "Progress: %d/%d\n", c.Clue.Level, c.TotalLevels)
	}
}

func (o *Output) printScanResult(s ScanResult) {
	_, _ = fmt.Fprintln(o.w, s.Message)
	if s.Completed {
		_, _ = fmt.Fprintf(o.w, "Time: %s\n", s.FormattedTime)
		return
	}
	if s.NextClue != nil {
		o.printClue(s.NextClue)
	}
}

func (o *Output) printAdminClues(clues []AdminClue) {
	for _, c := range clues {
		_, _ = fmt.Fprintf(o.w, "%2d  %-24s %s\n", c.Level, c.Location, c.Code)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
