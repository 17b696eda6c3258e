package ops

import (
	"time"

	"github.com/hpungsan/capitol/internal/analytics"
)

// CongressInput contains parameters for the Congress operation.
type CongressInput struct {
	Date string // optional, YYYY-MM-DD or RFC 3339; default today (UTC)
}

// CongressOutput describes the congress in session on a date.
type CongressOutput struct {
	Date       string `json:"date"`
	Number     int    `json:"number"`
	StartDate  string `json:"start_date"`
	SessionDay int    `json:"session_day"`
}

// Congress reports which congress was in session on a date.
func Congress(input CongressInput) (*CongressOutput, error) {
	t, err := parseOptionalDate("date", input.Date)
	if err != nil {
		return nil, err
	}
	day := time.Now().UTC()
	if t != nil {
		day = *t
	}

	n := analytics.CongressNumber(day)
	return &CongressOutput{
		Date:       day.UTC().Format("2006-01-02"),
		Number:     n,
		StartDate:  analytics.CongressStartDate(n).Format("2006-01-02"),
		SessionDay: analytics.SessionDayOffset(day, n),
	}, nil
}
