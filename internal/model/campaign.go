package model

import (
	"encoding/json"
	"strings"
	"time"

	"crowdfundChain/internal/format"
)

// Campaign is an immutable snapshot of a crowdfunding campaign.
// Amounts are decimal ether strings.
type Campaign struct {
	ID           uint64    `json:"id"`
	Creator      string    `json:"creator"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	FundingGoal  string    `json:"funding_goal"`
	AmountRaised string    `json:"amount_raised"`
	Deadline     time.Time `json:"deadline"`
	IsClosed     bool      `json:"is_closed"`
}

// Progress is derived from AmountRaised and FundingGoal on every read.
func (c Campaign) Progress() float64 {
	return format.Progress(c.AmountRaised, c.FundingGoal)
}

// RemainingDays returns the days left before the deadline.
func (c Campaign) RemainingDays(now time.Time) int {
	return format.RemainingDays(c.Deadline, now)
}

// IsFinished reports whether the campaign stopped accepting contributions.
func (c Campaign) IsFinished(now time.Time) bool {
	return c.IsClosed || c.RemainingDays(now) == 0
}

// IsCreator compares the creator address case-insensitively.
func (c Campaign) IsCreator(account string) bool {
	return account != "" && strings.EqualFold(c.Creator, account)
}

// CanWithdraw reports whether account may withdraw the raised funds.
func (c Campaign) CanWithdraw(account string, now time.Time) bool {
	if !c.IsCreator(account) || !c.IsFinished(now) {
		return false
	}
	raised, err := format.ParseEther(c.AmountRaised)
	if err != nil {
		return false
	}
	return raised.Sign() > 0
}

// MarshalJSON adds the derived progress to the encoded campaign.
func (c Campaign) MarshalJSON() ([]byte, error) {
	type Alias Campaign
	return json.Marshal(struct {
		Alias
		Progress float64 `json:"progress"`
	}{
		Alias:    Alias(c),
		Progress: c.Progress(),
	})
}

// UnmarshalJSON decodes a Campaign and ignores any encoded progress.
func (c *Campaign) UnmarshalJSON(data []byte) error {
	type Alias Campaign
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = Campaign(a)
	return nil
}
