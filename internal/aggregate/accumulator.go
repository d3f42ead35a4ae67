package aggregate

import (
	"fmt"
	"math/big"

	"crowdfundChain/internal/contract"
	"crowdfundChain/internal/format"
	"crowdfundChain/internal/model"
)

// Accumulator holds running totals for one campaign.
type Accumulator struct {
	ChainID       uint64
	CampaignID    uint64
	Title         string
	Creator       string
	FundingGoal   *big.Int
	Contributed   *big.Int
	Withdrawn     *big.Int
	Contributions uint64
	FirstBlock    uint64
	LastBlock     uint64
	LastTS        uint64

	contributors map[string]struct{}
}

func NewAccumulator(record model.ActivityRecord) *Accumulator {
	return &Accumulator{
		ChainID:      record.ChainID,
		CampaignID:   record.CampaignID,
		Contributed:  big.NewInt(0),
		Withdrawn:    big.NewInt(0),
		FirstBlock:   record.BlockNumber,
		LastBlock:    record.BlockNumber,
		LastTS:       record.Timestamp,
		contributors: make(map[string]struct{}),
	}
}

func (a *Accumulator) AddEvent(record model.ActivityRecord) error {
	if record.Timestamp >= a.LastTS {
		a.LastTS = record.Timestamp
		a.LastBlock = record.BlockNumber
	}
	if record.BlockNumber < a.FirstBlock {
		a.FirstBlock = record.BlockNumber
	}

	switch record.Event {
	case contract.EventCampaignCreated:
		goal, err := parseAmount(record)
		if err != nil {
			return err
		}
		a.FundingGoal = goal
		a.Title = record.Title
		a.Creator = record.Account
	case contract.EventContributionMade:
		amount, err := parseAmount(record)
		if err != nil {
			return err
		}
		a.Contributed.Add(a.Contributed, amount)
		a.Contributions++
		a.contributors[normalizeAccount(record.Account)] = struct{}{}
	case contract.EventFundsWithdrawn:
		amount, err := parseAmount(record)
		if err != nil {
			return err
		}
		a.Withdrawn.Add(a.Withdrawn, amount)
	}
	return nil
}

// Summary is the display form of an Accumulator.
type Summary struct {
	ChainID       uint64  `json:"chain_id"`
	CampaignID    uint64  `json:"campaign_id"`
	Title         string  `json:"title,omitempty"`
	Creator       string  `json:"creator,omitempty"`
	FundingGoal   string  `json:"funding_goal,omitempty"`
	Contributed   string  `json:"contributed"`
	Withdrawn     string  `json:"withdrawn"`
	Contributions uint64  `json:"contributions"`
	Contributors  int     `json:"contributors"`
	Progress      float64 `json:"progress"`
	FirstBlock    uint64  `json:"first_block"`
	LastBlock     uint64  `json:"last_block"`
}

func (a *Accumulator) ToSummary() Summary {
	s := Summary{
		ChainID:       a.ChainID,
		CampaignID:    a.CampaignID,
		Title:         a.Title,
		Creator:       a.Creator,
		Contributed:   format.FormatEther(a.Contributed),
		Withdrawn:     format.FormatEther(a.Withdrawn),
		Contributions: a.Contributions,
		Contributors:  len(a.contributors),
		FirstBlock:    a.FirstBlock,
		LastBlock:     a.LastBlock,
	}
	if a.FundingGoal != nil {
		s.FundingGoal = format.FormatEther(a.FundingGoal)
		s.Progress = format.Progress(s.Contributed, s.FundingGoal)
	}
	return s
}

func parseAmount(record model.ActivityRecord) (*big.Int, error) {
	if record.Amount == "" {
		return big.NewInt(0), nil
	}
	wei, err := format.ParseEther(record.Amount)
	if err != nil {
		return nil, fmt.Errorf("%s %s amount: %w", record.Event, record.TxHash, err)
	}
	return wei, nil
}
