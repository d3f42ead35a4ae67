package campaign

import (
	"strings"
	"time"

	"crowdfundChain/internal/model"
)

const day = 24 * time.Hour

// MockCampaigns returns the fixed demo list, with deadlines relative to now.
func MockCampaigns(now time.Time) []model.Campaign {
	return []model.Campaign{
		{
			ID:           1,
			Creator:      "0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199",
			Title:        "Renewable Energy Project",
			Description:  "Help us build a solar farm to provide clean energy to local communities and reduce carbon emissions.",
			FundingGoal:  "5.5",
			AmountRaised: "3.2",
			Deadline:     now.Add(14 * day),
		},
		{
			ID:           2,
			Creator:      "0x1234567890123456789012345678901234567890",
			Title:        "Community Learning Center",
			Description:  "Building a technology education center for underprivileged youth to learn coding and digital skills.",
			FundingGoal:  "2.8",
			AmountRaised: "2.1",
			Deadline:     now.Add(5 * day),
		},
		{
			ID:           3,
			Creator:      "0x9876543210987654321098765432109876543210",
			Title:        "Ocean Cleanup Initiative",
			Description:  "Funding equipment to remove plastic waste from coastal waters and protect marine ecosystems.",
			FundingGoal:  "4.0",
			AmountRaised: "1.2",
			Deadline:     now.Add(21 * day),
		},
		{
			ID:           4,
			Creator:      "0x8626f6940E2eb28930eFb4CeF49B2d1F2C9C1199",
			Title:        "Affordable Housing Project",
			Description:  "Developing sustainable housing solutions for low-income families in urban areas.",
			FundingGoal:  "10.0",
			AmountRaised: "3.5",
			Deadline:     now.Add(30 * day),
		},
		{
			ID:           5,
			Creator:      "0x1234567890123456789012345678901234567890",
			Title:        "Medical Research Fund",
			Description:  "Supporting innovative research on treatments for rare genetic disorders and improving patient care.",
			FundingGoal:  "7.5",
			AmountRaised: "6.8",
			Deadline:     now.Add(7 * day),
		},
		{
			ID:           6,
			Creator:      "0x9876543210987654321098765432109876543210",
			Title:        "Reforestation Project",
			Description:  "Planting trees and restoring degraded lands to combat climate change and protect biodiversity.",
			FundingGoal:  "3.2",
			AmountRaised: "1.5",
			Deadline:     now.Add(40 * day),
		},
	}
}

// MockUserCampaigns filters the demo list by creator, case-insensitively.
func MockUserCampaigns(now time.Time, address string) []model.Campaign {
	out := make([]model.Campaign, 0)
	for _, c := range MockCampaigns(now) {
		if strings.EqualFold(c.Creator, address) {
			out = append(out, c)
		}
	}
	return out
}
