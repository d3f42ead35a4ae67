package indexer

import (
	"fmt"
	"time"

	"crowdfundChain/internal/contract"
	"crowdfundChain/internal/format"
	"crowdfundChain/internal/model"
)

// accountArg names the address argument each event attributes the action to.
var accountArg = map[string]string{
	contract.EventCampaignCreated:  "creator",
	contract.EventContributionMade: "contributor",
	contract.EventFundsWithdrawn:   "creator",
}

func buildActivityRecord(chainID uint64, ev *contract.Event, timestamp uint64, ingestedAt time.Time) (model.ActivityRecord, error) {
	argName, ok := accountArg[ev.Name]
	if !ok {
		return model.ActivityRecord{}, fmt.Errorf("unsupported event %s", ev.Name)
	}

	id, err := ev.BigArg("campaignId")
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("%s campaignId: %w", ev.Name, err)
	}
	if !id.IsUint64() {
		return model.ActivityRecord{}, fmt.Errorf("%s campaignId out of range: %s", ev.Name, id)
	}
	account, err := ev.AddressArg(argName)
	if err != nil {
		return model.ActivityRecord{}, fmt.Errorf("%s %s: %w", ev.Name, argName, err)
	}

	rec := model.ActivityRecord{
		ChainID:     chainID,
		BlockNumber: ev.Log.BlockNumber,
		TxHash:      ev.Log.TxHash.Hex(),
		LogIndex:    uint64(ev.Log.Index),
		Event:       ev.Name,
		CampaignID:  id.Uint64(),
		Account:     account,
		Timestamp:   timestamp,
		IngestedAt:  ingestedAt.UTC().Format(time.RFC3339Nano),
	}

	switch ev.Name {
	case contract.EventCampaignCreated:
		goal, err := ev.BigArg("fundingGoal")
		if err != nil {
			return model.ActivityRecord{}, fmt.Errorf("%s fundingGoal: %w", ev.Name, err)
		}
		rec.Amount = format.FormatEther(goal)
		title, _ := ev.Values["title"].(string)
		rec.Title = title
	default:
		amount, err := ev.BigArg("amount")
		if err != nil {
			return model.ActivityRecord{}, fmt.Errorf("%s amount: %w", ev.Name, err)
		}
		rec.Amount = format.FormatEther(amount)
	}

	return rec, nil
}
