package model

// ActivityRecord is a decoded CrowdFundChain event ready for storage.
type ActivityRecord struct {
	ChainID     uint64 `json:"chain_id"`
	BlockNumber uint64 `json:"block_number"`
	TxHash      string `json:"tx_hash"`
	LogIndex    uint64 `json:"log_index"`
	Event       string `json:"event"`
	CampaignID  uint64 `json:"campaign_id"`
	Account     string `json:"account"`
	Amount      string `json:"amount,omitempty"`
	Title       string `json:"title,omitempty"`
	Timestamp   uint64 `json:"timestamp"`
	IngestedAt  string `json:"ingested_at"`
}
