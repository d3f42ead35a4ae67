package model

// Session is the wallet/session state. Empty strings mean "not set".
type Session struct {
	Account            string     `json:"account,omitempty"`
	Network            string     `json:"network,omitempty"`
	Balance            string     `json:"balance,omitempty"`
	Wallet             string     `json:"wallet,omitempty"`
	IsConnected        bool       `json:"is_connected"`
	IsConnecting       bool       `json:"is_connecting"`
	Campaigns          []Campaign `json:"campaigns"`
	UserCampaigns      []Campaign `json:"user_campaigns"`
	IsLoadingCampaigns bool       `json:"is_loading_campaigns"`
}

// Clone returns a copy that shares no slices with s.
func (s Session) Clone() Session {
	out := s
	out.Campaigns = cloneCampaigns(s.Campaigns)
	out.UserCampaigns = cloneCampaigns(s.UserCampaigns)
	return out
}

func cloneCampaigns(in []Campaign) []Campaign {
	if in == nil {
		return nil
	}
	out := make([]Campaign, len(in))
	copy(out, in)
	return out
}
