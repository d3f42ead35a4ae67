package view

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"crowdfundChain/internal/aggregate"
	"crowdfundChain/internal/campaign"
	"crowdfundChain/internal/format"
	"crowdfundChain/internal/model"
)

// ProgressBar renders p (0..100) as a fixed-width bar.
func ProgressBar(p float64, width int) string {
	if width <= 0 {
		width = barWidth
	}
	p = math.Max(0, math.Min(100, p))
	filled := int(math.Round(p / 100 * float64(width)))
	return barOnStyle.Render(strings.Repeat("█", filled)) +
		barOffStyle.Render(strings.Repeat("░", width-filled))
}

func countdown(c model.Campaign, now time.Time) string {
	if days := c.RemainingDays(now); days > 0 && !c.IsClosed {
		return fmt.Sprintf("%d days left", days)
	}
	return "Ended"
}

// Status is the lifecycle label shown on the detail view.
func Status(c model.Campaign, now time.Time) string {
	if !c.IsFinished(now) {
		return "Active"
	}
	if c.Progress() >= 100 {
		return "Successfully Funded"
	}
	return "Funding Ended"
}

// CampaignCard renders the compact listing entry for c.
func CampaignCard(c model.Campaign, now time.Time) string {
	header := fmt.Sprintf("#%d  %s", c.ID, labelStyle.Render(countdown(c, now)))
	lines := []string{
		header,
		titleStyle.Render(c.Title),
		labelStyle.Render("By " + format.TruncateAddress(c.Creator)),
		textStyle.Render(truncate(c.Description, cardWidth-4)),
		"",
		ProgressBar(c.Progress(), barWidth) + " " + format.Percent(c.Progress()),
		fmt.Sprintf("%s %s  %s %s",
			labelStyle.Render("Raised"), accentStyle.Render(c.AmountRaised+" ETH"),
			labelStyle.Render("Goal"), textStyle.Render(c.FundingGoal+" ETH"),
		),
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// CampaignGrid lays cards out in rows.
func CampaignGrid(campaigns []model.Campaign, now time.Time) string {
	if len(campaigns) == 0 {
		return labelStyle.Render("No campaigns found.")
	}
	var rows []string
	for i := 0; i < len(campaigns); i += gridColumns {
		end := i + gridColumns
		if end > len(campaigns) {
			end = len(campaigns)
		}
		cards := make([]string, 0, end-i)
		for _, c := range campaigns[i:end] {
			cards = append(cards, CampaignCard(c, now))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

// SourceBanner explains where a list came from when it was not read from the contract.
func SourceBanner(res campaign.ListResult) string {
	switch res.Source {
	case campaign.SourceMock:
		return warnStyle.Render("⚠ Showing demo data: the contract could not be reached.")
	case campaign.SourceUnavailable:
		return warnStyle.Render("⚠ Campaigns are unavailable: the contract could not be reached.")
	default:
		return ""
	}
}

// CampaignDetail renders the full view for c as seen by account.
func CampaignDetail(c model.Campaign, account string, now time.Time) string {
	finished := c.IsFinished(now)

	when := fmt.Sprintf("%d days left", c.RemainingDays(now))
	if finished {
		when = "Ended on " + format.FormatDate(c.Deadline)
	}
	state := "Active Campaign"
	if finished {
		state = "Ended"
	}

	lines := []string{
		titleStyle.Render(c.Title),
		labelStyle.Render(fmt.Sprintf("Campaign #%d · %s · %s", c.ID, state, when)),
		"",
		textStyle.Render(c.Description),
		"",
		row("Creator", c.Creator),
		row("Deadline", format.FormatDate(c.Deadline)),
		row("Status", Status(c, now)),
		row("Funding Goal", c.FundingGoal+" ETH"),
		"",
		accentStyle.Render(c.AmountRaised+" ETH") + labelStyle.Render(" of "+c.FundingGoal+" ETH"),
		ProgressBar(c.Progress(), barWidth),
		labelStyle.Render(format.Percent(c.Progress()) + " funded"),
	}

	switch {
	case c.CanWithdraw(account, now):
		lines = append(lines, "", accentStyle.Render(fmt.Sprintf("You can withdraw the raised funds: crowdfund withdraw %d", c.ID)))
	case !finished:
		lines = append(lines, "", labelStyle.Render(fmt.Sprintf("Contribute: crowdfund contribute %d <amount>", c.ID)))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// SessionStatus renders the wallet connection summary.
func SessionStatus(s model.Session) string {
	if s.IsConnecting {
		return labelStyle.Render("Connecting…")
	}
	if !s.IsConnected {
		return warnStyle.Render("Not connected") + labelStyle.Render("  run: crowdfund connect")
	}
	lines := []string{
		accentStyle.Render("● Connected"),
		row("Account", format.TruncateAddress(s.Account)),
		row("Network", orDash(s.Network)),
		row("Balance", orDash(s.Balance)+" ETH"),
	}
	if s.Wallet != "" {
		lines = append(lines, row("Wallet", s.Wallet))
	}
	return strings.Join(lines, "\n")
}

// Profile renders the connected account and the campaigns it created.
func Profile(s model.Session, now time.Time) string {
	if !s.IsConnected {
		return SessionStatus(s)
	}
	head := panelStyle.Render(strings.Join([]string{
		titleStyle.Render("Your Profile"),
		row("Account", s.Account),
		row("Balance", orDash(s.Balance)+" ETH"),
		row("Network", orDash(s.Network)),
		row("Campaigns", fmt.Sprintf("%d", len(s.UserCampaigns))),
	}, "\n"))

	if len(s.UserCampaigns) == 0 {
		return head + "\n" + labelStyle.Render("No campaigns yet. Create one with: crowdfund create")
	}
	return head + "\n" + titleStyle.Render("My Campaigns") + "\n" + CampaignGrid(s.UserCampaigns, now)
}

// TxSummary renders the outcome of a write.
func TxSummary(action string, res campaign.TxResult) string {
	if !res.Success {
		msg := action + " failed"
		if res.Err != nil {
			msg += ": " + res.Err.Error()
		}
		return warnStyle.Render("✗ " + msg)
	}
	lines := []string{accentStyle.Render("✓ " + action + " confirmed")}
	if res.TxHash != "" {
		lines = append(lines, row("Transaction", res.TxHash))
	}
	if res.HasCampaignID {
		lines = append(lines, row("Campaign", fmt.Sprintf("#%d", res.CampaignID)))
	}
	return strings.Join(lines, "\n")
}

// ActivityTable renders indexed contract events, one per line.
func ActivityTable(records []model.ActivityRecord) string {
	if len(records) == 0 {
		return labelStyle.Render("No activity in range.")
	}
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, labelStyle.Render(fmt.Sprintf("%-10s %-18s %-9s %-13s %s", "BLOCK", "EVENT", "CAMPAIGN", "ACCOUNT", "AMOUNT")))
	for _, r := range records {
		detail := r.Amount
		if detail != "" {
			detail += " ETH"
		}
		if r.Title != "" {
			detail = r.Title
		}
		lines = append(lines, fmt.Sprintf("%-10d %-18s %-9s %-13s %s",
			r.BlockNumber, r.Event, fmt.Sprintf("#%d", r.CampaignID), format.TruncateAddress(r.Account), detail))
	}
	return strings.Join(lines, "\n")
}

// SummaryTable renders per-campaign activity totals.
func SummaryTable(summaries []aggregate.Summary) string {
	if len(summaries) == 0 {
		return labelStyle.Render("No campaign activity.")
	}
	lines := make([]string, 0, len(summaries)+1)
	lines = append(lines, labelStyle.Render(fmt.Sprintf("%-9s %-24s %-14s %-14s %-12s %s", "CAMPAIGN", "TITLE", "RAISED", "WITHDRAWN", "BACKERS", "PROGRESS")))
	for _, s := range summaries {
		progress := "-"
		if s.FundingGoal != "" {
			progress = format.Percent(s.Progress) + " of " + s.FundingGoal + " ETH"
		}
		lines = append(lines, fmt.Sprintf("%-9s %-24s %-14s %-14s %-12s %s",
			fmt.Sprintf("#%d", s.CampaignID),
			truncate(orDash(s.Title), 24),
			s.Contributed+" ETH",
			s.Withdrawn+" ETH",
			fmt.Sprintf("%d/%d", s.Contributors, s.Contributions),
			progress))
	}
	return strings.Join(lines, "\n")
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-13s", label)) + textStyle.Render(value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
