package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/rally-tribble/internal/metrics"
	"github.com/mauv0809/rally-tribble/internal/notifier"
	"github.com/mauv0809/rally-tribble/internal/stats"
	"github.com/slack-go/slack"
	"github.com/sony/gobreaker"
)

// breakerFailures is how many consecutive failed posts open the breaker.
const breakerFailures = 3

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	breaker   *gobreaker.CircuitBreaker
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "slack-" + channelID,
			MaxRequests: 1,
			Timeout:     time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Slack circuit breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var channelID, timestamp string
	_, err := s.breaker.Execute(func() (interface{}, error) {
		var err error
		channelID, timestamp, err = s.api.PostMessageContext(
			ctx,
			s.channelID,
			slack.MsgOptionBlocks(message.Blocks.BlockSet...),
			slack.MsgOptionAsUser(true),
		)
		return nil, err
	})
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendTournamentResult posts the final standings of a tournament to the channel.
func (s *Notifier) SendTournamentResult(report stats.TournamentReport, dryRun bool) error {
	_, _, err := s.sendMessage(s.formatTournamentResult(report), dryRun)
	return err
}

// FormatLeaderboardResponse formats the overall standings for a slash command response.
func (s *Notifier) FormatLeaderboardResponse(rows []stats.PlayerSummary) (any, error) {
	return s.formatLeaderboard(rows), nil
}

// FormatAchievementsResponse formats the achievement boards for a slash command response.
func (s *Notifier) FormatAchievementsResponse(boards []stats.Board) (any, error) {
	return s.formatAchievements(boards), nil
}

// FormatMatchupResponse formats a player's partners and opponents for a slash command response.
func (s *Notifier) FormatMatchupResponse(report stats.MatchupReport) (any, error) {
	return s.formatMatchups(report), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string) (any, error) {
	return s.formatPlayerNotFound(query), nil
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}

func plainSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", text, true, false), nil, nil)
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil)
}

func header(text string) *slack.HeaderBlock {
	return slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", text, true, false))
}

// formatTournamentResult creates the Slack message for a finished tournament using Block Kit.
func (s *Notifier) formatTournamentResult(report stats.TournamentReport) slack.Message {
	blocks := []slack.Block{
		header(fmt.Sprintf("🎾 Tournament #%d finished! 🎾", report.TournamentID)),
	}

	if report.Champion != nil {
		c := report.Champion
		blocks = append(blocks, markdownSection(fmt.Sprintf("🏆 *%s* is the champion with %d-%d (%+d)", c.Name, c.Wins, c.Losses, c.PointDiff())))
	} else {
		blocks = append(blocks, plainSection("No decisive games were played."))
	}

	if len(report.Standings) > 0 {
		lines := make([]string, 0, len(report.Standings))
		for i, row := range report.Standings {
			lines = append(lines, fmt.Sprintf("%d. %s %s  %d-%d | %d:%d (%+d)",
				i+1, medal(i+1), row.Name, row.Wins, row.Losses, row.PointsFor, row.PointsAgainst, row.PointDiff()))
		}
		blocks = append(blocks, plainSection("Standings:\n"+strings.Join(lines, "\n")))
	}

	footer := fmt.Sprintf("%d of %d games scored", report.GamesScored, report.GamesTotal)
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", footer, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatLeaderboard creates a Slack message to display the overall standings.
func (s *Notifier) formatLeaderboard(rows []stats.PlayerSummary) slack.Message {
	blocks := []slack.Block{header("🏆 Player Leaderboard 🏆")}

	if len(rows) == 0 {
		blocks = append(blocks, plainSection("No stats available yet. Go play a tournament!"))
		return slack.NewBlockMessage(blocks...)
	}

	for i, row := range rows {
		rank := i + 1
		text := fmt.Sprintf("%d. %s %s\n> *Win %%*: %.0f%% (%d/%d) | *Points*: %+d",
			rank,
			medal(rank),
			row.Name,
			row.WinPct()*100,
			row.Wins,
			row.GamesPlayed,
			row.PointDiff(),
		)
		blocks = append(blocks, markdownSection(text))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatAchievements creates a Slack message with one section per achievement board.
func (s *Notifier) formatAchievements(boards []stats.Board) slack.Message {
	blocks := []slack.Block{header("🏅 Achievements 🏅")}

	for _, board := range boards {
		lines := []string{fmt.Sprintf("*%s*  _%s_", board.Title, board.Subtitle)}
		if len(board.Entries) == 0 {
			lines = append(lines, "No data yet.")
		}
		for _, e := range board.Entries {
			lines = append(lines, fmt.Sprintf("#%d %s: *%s*", e.Rank, e.Label, e.Value))
		}
		blocks = append(blocks, markdownSection(strings.Join(lines, "\n")))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatMatchups creates a Slack message with a player's favourite partners and toughest opponents.
func (s *Notifier) formatMatchups(report stats.MatchupReport) slack.Message {
	blocks := []slack.Block{header(fmt.Sprintf("🤝 Matchups for %s", report.Name))}

	partners := []string{"*Favourite partners*"}
	if len(report.FavouritePartners) == 0 {
		partners = append(partners, fmt.Sprintf("No partner with %d+ games yet.", stats.MinMatchupGames))
	}
	for _, p := range report.FavouritePartners {
		partners = append(partners, fmt.Sprintf("• %s: %.0f%% (%d-%d)", p.Name, p.WinPct*100, p.Wins, p.Losses))
	}
	blocks = append(blocks, markdownSection(strings.Join(partners, "\n")))

	opponents := []string{"*Toughest opponents*"}
	if len(report.ToughestOpponents) == 0 {
		opponents = append(opponents, "Nobody has the upper hand yet.")
	}
	for _, o := range report.ToughestOpponents {
		opponents = append(opponents, fmt.Sprintf("• %s: lost %.0f%% (%d/%d)", o.Name, o.LossPct*100, o.Losses, o.GamesPlayed))
	}
	blocks = append(blocks, markdownSection(strings.Join(opponents, "\n")))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for when a player cannot be found.
func (s *Notifier) formatPlayerNotFound(query string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	return slack.NewBlockMessage(markdownSection(text))
}
