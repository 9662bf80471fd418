package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(countersCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(tournamentsCmd)
	rootCmd.AddCommand(rankingsCmd)
	rootCmd.AddCommand(duosCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(matchupsCmd)

	playersCmd.AddCommand(addPlayerCmd)

	tournamentsCmd.AddCommand(createTournamentCmd)
	tournamentsCmd.AddCommand(showTournamentCmd)
	tournamentsCmd.AddCommand(boxScoreCmd)
	tournamentsCmd.AddCommand(scoreCmd)
	tournamentsCmd.AddCommand(completeCmd)
	tournamentsCmd.AddCommand(cancelCmd)
	tournamentsCmd.Flags().Bool("active", false, "Only list active tournaments")

	duosCmd.Flags().Bool("all", false, "List every pair instead of the top duos")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Get the persisted event counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/counters")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List all players",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var addPlayerCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a player",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/players", map[string]string{"name": args[0]})
	},
}

var tournamentsCmd = &cobra.Command{
	Use:   "tournaments",
	Short: "List tournaments",
	RunE: func(cmd *cobra.Command, args []string) error {
		if active, _ := cmd.Flags().GetBool("active"); active {
			return performGetRequest("/tournaments?status=active")
		}
		return performGetRequest("/tournaments")
	},
}

var createTournamentCmd = &cobra.Command{
	Use:   "create <player-id> <player-id> <player-id> <player-id> [player-id...]",
	Short: "Start a tournament with at least four players",
	Args:  cobra.MinimumNArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return performPostRequest("/tournaments", map[string][]int{"player_ids": ids})
	},
}

var showTournamentCmd = &cobra.Command{
	Use:   "show <tournament-id>",
	Short: "Show a tournament and its schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/tournaments/" + url.PathEscape(args[0]))
	},
}

var boxScoreCmd = &cobra.Command{
	Use:   "boxscore <tournament-id>",
	Short: "Show the standings of a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/tournaments/" + url.PathEscape(args[0]) + "/boxscore")
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <tournament-id> <game-number> <score-team1> <score-team2>",
	Short: "Record the score of a game",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := parseIDs(args[1:])
		if err != nil {
			return err
		}
		body := map[string]int{"game_number": values[0], "score_team1": values[1], "score_team2": values[2]}
		return performPostRequest("/tournaments/"+url.PathEscape(args[0])+"/scores", body)
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <tournament-id>",
	Short: "Finish a tournament and announce the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/tournaments/"+url.PathEscape(args[0])+"/complete", nil)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <tournament-id>",
	Short: "Abandon a tournament",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/tournaments/"+url.PathEscape(args[0])+"/cancel", nil)
	},
}

var rankingsCmd = &cobra.Command{
	Use:   "rankings",
	Short: "Show the career leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/rankings")
	},
}

var duosCmd = &cobra.Command{
	Use:   "duos",
	Short: "Show the best pairs of teammates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return performGetRequest("/duos?all=true")
		}
		return performGetRequest("/duos")
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show the achievement boards",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/achievements")
	},
}

var matchupsCmd = &cobra.Command{
	Use:   "matchups <player-id>",
	Short: "Show a player's favourite partners and toughest opponents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players/" + url.PathEscape(args[0]) + "/matchups")
	},
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func withDryRun(endpoint string) string {
	if !dryRun {
		return endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	q.Set("dry_run", "true")
	u.RawQuery = q.Encode()
	return u.String()
}

func performGetRequest(endpoint string) error {
	url := host + withDryRun(endpoint)
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return printResponse(resp)
}

func performPostRequest(endpoint string, payload any) error {
	url := host + withDryRun(endpoint)
	fmt.Printf("Making request to %s\n", url)

	var body io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	resp, err := http.Post(url, "application/json", body)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("server answered %s", resp.Status)
	}
	return nil
}
