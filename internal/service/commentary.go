package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AdamBeresnev/bracket-master/internal/bracket"
	"github.com/AdamBeresnev/bracket-master/internal/config"
	"golang.org/x/time/rate"
)

// Placeholders returned instead of an error, commentary never blocks the tournament
const (
	CommentaryNotConfigured = "Commentary is not configured, no preview available."
	CommentaryUnavailable   = "The commentator is taking a break (connection error)."
	CommentaryEmpty         = "No commentary could be generated."
	CommentaryBusy          = "The commentator needs a moment, try again shortly."
)

type Commentator interface {
	Preview(ctx context.Context, tournamentType string, matches []bracket.Matchup) string
}

type HTTPCommentator struct {
	url     string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	metrics *Metrics
}

func NewHTTPCommentator(cfg config.CommentaryConfig, metrics *Metrics) *HTTPCommentator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HTTPCommentator{
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.Interval), 1),
		metrics: metrics,
	}
}

type commentaryRequest struct {
	Prompt string `json:"prompt"`
}

type commentaryResponse struct {
	Text string `json:"text"`
}

// BuildPrompt describes the drawn matchups, a bye is announced as a walkover
func BuildPrompt(tournamentType string, matches []bracket.Matchup) string {
	var lines strings.Builder
	for _, m := range matches {
		p1 := m.Player1
		if m.Player2 == nil {
			fmt.Fprintf(&lines, "- %s (%s) goes straight through (BYE)\n", p1.Player.Name, p1.Team.Name)
			continue
		}
		p2 := m.Player2
		fmt.Fprintf(&lines, "- %s (%s) vs %s (%s)\n", p1.Player.Name, p1.Team.Name, p2.Player.Name, p2.Team.Name)
	}

	return fmt.Sprintf(`Act as an excited, professional football commentator.

We are in a FIFA tournament: %q.

These are the drawn matchups:
%s
Write a short tournament preview (at most 150 words).
1. Name the "Match of the Day", the most balanced or interesting pairing.
2. Make a fun prediction about the dark horse of the tournament.
3. Use football emojis and flags.
4. Keep the tone fun and competitive.
`, tournamentType, lines.String())
}

func (c *HTTPCommentator) Preview(ctx context.Context, tournamentType string, matches []bracket.Matchup) string {
	if c.url == "" || c.apiKey == "" {
		c.metrics.commentaryRequest("disabled")
		return CommentaryNotConfigured
	}
	if !c.limiter.Allow() {
		c.metrics.commentaryRequest("throttled")
		return CommentaryBusy
	}

	text, err := c.generate(ctx, BuildPrompt(tournamentType, matches))
	if err != nil {
		slog.Warn("commentary request failed", "error", err)
		c.metrics.commentaryRequest(outcomeFailed)
		return CommentaryUnavailable
	}
	if strings.TrimSpace(text) == "" {
		c.metrics.commentaryRequest("empty")
		return CommentaryEmpty
	}
	c.metrics.commentaryRequest(outcomeApplied)
	return text
}

func (c *HTTPCommentator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(commentaryRequest{Prompt: prompt})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("commentary endpoint returned %s", resp.Status)
	}
	var out commentaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode commentary response: %w", err)
	}
	return out.Text, nil
}

// CurrentMatches is what the commentator previews: the group fixtures during the group
// stage and the current knockout round afterwards
func CurrentMatches(state bracket.State) []bracket.Matchup {
	if state.Stage == bracket.StageGroups {
		var matches []bracket.Matchup
		for _, g := range state.Groups {
			matches = append(matches, g.Matches...)
		}
		return matches
	}
	return state.Matchups
}
