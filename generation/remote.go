package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"finwell-go-be/snapshot"
)

// RemoteStrategy asks Gemini for the artifact batch. It is the first and
// least reliable link of the chain: timeouts, missing capability and
// unparseable payloads are all expected and reported as chain errors so
// the local strategy takes over.
type RemoteStrategy struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	now     func() time.Time
	newID   IDFunc
}

// NewRemoteStrategy builds the remote strategy. Returns an error when the
// client cannot be constructed (e.g. bad credentials config); callers
// then simply omit it from the chain.
func NewRemoteStrategy(ctx context.Context, apiKey, model string, timeout time.Duration, newID IDFunc) (*RemoteStrategy, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("init AI client: %w", err)
	}
	return &RemoteStrategy{
		client:  client,
		model:   model,
		timeout: timeout,
		now:     time.Now,
		newID:   newID,
	}, nil
}

func (r *RemoteStrategy) Name() string { return "remote" }

// Generate sends a compact snapshot summary to the model and decodes the
// response into the same shape the local strategy produces.
func (r *RemoteStrategy) Generate(ctx context.Context, snap snapshot.Snapshot) (*Artifacts, error) {
	// Bounded so the fallback chain completes in bounded time.
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.Models.GenerateContent(ctx, r.model, genai.Text(r.prompt(snap)), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteGeneration, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrRemoteGeneration)
	}

	rawText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			rawText += part.Text
		}
	}

	// Clean Markdown if present (Gemini loves adding ```json ... ```)
	rawText = strings.TrimSpace(rawText)
	rawText = strings.TrimPrefix(rawText, "```json")
	rawText = strings.TrimPrefix(rawText, "```")
	rawText = strings.TrimSuffix(rawText, "```")

	var art Artifacts
	if err := json.Unmarshal([]byte(rawText), &art); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRemoteResponse, err)
	}
	if len(art.Insights) == 0 && len(art.SmartWins) == 0 {
		return nil, fmt.Errorf("%w: no artifacts in payload", ErrMalformedRemoteResponse)
	}

	r.normalize(&art, snap)
	return &art, nil
}

// normalize stamps ownership, IDs and timestamps the model cannot know,
// and trims the win list to the batch limit.
func (r *RemoteStrategy) normalize(art *Artifacts, snap snapshot.Snapshot) {
	now := r.now()
	for i := range art.Insights {
		art.Insights[i].ID = r.newID()
		art.Insights[i].UserID = snap.UserID
		art.Insights[i].CreatedAt = now
		art.Insights[i].Dismissed = false
		if art.Insights[i].ConfidenceScore <= 0 || art.Insights[i].ConfidenceScore > 1 {
			art.Insights[i].ConfidenceScore = 0.5
		}
	}
	if len(art.SmartWins) > 3 {
		art.SmartWins = art.SmartWins[:3]
	}
	for i := range art.SmartWins {
		art.SmartWins[i].ID = r.newID()
		art.SmartWins[i].UserID = snap.UserID
		art.SmartWins[i].CreatedAt = now
	}
}

func (r *RemoteStrategy) prompt(snap snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString("You are a personal finance coach. Analyze this user's financial snapshot.\n")
	b.WriteString("Return a RAW JSON OBJECT with two keys: 'insights' and 'smart_wins'. Do NOT use markdown formatting.\n")
	b.WriteString("Each insight: {'type', 'title', 'description', 'confidence_score' (0-1), 'priority_level' (low|medium|high), 'action_items' (string array)}.\n")
	b.WriteString("Each smart win: {'title', 'description', 'type' (savings|spending|investment|goal|opportunity), 'impact' (estimated annual dollars, optional), 'actionable' (bool)}. At most 3 smart wins, highest impact first.\n")
	b.WriteString("Amounts use the convention: positive = expense, negative = income.\n\n")

	for _, a := range snap.Accounts {
		b.WriteString(fmt.Sprintf(`{"account": "%s/%s", "balance": %.2f, "institution": "%s"}`+"\n",
			a.Type, a.Subtype, a.Balance, a.InstitutionName))
	}
	for _, g := range snap.Goals {
		b.WriteString(fmt.Sprintf(`{"goal": "%s", "target": %.2f, "saved": %.2f}`+"\n",
			g.Name, g.TargetAmount, g.SavedAmount))
	}
	for _, t := range snap.Transactions {
		b.WriteString(fmt.Sprintf(`{"transaction": "%s", "amount": %.2f, "categories": "%s"}`+"\n",
			t.Merchant, t.Amount, strings.Join(t.CategoryList(), ",")))
	}
	return b.String()
}
