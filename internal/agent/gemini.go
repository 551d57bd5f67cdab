// Package agent implements the conversational assistant backing the chat
// engine. The Gemini agent answers tyre-shop questions and grounds them with
// live inventory facts when the user mentions a concrete tyre size.
package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"tyrehub/internal/models"
	"tyrehub/internal/service"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const systemInstruction = "You are the assistant for a tyre retailer's back office. " +
	"Answer questions about tyres, stock levels, fitment and orders using the inventory facts provided in the prompt when present. " +
	"If you do not have the information, say so plainly. Do not invent stock numbers or prices. " +
	"Keep answers short and practical."

// tyre sizes like 225/45R17 embedded in free text
var sizeRe = regexp.MustCompile(`\b\d{3}/\d{2}R\d{2}\b`)

// InventoryLookup is the read-only slice of the inventory engine the agent
// uses to ground its answers.
type InventoryLookup interface {
	TyresBySize(ctx context.Context, size string, inStockOnly bool) ([]service.StockItem, error)
}

type Gemini struct {
	client    *genai.Client
	model     string
	inventory InventoryLookup
	log       *zap.Logger
}

func NewGemini(ctx context.Context, apiKey, model string, inventory InventoryLookup, log *zap.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, inventory: inventory, log: log}, nil
}

func (g *Gemini) Close() error { return g.client.Close() }

func (g *Gemini) Respond(ctx context.Context, message string, history []service.AgentTurn) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	cs := model.StartChat()
	cs.History = toGenaiHistory(history)

	prompt := message
	if facts := g.inventoryFacts(ctx, message); facts != "" {
		prompt = message + "\n\n" + facts
	}

	resp, err := cs.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", service.ErrAgentUnavailable, err)
	}
	text := collectText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", service.ErrAgentUnavailable)
	}
	return text, nil
}

func toGenaiHistory(history []service.AgentTurn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Sender == models.SenderAgent {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return out
}

// inventoryFacts looks up every tyre size mentioned in the message and
// renders the matching SKUs as a context block for the model. Lookup errors
// only lose the grounding, never the reply.
func (g *Gemini) inventoryFacts(ctx context.Context, message string) string {
	sizes := sizeRe.FindAllString(message, -1)
	if len(sizes) == 0 {
		return ""
	}
	seen := map[string]struct{}{}
	var b strings.Builder
	for _, size := range sizes {
		if _, dup := seen[size]; dup {
			continue
		}
		seen[size] = struct{}{}
		items, err := g.inventory.TyresBySize(ctx, size, false)
		if err != nil {
			g.log.Warn("inventory lookup for agent", zap.String("size", size), zap.Error(err))
			continue
		}
		if b.Len() == 0 {
			b.WriteString("Current inventory facts:\n")
		}
		if len(items) == 0 {
			fmt.Fprintf(&b, "- no tyres of size %s in the catalog\n", size)
			continue
		}
		for _, it := range items {
			fmt.Fprintf(&b, "- %s: %d in stock (threshold status %s)\n", it.Name, it.Stock, it.Status)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
