// Package agent hosts the AI email drafter. It runs an LLM agent with a
// single SaveDraft tool; the model composes the copy and the tool call
// hands the structured subject/body back to the caller.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"
	"google.golang.org/genai"

	"salesorch_backend/internal/identity"
	"salesorch_backend/platform/ai/openaicompat"

	"github.com/google/uuid"
)

// ModelConfig selects the provider an organization's AI key targets.
type ModelConfig struct {
	Platform identity.AIModelPlatform
	APIKey   string
}

// DraftInput carries everything the drafter may reference.
type DraftInput struct {
	LeadName           string
	LeadEmail          string
	Company            string
	Website            string
	Enriched           string
	CompanyName        string
	ProductName        string
	ProductDescription string
	Prompt             string
}

type Draft struct {
	Subject string
	Body    string
}

type saveDraftInput struct {
	Subject string `json:"subject" jsonschema:"description=Email subject line"`
	Body    string `json:"body" jsonschema:"description=Plain-text email body"`
}

type saveDraftOutput struct {
	Success bool `json:"success"`
}

type Drafter struct {
	runMu sync.Mutex
}

func NewDrafter() *Drafter {
	return &Drafter{}
}

// Draft runs the agent once and returns the copy it saved. The agent is
// rebuilt per call because the model endpoint and key come from the
// organization's configuration.
func (d *Drafter) Draft(ctx context.Context, cfg ModelConfig, input DraftInput) (Draft, error) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	var (
		saved   Draft
		gotTool bool
	)
	saveTool, err := functiontool.New(functiontool.Config{
		Name:        "SaveDraft",
		Description: "Saves the finished email draft. Call this exactly once with the final subject and body.",
	}, func(ctx tool.Context, in saveDraftInput) (saveDraftOutput, error) {
		saved = Draft{Subject: strings.TrimSpace(in.Subject), Body: strings.TrimSpace(in.Body)}
		gotTool = true
		return saveDraftOutput{Success: true}, nil
	})
	if err != nil {
		return Draft{}, fmt.Errorf("create save draft tool: %w", err)
	}

	llm := openaicompat.NewModel(modelOptions(cfg))
	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "EmailDrafter",
		Model:       llm,
		Description: "Drafts short, personalized sales outreach emails.",
		Instruction: drafterInstruction,
		Tools:       []tool.Tool{saveTool},
	})
	if err != nil {
		return Draft{}, fmt.Errorf("create drafter agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        "email-drafter",
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return Draft{}, fmt.Errorf("create drafter runner: %w", err)
	}

	userID := "drafter"
	sessionID := uuid.New().String()
	if _, err := sessionService.Create(ctx, &session.CreateRequest{
		AppName:   "email-drafter",
		UserID:    userID,
		SessionID: sessionID,
	}); err != nil {
		return Draft{}, fmt.Errorf("create drafter session: %w", err)
	}
	defer func() {
		_ = sessionService.Delete(ctx, &session.DeleteRequest{
			AppName:   "email-drafter",
			UserID:    userID,
			SessionID: sessionID,
		})
	}()

	userMessage := &genai.Content{
		Role:  "user",
		Parts: []*genai.Part{{Text: buildDraftPrompt(input)}},
	}

	var freeText strings.Builder
	runConfig := agent.RunConfig{StreamingMode: agent.StreamingModeNone}
	for event, err := range r.Run(ctx, userID, sessionID, userMessage, runConfig) {
		if err != nil {
			return Draft{}, fmt.Errorf("drafter run failed: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			freeText.WriteString(part.Text)
		}
	}

	if !gotTool {
		// Some models answer in prose instead of calling the tool; take
		// the text as the body so the caller still gets usable copy.
		body := strings.TrimSpace(freeText.String())
		if body == "" {
			return Draft{}, fmt.Errorf("drafter produced no output")
		}
		return Draft{Body: body}, nil
	}
	if saved.Body == "" {
		return Draft{}, fmt.Errorf("drafter saved an empty body")
	}
	return saved, nil
}

func modelOptions(cfg ModelConfig) openaicompat.Config {
	switch cfg.Platform {
	case identity.AIPlatformOllama:
		return openaicompat.Config{
			APIKey:  cfg.APIKey,
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.1",
		}
	case identity.AIPlatformGemini:
		return openaicompat.Config{
			APIKey:  cfg.APIKey,
			BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:   "gemini-2.0-flash",
		}
	default:
		return openaicompat.Config{
			APIKey: cfg.APIKey,
			Model:  "gpt-4o-mini",
		}
	}
}

const drafterInstruction = `You write short, personalized B2B sales outreach emails.

Rules:
- At most 120 words in the body.
- Plain text, no markdown, no placeholders like [Name].
- Reference the lead's company or enrichment details when available.
- End with a low-pressure call to action.
- When the draft is ready, call SaveDraft exactly once with the subject and body. Do not repeat the draft outside the tool call.`

func buildDraftPrompt(input DraftInput) string {
	var b strings.Builder
	b.WriteString("Write an outreach email.\n\n")
	writeField(&b, "Lead name", input.LeadName)
	writeField(&b, "Lead email", input.LeadEmail)
	writeField(&b, "Lead company", input.Company)
	writeField(&b, "Lead website", input.Website)
	writeField(&b, "Enrichment notes", input.Enriched)
	writeField(&b, "Our company", input.CompanyName)
	writeField(&b, "Our product", input.ProductName)
	writeField(&b, "Product description", input.ProductDescription)
	b.WriteString("\nInstructions from the sender:\n")
	b.WriteString(input.Prompt)
	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
