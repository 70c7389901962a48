// Package anthropic implements the assist provider backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"inkwell/internal/domain/services"
	"inkwell/internal/service/collab/providers"
)

const defaultMaxTokens = 8192

// systemPrompt pins the response to the tagged shape the coordinator
// validates at the boundary. Anything that doesn't parse is treated as a
// transport failure upstream, so the contract here is strict.
const systemPrompt = `You are a writing collaborator embedded in a document workspace.
The user may share the current document content with you. Respond with a single JSON object, no surrounding prose or code fences, in one of exactly two shapes:

{"kind": "document_update", "new_content": "<the complete rewritten document>", "reply": "<a short explanation of what you changed>"}

{"kind": "chat_reply", "reply": "<your conversational answer>"}

Use document_update only when the user asks you to change the document, and always return the full document content, not a fragment.`

// wireResult is the raw JSON shape the model is instructed to produce
type wireResult struct {
	Kind       string `json:"kind"`
	NewContent string `json:"new_content"`
	Reply      string `json:"reply"`
}

// Provider calls the Anthropic Messages API.
type Provider struct {
	client  sdk.Client
	catalog *providers.Catalog
}

// NewProvider creates a new anthropic provider
func NewProvider(apiKey string, catalog *providers.Catalog) *Provider {
	return &Provider{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		catalog: catalog,
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return "anthropic"
}

// SupportsModel reports whether the model is served by this provider
func (p *Provider) SupportsModel(model string) bool {
	return providers.InferProvider(model) == "anthropic"
}

// RequestAssistance performs a single blocking request/response call.
func (p *Provider) RequestAssistance(ctx context.Context, req *services.AssistRequest) (*services.AssistResult, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model %q is not supported by anthropic provider", req.Model)
	}

	blocks := []sdk.ContentBlockParamUnion{
		sdk.NewTextBlock(buildPrompt(req)),
	}
	if req.Attachment != nil && p.catalog.SupportsImages(req.Model) {
		blocks = append(blocks, sdk.NewImageBlockBase64(
			req.Attachment.MIMEType,
			base64.StdEncoding.EncodeToString(req.Attachment.Data),
		))
	}

	message, err := p.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: int64(p.catalog.MaxTokens(req.Model, defaultMaxTokens)),
		System: []sdk.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if variant, ok := block.AsAny().(sdk.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}

	return parseResult(text.String())
}

// buildPrompt folds the user's message and the current document content
// into one user block.
func buildPrompt(req *services.AssistRequest) string {
	var sb strings.Builder
	if req.DocumentContent != nil {
		sb.WriteString("Current document content:\n<document>\n")
		sb.WriteString(*req.DocumentContent)
		sb.WriteString("\n</document>\n\n")
	} else {
		sb.WriteString("No document is currently open.\n\n")
	}
	sb.WriteString("User message:\n")
	sb.WriteString(req.UserText)
	return sb.String()
}

// parseResult decodes the tagged wire shape. Models occasionally wrap JSON
// in code fences despite instructions; strip them before giving up.
func parseResult(raw string) (*services.AssistResult, error) {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var wire wireResult
	if err := json.Unmarshal([]byte(trimmed), &wire); err != nil {
		return nil, fmt.Errorf("decode assist response: %w", err)
	}

	return &services.AssistResult{
		Kind:       wire.Kind,
		NewContent: wire.NewContent,
		ReplyText:  wire.Reply,
	}, nil
}
