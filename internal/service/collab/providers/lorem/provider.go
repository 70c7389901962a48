// Package lorem is a mock assist provider that generates lorem ipsum text.
// Used for development and tests without requiring real API keys.
package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	"inkwell/internal/domain/services"
	"inkwell/internal/service/collab/providers"
)

// getDelay returns the simulated call latency based on the model name.
func getDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 2 * time.Second
	}
	return 50 * time.Millisecond
}

// editVerbs mark a user message as a rewrite request, so the mock can
// exercise the document_update path end to end.
var editVerbs = []string{"rewrite", "update", "edit", "change", "add", "append", "draft"}

// Provider is a mock assist provider.
type Provider struct {
	generator *loremgen.Lorem
	catalog   *providers.Catalog
}

// NewProvider creates a new lorem provider.
func NewProvider(catalog *providers.Catalog) *Provider {
	return &Provider{
		generator: loremgen.New(),
		catalog:   catalog,
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, "lorem-")
}

// RequestAssistance simulates a blocking backend call. A message containing
// an edit verb yields a document rewrite; everything else yields a
// conversational reply.
func (p *Provider) RequestAssistance(ctx context.Context, req *services.AssistRequest) (*services.AssistResult, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model %q is not supported by lorem provider", req.Model)
	}

	select {
	case <-time.After(getDelay(req.Model)):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if req.DocumentContent != nil && wantsEdit(req.UserText) {
		return &services.AssistResult{
			Kind:       services.AssistKindDocumentUpdate,
			NewContent: *req.DocumentContent + "\n\n" + p.generator.Paragraph(2, 4),
			ReplyText:  "I've appended a new paragraph to the document.",
		}, nil
	}

	return &services.AssistResult{
		Kind:      services.AssistKindChatReply,
		ReplyText: p.generator.Sentence(8, 16),
	}, nil
}

func wantsEdit(text string) bool {
	lower := strings.ToLower(text)
	for _, verb := range editVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}
