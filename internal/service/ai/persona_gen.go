package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sentinellabs/honeypot/backend/internal/model/convo"
	"github.com/sentinellabs/honeypot/backend/internal/model/persona"
)

const personaHistoryLimit = 10

// PersonaGenerator produces the in-character reply for each turn. On any
// upstream failure it degrades to the canned-phrase table; the caller always
// gets some reply.
type PersonaGenerator struct {
	chain   chainRunner
	limiter *RateLimiter
	pick    Picker
}

// NewPersonaGenerator compiles the reply chain. chatModel should sample with
// some temperature so the persona does not repeat itself; pick may be nil.
func NewPersonaGenerator(ctx context.Context, chatModel model.ChatModel, limiter *RateLimiter, pick Picker) (*PersonaGenerator, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage(personaUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile persona chain: %w", err)
	}

	return &PersonaGenerator{chain: runnable, limiter: limiter, pick: pick}, nil
}

// Reply generates the persona's answer to msg. The detector's analysis
// calibrates tone internally and is never echoed to the scammer. A nil
// generator (model not configured) answers from the canned table.
func (g *PersonaGenerator) Reply(ctx context.Context, p persona.Persona, msg convo.Message, history []convo.Message, analysis convo.Analysis, _ convo.Metadata) (string, error) {
	if g == nil || g.chain == nil {
		return CannedReply(p, msg.Text, nil), nil
	}

	if !g.limiter.Allow() {
		log.Printf("[persona] %v, using canned reply", ErrRateLimited)
		return CannedReply(p, msg.Text, g.pick), nil
	}

	input := map[string]any{
		"system":  buildPersonaSystemPrompt(p, analysis),
		"history": formatHistory(history, personaHistoryLimit),
		"message": strings.TrimSpace(msg.Text),
	}

	response, err := g.chain.Invoke(ctx, input)
	if err != nil {
		kind := ClassifyTransport(err)
		log.Printf("[persona] transport failure (%s): %v, using canned reply", kind, err)
		return CannedReply(p, msg.Text, g.pick), nil
	}

	reply := ""
	if response != nil {
		reply = strings.TrimSpace(response.Content)
	}
	if reply == "" {
		log.Printf("[persona] empty model output, using canned reply")
		return CannedReply(p, msg.Text, g.pick), nil
	}

	log.Printf("[persona] generated reply, persona=%s, length=%d", p.ID, len(reply))
	return reply, nil
}
