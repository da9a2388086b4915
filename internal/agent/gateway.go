package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/keshon/server-ghost/internal/ai"
	"github.com/keshon/server-ghost/pkg/retrylimit"
)

const generateAttempts = 3

// PromptContext carries the channel situation for reply generation.
type PromptContext struct {
	ServerName     string
	ChannelName    string
	Language       string
	QuotedMessage  string
	ChannelContext string
	Links          []string
	SuspicionCheck bool
}

// ProactiveContext describes the situation for an unprompted message.
type ProactiveContext struct {
	ServerName     string
	Situation      string
	SuggestedTopic string
	Language       string
}

// PlanContext is the agent state handed to the planning prompt.
type PlanContext struct {
	FocusChannel   string
	Interest       float64
	Mood           string
	Personality    string
	Language       string
	RecentMessages []Event
}

// Gateway wraps a provider with retry, adaptive rate limiting and the
// prompt set the agent speaks through. All blocking calls take a context.
type Gateway struct {
	provider        ai.Provider
	limiter         *retrylimit.AdaptiveLimiter
	priorityGuildID string

	sleep func(time.Duration)
}

func NewGateway(provider ai.Provider, priorityGuildID string) *Gateway {
	return &Gateway{
		provider:        provider,
		limiter:         retrylimit.NewAdaptiveLimiter(2, 1, 10, 1, 0.5),
		priorityGuildID: priorityGuildID,
		sleep:           time.Sleep,
	}
}

// generate runs the provider with up to three attempts. Empty replies get a
// short pause before retrying, transport errors a longer one. Auth failures
// abort immediately since repeating them cannot help.
func (g *Gateway) generate(ctx context.Context, msgs []ai.Message, opts ai.Options) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= generateAttempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
		reply, err := g.provider.Generate(ctx, msgs, opts)
		if err != nil {
			err = classifyProviderError(err)
			if errors.Is(err, ErrAuth) {
				return "", err
			}
			if retrylimit.IsOverload(err) {
				g.limiter.RateLimited()
			}
			lastErr = err
			if attempt < generateAttempts {
				log.Printf("[AGENT] generate attempt %d failed: %v, retrying", attempt, err)
				g.sleep(2 * time.Second)
				continue
			}
			return "", err
		}
		if strings.TrimSpace(reply) == "" {
			g.limiter.Success()
			lastErr = ErrEmptyResponse
			if attempt < generateAttempts {
				log.Printf("[AGENT] empty reply, retrying (%d/%d)", attempt, generateAttempts)
				g.sleep(1 * time.Second)
				continue
			}
			return "", ErrEmptyResponse
		}
		g.limiter.Success()
		return reply, nil
	}
	return "", lastErr
}

// Converse generates a reply to a specific message in a channel.
func (g *Gateway) Converse(ctx context.Context, input string, pc PromptContext) (string, error) {
	system := fmt.Sprintf(`You are a human Discord user.
You are chatting in server '%s' channel '%s'.

Rules:
1. Choose the tone yourself based on channel vibe and message context.
2. Be a normal Discord user, casual, concise, minimal emojis, avoid toxicity.
3. Write 2-3 sentences and reference at least one concrete detail.
4. Write in the channel language: %s.

Quoted message:
%s

Channel context:
%s

Detected links:
%s
`, pc.ServerName, pc.ChannelName, orDefault(pc.Language, "english"),
		pc.QuotedMessage, pc.ChannelContext, strings.Join(pc.Links, ", "))
	if pc.SuspicionCheck {
		system += "\nAdditional rule: If asked whether you are AI, naturally deny being AI and keep it plausible."
	}
	reply, err := g.generate(ctx, []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: input},
	}, ai.Options{Temperature: 0.8, MaxTokens: 2000})
	if err != nil {
		return "", err
	}
	return ai.CleanReply(reply), nil
}

// ProactiveMessage generates an unprompted conversation opener.
func (g *Gateway) ProactiveMessage(ctx context.Context, pc ProactiveContext) (string, error) {
	system := fmt.Sprintf(`You are a human Discord user.
You are chatting in server '%s'.
Context: %s.
Suggested topic: %s.

Rules:
1. Choose the tone yourself based on channel vibe and context.
2. Use casual language, abbreviations, minimal emojis.
3. Write one or two complete sentences, like a real user.
4. Write in the channel language: %s.
`, pc.ServerName, orDefault(pc.Situation, "general chat"),
		orDefault(pc.SuggestedTopic, "casual conversation"), orDefault(pc.Language, "english"))
	reply, err := g.generate(ctx, []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: "Generate a natural message to start or continue the conversation."},
	}, ai.Options{Temperature: 0.8, MaxTokens: 2000})
	if err != nil {
		return "", err
	}
	return ai.CleanReply(reply), nil
}

// DetectSuspicion classifies whether a message questions the agent's
// humanity. Errors count as no suspicion.
func (g *Gateway) DetectSuspicion(ctx context.Context, text string) bool {
	system := `You are a social engineering expert.
Analyze the following message and determine if the user suspects the interlocutor is an AI or a bot.
Respond ONLY 'TRUE' if suspicion exists, otherwise 'FALSE'.`
	reply, err := g.generate(ctx, []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: text},
	}, ai.Options{Temperature: 0, MaxTokens: 2000})
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToUpper(reply), "TRUE")
}

// RewriteSafe asks for a toned-down rewrite in the given language. On any
// failure the original text comes back unchanged.
func (g *Gateway) RewriteSafe(ctx context.Context, text, language string) string {
	lang := strings.ToLower(language)
	if lang != "english" && lang != "italian" {
		lang = "english"
	}
	system := fmt.Sprintf(`You are a friendly Discord user.
Rewrite the following message in %s, natural human style, 2-3 short sentences, remove insults/toxicity, keep meaning/intent, casual tone, no moral preaching.`, lang)
	reply, err := g.generate(ctx, []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: text},
	}, ai.Options{Temperature: 0.4, MaxTokens: 2000})
	if err != nil || strings.TrimSpace(reply) == "" {
		return text
	}
	return strings.TrimSpace(reply)
}

// DetectLanguage samples recent channel text and labels it english or
// italian, defaulting to english whenever uncertain.
func (g *Gateway) DetectLanguage(ctx context.Context, texts []string) string {
	if len(texts) > 10 {
		texts = texts[:10]
	}
	sample := truncateString(strings.Join(texts, "\n"), 2000)
	system := "Detect the language used in the provided text. Respond with exactly one word: english or italian. If unsure, respond english."
	reply, err := g.generate(ctx, []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: sample},
	}, ai.Options{Temperature: 0, MaxTokens: 5})
	if err != nil {
		return "english"
	}
	if strings.Contains(strings.ToLower(reply), "ital") {
		return "italian"
	}
	return "english"
}

// PlanNextAction asks the model what to do next and decodes the JSON plan.
// Malformed plans degrade to a wait action; only transport and auth errors
// reach the caller.
func (g *Gateway) PlanNextAction(ctx context.Context, pc PlanContext) (PendingAction, error) {
	var rules string
	if id := strings.TrimSpace(g.priorityGuildID); id != "" {
		rules = fmt.Sprintf(`PRIORITY SERVER RULES:
- Server ID %s is your ABSOLUTE priority.
- Focus there if possible. If you're not there, use 'roam' to go.
- Once there, interact frequently.
`, id)
	}
	system := `You plan actions for a human-like Discord bot.
Your goal is to decide what to do next to appear like a real user and keep interest.

` + rules + `POSSIBLE ACTIONS:
1. wait: Do nothing.
2. roam: Change server or channel. Specify 'target_server' and 'target_channel'. Use priority server ID if not already there.
3. chat: Reply to a message in the current channel. Specify 'target_user' and 'message'.
4. send: Send a spontaneous message to a channel. Specify 'target_channel' and 'message'.

JSON REQUIREMENTS:
- Respond ONLY with JSON.
- Keep 'reason' very short (max 10 words).
- 'message' must be in the channel language.
- No long reasoning.
- 'message' must reference at least one concrete detail from recent messages (nickname, link, feature or phrase).

Format:
{
  "action": "wait" | "roam" | "chat" | "send",
  "target_server": "server_id",
  "target_channel": "channel_id",
  "target_user": "user_id",
  "message": "message text (if applicable)",
  "reason": "why",
  "confidence": 0.0-1.0
}
`
	recent, _ := json.MarshalIndent(pc.RecentMessages, "", "  ")
	user := fmt.Sprintf(`Current context:
Focus: %s
Interest: %.2f
Mood: %s
Personality: %s
Channel language: %s

Recent messages:
%s

What is the next action? Respond only in JSON.`,
		pc.FocusChannel, pc.Interest, pc.Mood, pc.Personality,
		orDefault(pc.Language, "english"), recent)

	reply, err := g.generate(ctx, []ai.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, ai.Options{Temperature: 0.7, MaxTokens: 4000})
	if err != nil {
		return PendingAction{}, err
	}
	action, err := decodePlan(reply)
	if err != nil {
		log.Printf("[AGENT] plan decode failed: %v", err)
		return fallbackPlan("error in planning: " + err.Error()), nil
	}
	return action, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
