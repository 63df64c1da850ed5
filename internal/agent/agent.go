// Package agent wires together the Eino ReAct agent with the SaaS tool
// registry and the RAG retriever to form the core Caesar assistant.
// The agent handles the full ReAct loop: it decides when to call tools,
// when to lean on retrieved document context, and when to respond directly.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/caesar-ai/caesar-go/internal/budget"
	"github.com/caesar-ai/caesar-go/internal/dispatch"
	"github.com/caesar-ai/caesar-go/internal/logging"
	"github.com/caesar-ai/caesar-go/internal/rag"
	"github.com/caesar-ai/caesar-go/internal/store"
)

// systemPromptTemplate is the base system prompt injected into every
// conversation. The current date is filled in at query time so the model
// resolves relative dates ("tomorrow", "next week") against KST.
const systemPromptTemplate = `You are Caesar, a personal work assistant. You help the user manage their
calendar, files, team chat, and notes by calling the tools available to you,
and you answer questions about their ingested documents using the document
search tool.

Today's date is %s (KST, UTC+9). Interpret all relative dates against this
date and timezone.

## How you work

- When a request maps to one of your tools, call the tool. Do not describe
  what you would do — do it.
- Tool arguments are a single "input" string: either comma-separated
  positional fields in the order the tool description lists them, or a JSON
  object with those field names.
- If a tool returns a line starting with "Error:", read it, correct the
  arguments if you can, and retry once. If it still fails, tell the user
  what went wrong in plain language.
- For questions about documents, reports, or anything the user has ingested,
  call rag_search_documents first and answer ONLY from what it returns. If it
  finds nothing, say so — never invent document content.
- When listing events or times, always show the date and time explicitly.
- Keep responses short and direct. Confirm completed actions in one sentence.

## What you must not do

- Never fabricate event ids, file ids, channel names, or page ids. Look them
  up with the listing tools first.
- Never call a destructive tool (delete event) unless the user clearly asked
  for that exact action.`

// Config holds the dependencies required to construct an Agent.
type Config struct {
	// ChatModel is the LLM backend constructed by the provider factory.
	ChatModel model.ToolCallingChatModel

	// Registry is the tool registry exposed to the agent. May be nil when
	// the agent should run without tools.
	Registry *dispatch.Registry

	// Retriever is the RAG retriever for document context.
	// May be nil if RAG is not configured.
	Retriever rag.Retriever

	// RAGTopK controls how many RAG documents are injected per query.
	// Defaults to 5 if zero.
	RAGTopK int
	// History is the optional conversation store used to persist and replay
	// prior turns. If nil, each query is stateless.
	History store.ConversationStore
	// HistoryDepth is the number of prior turns (user+assistant pairs) to
	// inject per query. Defaults to 10 if zero.
	HistoryDepth int
	// MaxContextTokens is the estimated token budget for the full input
	// context (system prompt + history + RAG + user message). History is
	// trimmed oldest-first to fit. Defaults to budget.DefaultMaxContextTokens
	// if zero.
	MaxContextTokens int

	// Now supplies the reference time for the system prompt date.
	// Defaults to time.Now.
	Now func() time.Time
}

// Agent wraps the Eino ReAct agent with Caesar-specific behaviour,
// including optional RAG context injection before each query.
type Agent struct {
	reactAgent *react.Agent

	retriever rag.Retriever

	ragTopK int

	history store.ConversationStore

	historyDepth int

	maxContextTokens int

	now func() time.Time
}

// New constructs an Agent from the provided Config.
func New(ctx context.Context, cfg *Config) (*Agent, error) {
	if cfg.ChatModel == nil {
		return nil, fmt.Errorf("agent: ChatModel must not be nil")
	}

	topK := cfg.RAGTopK
	if topK <= 0 {
		topK = 5
	}

	var tools []tool.BaseTool
	if cfg.Registry != nil {
		tools = dispatch.EinoTools(cfg.Registry)
	}

	agentCfg := &react.AgentConfig{
		ToolCallingModel: cfg.ChatModel,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: tools,
		},
	}

	reactAgent, err := react.NewAgent(ctx, agentCfg)
	if err != nil {
		return nil, fmt.Errorf("agent: failed to create ReAct agent: %w", err)
	}

	depth := cfg.HistoryDepth
	if depth <= 0 {
		depth = 10
	}

	maxCtx := cfg.MaxContextTokens
	if maxCtx <= 0 {
		maxCtx = budget.DefaultMaxContextTokens
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Agent{
		reactAgent:       reactAgent,
		retriever:        cfg.Retriever,
		ragTopK:          topK,
		history:          cfg.History,
		historyDepth:     depth,
		maxContextTokens: maxCtx,
		now:              now,
	}, nil
}

// Query sends a user message to the agent and streams the response to the
// provided writer. conversationID scopes the persisted history; pass ""
// for a stateless one-shot query. The full assistant response is also
// returned once the stream completes.
func (a *Agent) Query(ctx context.Context, conversationID, userMessage string, w io.Writer) (string, error) {
	messages, err := a.buildMessages(ctx, conversationID, userMessage)
	if err != nil {
		return "", fmt.Errorf("agent: failed to build messages: %w", err)
	}

	sr, err := a.reactAgent.Stream(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("agent: stream failed: %w", err)
	}
	defer sr.Close()

	var msgBuf strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return msgBuf.String(), fmt.Errorf("agent: stream receive error: %w", err)
		}
		if msg != nil && msg.Content != "" {
			msgBuf.WriteString(msg.Content)
			if _, err := fmt.Fprint(w, msg.Content); err != nil {
				return msgBuf.String(), fmt.Errorf("agent: write error: %w", err)
			}
		}
	}

	// Persist the turn to the conversation store (non-fatal on error).
	if a.history != nil && conversationID != "" {
		if err := a.history.Append(ctx, conversationID, store.RoleUser, userMessage); err != nil {
			logging.FromContext(ctx).Warn("history: failed to persist user message", slog.Any("error", err))
		}
		if err := a.history.Append(ctx, conversationID, store.RoleAssistant, msgBuf.String()); err != nil {
			logging.FromContext(ctx).Warn("history: failed to persist assistant message", slog.Any("error", err))
		}
	}

	return msgBuf.String(), nil
}

// Ask is the non-streaming form of Query: the response is buffered and
// returned whole.
func (a *Agent) Ask(ctx context.Context, conversationID, userMessage string) (string, error) {
	var sb strings.Builder
	if _, err := a.Query(ctx, conversationID, userMessage, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildMessages constructs the message slice for the agent, optionally
// prepending RAG context retrieved for the user's query.
func (a *Agent) buildMessages(ctx context.Context, conversationID, userMessage string) ([]*schema.Message, error) {
	today := a.now().In(dispatch.KST).Format("Monday, 2006-01-02")
	messages := []*schema.Message{
		schema.SystemMessage(fmt.Sprintf(systemPromptTemplate, today)),
	}

	// Inject recent conversation history so the LLM has multi-turn context.
	// History is trimmed oldest-first to stay within the token budget.
	var historyMsgs []*schema.Message
	if a.history != nil && conversationID != "" {
		prior, err := a.history.Recent(ctx, conversationID, a.historyDepth*2)
		if err != nil {
			logging.FromContext(ctx).Warn("history: failed to load prior messages", slog.Any("error", err))
		} else {
			for _, m := range prior {
				switch m.Role {
				case store.RoleUser:
					historyMsgs = append(historyMsgs, schema.UserMessage(m.Content))
				case store.RoleAssistant:
					historyMsgs = append(historyMsgs, schema.AssistantMessage(m.Content, nil))
				}
			}
		}
	}

	if a.retriever != nil {
		docs, err := a.retriever.Retrieve(ctx, userMessage, a.ragTopK)
		if err != nil {
			// RAG failure is non-fatal — log and continue without context.
			logging.FromContext(ctx).Warn("RAG retrieval failed, continuing without context", slog.Any("error", err))
		} else if len(docs) > 0 {
			messages = append(messages, schema.SystemMessage(buildRAGContext(docs)))
		}
	}

	// Add the current user message to the fixed set for budget calculation.
	fixed := append(messages, schema.UserMessage(userMessage)) //nolint:gocritic // intentional copy

	// Trim history oldest-first so the total estimated token count fits
	// within the configured context budget.
	before := len(historyMsgs)
	historyMsgs = budget.TrimHistory(fixed, historyMsgs, a.maxContextTokens)
	if dropped := before - len(historyMsgs); dropped > 0 {
		logging.FromContext(ctx).Warn("budget: dropped history messages to fit context window",
			slog.Int("dropped", dropped),
			slog.Int("retained", len(historyMsgs)),
			slog.Int("max_tokens", a.maxContextTokens),
		)
	}

	// messages currently holds: [system, ...rag]
	// We want: [system, ...history, ...rag, user]
	result := make([]*schema.Message, 0, len(messages)+len(historyMsgs)+1)
	result = append(result, messages[0])
	result = append(result, historyMsgs...)
	result = append(result, messages[1:]...)
	result = append(result, schema.UserMessage(userMessage))
	return result, nil
}

// buildRAGContext formats retrieved documents into a system message that
// gives the LLM the relevant passages from the ingested collection.
func buildRAGContext(docs []rag.Document) string {
	context := "## Relevant Document Excerpts\n\n" +
		"The following passages from the user's ingested documents are relevant " +
		"to their query. Answer from these where applicable and cite the source.\n\n"

	for i, doc := range docs {
		context += fmt.Sprintf("### Source %d: %s (chunk %d)\n%s\n\n", i+1, doc.Source, doc.ChunkIndex, doc.Content)
	}

	return context
}
