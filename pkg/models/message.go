package models

import (
	"encoding/json"
	"time"
)

// ChannelType represents a messaging platform.
type ChannelType string

const (
	ChannelTelegram ChannelType = "telegram"
	ChannelDiscord  ChannelType = "discord"
	ChannelSlack    ChannelType = "slack"
	ChannelAPI      ChannelType = "api"
	ChannelWhatsApp ChannelType = "whatsapp"
	ChannelSignal   ChannelType = "signal"
	ChannelIMessage ChannelType = "imessage"
	ChannelMatrix   ChannelType = "matrix"
	ChannelTeams    ChannelType = "teams"
	ChannelEmail    ChannelType = "email"
)

// Direction indicates if a message is inbound or outbound.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// Role indicates the message author type.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ContentKind discriminates the Content union.
type ContentKind string

const (
	ContentText                   ContentKind = "text"
	ContentImage                  ContentKind = "image"
	ContentThinking                ContentKind = "thinking"
	ContentRedactedThinking        ContentKind = "redacted_thinking"
	ContentToolRequest             ContentKind = "tool_request"
	ContentToolResponse            ContentKind = "tool_response"
	ContentToolConfirmationRequest ContentKind = "tool_confirmation_request"
	ContentContextLengthExceeded   ContentKind = "context_length_exceeded"
	ContentSummarizationRequested  ContentKind = "summarization_requested"
	ContentFrontendToolRequest     ContentKind = "frontend_tool_request"
)

// Content is the closed union of everything a Message can carry. Turn
// processing, conversation repair, and context packing all operate on
// []Content rather than any single concrete type.
type Content interface {
	Kind() ContentKind
}

// TextContent is plain assistant/user/system text.
type TextContent struct {
	Text string `json:"text"`
}

func (TextContent) Kind() ContentKind { return ContentText }

// ImageContent references image bytes by URL or inline base64 data.
type ImageContent struct {
	URL      string `json:"url,omitempty"`
	Data     string `json:"data,omitempty"` // base64, when no URL
	MimeType string `json:"mime_type,omitempty"`
}

func (ImageContent) Kind() ContentKind { return ContentImage }

// ThinkingContent is a model's visible reasoning trace, kept in the
// conversation so providers that support it can see their own prior
// reasoning on the next turn.
type ThinkingContent struct {
	Text      string `json:"text"`
	Signature string `json:"signature,omitempty"`
}

func (ThinkingContent) Kind() ContentKind { return ContentThinking }

// RedactedThinkingContent replaces a thinking block the provider marked
// as redacted; the encrypted payload is preserved opaquely so it can be
// round-tripped back to the provider without being interpreted.
type RedactedThinkingContent struct {
	Data string `json:"data"`
}

func (RedactedThinkingContent) Kind() ContentKind { return ContentRedactedThinking }

// ToolRequestContent is an assistant's request to invoke a tool.
type ToolRequestContent struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (ToolRequestContent) Kind() ContentKind { return ContentToolRequest }

// ToolResponseContent is the result of a tool invocation, matched back to
// its request by ID.
type ToolResponseContent struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

func (ToolResponseContent) Kind() ContentKind { return ContentToolResponse }

// ToolConfirmationRequestContent asks the caller to approve a pending
// tool call before it executes.
type ToolConfirmationRequestContent struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Input  json.RawMessage `json:"input"`
	Reason string          `json:"reason,omitempty"`
}

func (ToolConfirmationRequestContent) Kind() ContentKind {
	return ContentToolConfirmationRequest
}

// ContextLengthExceededContent marks a turn where the provider reported
// the conversation no longer fits the model's context window, triggering
// auto-compaction.
type ContextLengthExceededContent struct {
	Message string `json:"message,omitempty"`
}

func (ContextLengthExceededContent) Kind() ContentKind {
	return ContentContextLengthExceeded
}

// SummarizationRequestedContent records that the context manager asked
// for (or produced) a summary of older turns during packing.
type SummarizationRequestedContent struct {
	Reason string `json:"reason,omitempty"`
}

func (SummarizationRequestedContent) Kind() ContentKind {
	return ContentSummarizationRequested
}

// FrontendToolRequestContent is a tool request the extension manager
// never executes itself; it is bridged to the caller-supplied
// tool-result channel.
type FrontendToolRequestContent struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

func (FrontendToolRequestContent) Kind() ContentKind {
	return ContentFrontendToolRequest
}

// Message is the unified message format across all channels.
//
// ToolCalls/ToolResults remain the stored representation for wire and
// persistence compatibility with existing session storage and provider
// adapters; Contents()/SetContents() bridge to and from the full
// Content union so new code (conversation repair, the inspection
// pipeline, the context manager) can operate on []Content without every
// existing call site needing to migrate at once.
type Message struct {
	ID          string         `json:"id"`
	SessionID   string         `json:"session_id"`
	BranchID    string         `json:"branch_id,omitempty"`    // Conversation branch this message belongs to
	SequenceNum int64          `json:"sequence_num,omitempty"` // Monotonic order within the branch
	Channel     ChannelType    `json:"channel"`
	ChannelID   string         `json:"channel_id"` // Platform-specific message ID
	Direction   Direction      `json:"direction"`
	Role        Role           `json:"role"`
	Content     string         `json:"content"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	ToolCalls   []ToolCall     `json:"tool_calls,omitempty"`
	ToolResults []ToolResult   `json:"tool_results,omitempty"`
	Extra       []Content      `json:"extra,omitempty"` // thinking, confirmations, frontend requests, etc.
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Attachment represents a file or media attachment.
type Attachment struct {
	ID       string `json:"id"`
	Type     string `json:"type"` // image, audio, video, document
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// ToolCall represents an LLM's request to execute a tool.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResult represents the output of a tool execution.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// Contents returns the full ordered Content view of the message: the
// text body (if any), then any image attachments, then tool requests and
// responses, then everything carried in Extra (thinking blocks,
// confirmations, context/summarization markers, frontend requests).
func (m *Message) Contents() []Content {
	var out []Content
	if m.Content != "" {
		out = append(out, TextContent{Text: m.Content})
	}
	for _, a := range m.Attachments {
		if a.Type == "image" {
			out = append(out, ImageContent{URL: a.URL, MimeType: a.MimeType})
		}
	}
	for _, tc := range m.ToolCalls {
		out = append(out, ToolRequestContent{ID: tc.ID, Name: tc.Name, Input: tc.Input})
	}
	for _, tr := range m.ToolResults {
		out = append(out, ToolResponseContent{ID: tr.ToolCallID, Content: tr.Content, IsError: tr.IsError})
	}
	out = append(out, m.Extra...)
	return out
}

// SetContents replaces the message's content with the given ordered
// Content list, distributing each item into the field its kind owns.
// Unrecognized or forward-compatible kinds are kept in Extra so they
// round-trip even if this version of the type switch doesn't know them.
func (m *Message) SetContents(items []Content) {
	m.Content = ""
	m.Attachments = nil
	m.ToolCalls = nil
	m.ToolResults = nil
	m.Extra = nil
	for _, c := range items {
		switch v := c.(type) {
		case TextContent:
			if m.Content == "" {
				m.Content = v.Text
			} else {
				m.Content += v.Text
			}
		case ImageContent:
			m.Attachments = append(m.Attachments, Attachment{Type: "image", URL: v.URL, MimeType: v.MimeType})
		case ToolRequestContent:
			m.ToolCalls = append(m.ToolCalls, ToolCall{ID: v.ID, Name: v.Name, Input: v.Input})
		case ToolResponseContent:
			m.ToolResults = append(m.ToolResults, ToolResult{ToolCallID: v.ID, Content: v.Content, IsError: v.IsError})
		default:
			m.Extra = append(m.Extra, c)
		}
	}
}

// ToolRequests returns the tool-request view of the message, whichever
// field (ToolCalls or Extra) it was populated through.
func (m *Message) ToolRequests() []ToolRequestContent {
	var out []ToolRequestContent
	for _, tc := range m.ToolCalls {
		out = append(out, ToolRequestContent{ID: tc.ID, Name: tc.Name, Input: tc.Input})
	}
	for _, c := range m.Extra {
		if tr, ok := c.(ToolRequestContent); ok {
			out = append(out, tr)
		}
	}
	return out
}

// ToolResponses returns the tool-response view of the message.
func (m *Message) ToolResponses() []ToolResponseContent {
	var out []ToolResponseContent
	for _, tr := range m.ToolResults {
		out = append(out, ToolResponseContent{ID: tr.ToolCallID, Content: tr.Content, IsError: tr.IsError})
	}
	for _, c := range m.Extra {
		if resp, ok := c.(ToolResponseContent); ok {
			out = append(out, resp)
		}
	}
	return out
}

// Session represents a conversation thread.
type Session struct {
	ID        string         `json:"id"`
	AgentID   string         `json:"agent_id"`
	Channel   ChannelType    `json:"channel"`
	ChannelID string         `json:"channel_id"`
	Key       string         `json:"key"`
	Title     string         `json:"title,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// User represents an authenticated user.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	Provider   string    `json:"provider,omitempty"`    // OAuth provider (google, github, ...), empty for local accounts
	ProviderID string    `json:"provider_id,omitempty"` // Provider-scoped user ID
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Agent represents a configured AI agent.
type Agent struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Name         string         `json:"name"`
	SystemPrompt string         `json:"system_prompt,omitempty"`
	Model        string         `json:"model"`
	Provider     string         `json:"provider"`
	Tools        []string       `json:"tools,omitempty"`
	Config       map[string]any `json:"config,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// APIKey represents an API key for programmatic access.
type APIKey struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Prefix     string    `json:"prefix"` // First 8 chars for identification
	Scopes     []string  `json:"scopes,omitempty"`
	LastUsedAt time.Time `json:"last_used_at,omitempty"`
	ExpiresAt  time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
