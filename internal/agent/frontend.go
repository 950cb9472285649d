package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/goose-agent/goose/pkg/models"
)

// ErrFrontendExecutionRequired is returned by the tool dispatch path when a
// tool call targets a frontend-owned tool: the extension
// manager never executes these itself, the request is handed upward to the
// caller instead.
var ErrFrontendExecutionRequired = errors.New("agent: tool execution delegated to frontend")

// FrontendToolResult is the outcome a caller reports back for a dispatched
// frontend-tool request, mirroring the tool-result channel's
// Result<[]Content, Error> shape.
type FrontendToolResult struct {
	Content []models.Content
	Err     error
}

// pendingFrontendCall tracks a single outstanding frontend-tool dispatch
// awaiting resolution on the tool-result channel.
type pendingFrontendCall struct {
	result chan FrontendToolResult
}

// FrontendBridge tracks which tools are frontend-owned and brokers the
// inward tool-result channel between the orchestrator (awaiting a
// result) and the caller (resolving it out-of-band). It is grounded in the
// buffered result-channel idiom used by ToolExecutor for in-process tool
// dispatch, generalized to a channel the caller drives instead of a
// worker goroutine.
type FrontendBridge struct {
	mu       sync.Mutex
	frontend map[string]struct{}
	pending  map[string]*pendingFrontendCall
}

// NewFrontendBridge creates an empty bridge with no frontend-owned tools.
func NewFrontendBridge() *FrontendBridge {
	return &FrontendBridge{
		frontend: make(map[string]struct{}),
		pending:  make(map[string]*pendingFrontendCall),
	}
}

// MarkFrontend registers tool names as frontend-owned, typically done once
// at extension registration time for a Frontend{tools, instructions}
// extension config.
func (b *FrontendBridge) MarkFrontend(toolNames ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range toolNames {
		b.frontend[name] = struct{}{}
	}
}

// IsFrontend reports whether name is a frontend-owned tool.
func (b *FrontendBridge) IsFrontend(name string) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.frontend[name]
	return ok
}

// Dispatch registers requestID as awaiting a frontend result and returns
// ErrFrontendExecutionRequired, the sentinel the tool dispatch loop checks
// for instead of calling Tool.Execute.
func (b *FrontendBridge) Dispatch(requestID string) error {
	b.mu.Lock()
	b.pending[requestID] = &pendingFrontendCall{result: make(chan FrontendToolResult, 1)}
	b.mu.Unlock()
	return ErrFrontendExecutionRequired
}

// Await blocks until Resolve delivers a result for requestID, or ctx is
// cancelled. The core imposes no timeout of its own; turn cancellation
// cancels the wait and synthesizes a cancellation tool-response.
func (b *FrontendBridge) Await(ctx context.Context, requestID string) (FrontendToolResult, error) {
	b.mu.Lock()
	call, ok := b.pending[requestID]
	b.mu.Unlock()
	if !ok {
		return FrontendToolResult{}, errors.New("agent: no pending frontend call for request " + requestID)
	}
	defer func() {
		b.mu.Lock()
		delete(b.pending, requestID)
		b.mu.Unlock()
	}()

	select {
	case res := <-call.result:
		return res, nil
	case <-ctx.Done():
		return FrontendToolResult{Err: ctx.Err()}, ctx.Err()
	}
}

// Resolve delivers a caller-supplied result for a pending frontend-tool
// request. Returns false if requestID has no pending call (already
// resolved, cancelled, or never dispatched).
func (b *FrontendBridge) Resolve(requestID string, result FrontendToolResult) bool {
	b.mu.Lock()
	call, ok := b.pending[requestID]
	b.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case call.result <- result:
		return true
	default:
		return false
	}
}

// frontendResultToToolResult flattens a FrontendToolResult into the
// runtime's ToolResult wire shape, concatenating any text content.
func frontendResultToToolResult(res FrontendToolResult) ToolResult {
	if res.Err != nil {
		return ToolResult{Content: res.Err.Error(), IsError: true}
	}
	var text string
	for _, c := range res.Content {
		if tc, ok := c.(models.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}
	return ToolResult{Content: text}
}
