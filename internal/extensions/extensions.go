package extensions

import (
	"sort"
	"strings"

	"github.com/goose-agent/goose/internal/config"
)

// Kind represents a unified extension type.
type Kind string

const (
	// KindBuiltin is an in-process tool group compiled into the binary
	// (exec, files, security).
	KindBuiltin Kind = "builtin"
	// KindMCP is a server reachable through the extension manager's MCP
	// transport (stdio or HTTP).
	KindMCP Kind = "mcp"
)

// Extension describes a configured extension, whether a builtin tool group
// or an MCP server, in a single namespace the reply orchestrator can query.
type Extension struct {
	ID     string
	Name   string
	Kind   Kind
	Source string
	Status string
}

// BuiltinNames lists the builtin tool groups always available to the
// extension manager, independent of configuration.
var BuiltinNames = []string{"exec", "files", "security"}

// List returns a unified list of configured extensions: the compiled-in
// builtin tool groups, plus every MCP server named in cfg.MCP.Servers.
func List(cfg *config.Config) []Extension {
	var out []Extension

	for _, name := range BuiltinNames {
		out = append(out, Extension{
			ID:     name,
			Name:   name,
			Kind:   KindBuiltin,
			Source: "builtin",
			Status: "enabled",
		})
	}

	if cfg != nil && cfg.MCP.Enabled {
		for _, server := range cfg.MCP.Servers {
			if server == nil {
				continue
			}
			status := "configured"
			if server.AutoStart {
				status = "auto_start"
			}
			name := server.Name
			if strings.TrimSpace(name) == "" {
				name = server.ID
			}
			out = append(out, Extension{
				ID:     server.ID,
				Name:   name,
				Kind:   KindMCP,
				Source: string(server.Transport),
				Status: status,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind == out[j].Kind {
			return out[i].ID < out[j].ID
		}
		return out[i].Kind < out[j].Kind
	})

	return out
}
