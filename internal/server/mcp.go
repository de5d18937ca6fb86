package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// MCPConfig holds MCP server configuration.
type MCPConfig struct {
	Transport string // "stdio" or "streamable-http"
	Port      int
}

// MCPServer exposes the action handlers as MCP tools, so MCP-speaking
// clients can drive the host application without the socket dispatcher.
type MCPServer struct {
	service *Service
	mcp     *mcpserver.MCPServer
}

// NewMCPServer wraps a Service in an MCP tool surface.
func NewMCPServer(service *Service) *MCPServer {
	s := &MCPServer{
		service: service,
		mcp: mcpserver.NewMCPServer(
			"appdriver",
			"1.0.0",
		),
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server with the configured transport.
func (s *MCPServer) Serve(cfg MCPConfig) error {
	switch cfg.Transport {
	case "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

// toolHandler adapts a dispatched command to the MCP calling convention:
// tool arguments pass through as the command payload, and the uniform
// envelope maps onto tool success/error results.
func (s *MCPServer) toolHandler(command string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := json.Marshal(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp := s.service.Dispatch(ctx, command, payload)
		if !resp.Success {
			return mcp.NewToolResultError(resp.Error), nil
		}

		data, err := json.Marshal(resp.Data)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to serialize response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

func (s *MCPServer) registerTools() {
	windowLabel := mcp.WithString("window_label",
		mcp.Description("Logical window label (default \"main\")"))

	s.mcp.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Check that the host application bridge is alive; echoes the value back"),
			mcp.WithString("value", mcp.Description("Value to echo")),
		),
		s.toolHandler("ping"),
	)

	s.mcp.AddTool(
		mcp.NewTool("take_screenshot",
			mcp.WithDescription("Capture a window natively via OS window enumeration. Requires screen-capture permission; returns a JPEG data URL."),
			windowLabel,
			mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default 85)")),
			mcp.WithNumber("max_width", mcp.Description("Downscale wider captures to this width (default 1920)")),
		),
		s.toolHandler("take_screenshot"),
	)

	s.mcp.AddTool(
		mcp.NewTool("capture_screenshot",
			mcp.WithDescription("Capture the surface content from inside the script context. Needs no OS permission or window focus."),
			windowLabel,
			mcp.WithNumber("quality", mcp.Description("JPEG quality 1-100 (default 85)")),
			mcp.WithNumber("max_width", mcp.Description("Downscale wider captures to this width (default 1920)")),
		),
		s.toolHandler("capture_screenshot"),
	)

	s.mcp.AddTool(
		mcp.NewTool("get_dom",
			mcp.WithDescription("Fetch the rendered DOM text from a surface"),
			windowLabel,
		),
		s.toolHandler("get_dom"),
	)

	s.mcp.AddTool(
		mcp.NewTool("get_element_position",
			mcp.WithDescription("Locate an element inside a surface by selector, optionally clicking it"),
			windowLabel,
			mcp.WithString("selector_type", mcp.Description("Selector type, e.g. \"css\" or \"xpath\""), mcp.Required()),
			mcp.WithString("selector_value", mcp.Description("Selector value"), mcp.Required()),
			mcp.WithBoolean("should_click", mcp.Description("Click the element once located")),
			mcp.WithBoolean("raw_coordinates", mcp.Description("Return unscaled coordinates")),
		),
		s.toolHandler("get_element_position"),
	)

	s.mcp.AddTool(
		mcp.NewTool("send_text_to_element",
			mcp.WithDescription("Focus an element inside a surface and type text into it"),
			windowLabel,
			mcp.WithString("selector_type", mcp.Description("Selector type, e.g. \"css\" or \"xpath\""), mcp.Required()),
			mcp.WithString("selector_value", mcp.Description("Selector value"), mcp.Required()),
			mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()),
			mcp.WithNumber("delay_ms", mcp.Description("Delay between characters in ms (default 20)")),
		),
		s.toolHandler("send_text_to_element"),
	)

	s.mcp.AddTool(
		mcp.NewTool("iframe_rpc",
			mcp.WithDescription("Call a named RPC method on the script content of a surface"),
			windowLabel,
			mcp.WithString("method", mcp.Description("RPC method name"), mcp.Required()),
			mcp.WithArray("args", mcp.Description("Positional arguments")),
			mcp.WithNumber("timeout_ms", mcp.Description("Reply timeout in ms (default 10000)")),
		),
		s.toolHandler("iframe_rpc"),
	)

	s.mcp.AddTool(
		mcp.NewTool("manage_window",
			mcp.WithDescription("Perform a window-management operation: minimize, maximize, unmaximize, close, show, hide, focus, setPosition, setSize, center, toggleFullscreen"),
			windowLabel,
			mcp.WithString("operation", mcp.Description("Operation name"), mcp.Required()),
			mcp.WithNumber("x", mcp.Description("X coordinate (setPosition)")),
			mcp.WithNumber("y", mcp.Description("Y coordinate (setPosition)")),
			mcp.WithNumber("width", mcp.Description("Width (setSize)")),
			mcp.WithNumber("height", mcp.Description("Height (setSize)")),
		),
		s.toolHandler("manage_window"),
	)

	s.mcp.AddTool(
		mcp.NewTool("simulate_text_input",
			mcp.WithDescription("Type text through OS-level input injection into whatever has focus"),
			mcp.WithString("text", mcp.Description("Text to type"), mcp.Required()),
			mcp.WithNumber("delay_ms", mcp.Description("Delay between characters in ms; 0 types the whole string at once (default 20)")),
			mcp.WithNumber("initial_delay_ms", mcp.Description("Delay before typing starts (default 500)")),
		),
		s.toolHandler("simulate_text_input"),
	)

	s.mcp.AddTool(
		mcp.NewTool("simulate_mouse_movement",
			mcp.WithDescription("Move the pointer to a screen coordinate along an interpolated path"),
			mcp.WithNumber("x", mcp.Description("Target X coordinate"), mcp.Required()),
			mcp.WithNumber("y", mcp.Description("Target Y coordinate"), mcp.Required()),
			mcp.WithNumber("steps", mcp.Description("Interpolation steps (default 20)")),
			mcp.WithNumber("step_delay_ms", mcp.Description("Delay between steps in ms")),
		),
		s.toolHandler("simulate_mouse_movement"),
	)
}
