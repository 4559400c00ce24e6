package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"square.ai/skill-gateway/app/domain/auth"
	"square.ai/skill-gateway/app/domain/common"
	mcpimpl "square.ai/skill-gateway/app/interfaces/http/routes/v1/mcp/mcp_impl"
	"square.ai/skill-gateway/app/interfaces/http/responses"
	"square.ai/skill-gateway/config"
)

// skillMethods is the JSON-RPC surface exposed to clients: the handshake
// plus tool listing and invocation. Resources and prompts stay closed.
var skillMethods = map[string]bool{
	"initialize":                true,
	"notifications/initialized": true,
	"ping":                      true,
	"tools/list":                true,
	"tools/call":                true,
}

type rpcEnvelope struct {
	Method string `json:"method"`
}

// peekMethod reads the JSON-RPC method and leaves the body readable for the
// streamable server behind it.
func peekMethod(reqCtx *gin.Context) (string, error) {
	body, err := io.ReadAll(reqCtx.Request.Body)
	if err != nil {
		return "", err
	}
	reqCtx.Request.Body = io.NopCloser(bytes.NewReader(body))
	var env rpcEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", err
	}
	return env.Method, nil
}

func MCPMethodGuard(allowed map[string]bool) gin.HandlerFunc {
	return func(reqCtx *gin.Context) {
		method, err := peekMethod(reqCtx)
		if err != nil {
			responses.AbortWithError(reqCtx,
				fmt.Errorf("%w: invalid JSON-RPC payload", common.ErrInvalidArgument),
				"5e6f7a8b-9c0d-4e1f-8a2b-3c4d5e6f7a8b")
			return
		}
		if !allowed[method] {
			responses.AbortWithError(reqCtx,
				fmt.Errorf("%w: method not allowed: %s", common.ErrForbidden, method),
				"1c2d3e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f")
			return
		}
		reqCtx.Next()
	}
}

type MCPAPI struct {
	server      *mcpserver.MCPServer
	authService *auth.AuthService
}

func NewMCPAPI(skillMCP *mcpimpl.SkillMCP, authService *auth.AuthService) *MCPAPI {
	server := mcpserver.NewMCPServer("skill-gateway", config.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	skillMCP.RegisterTool(server)
	return &MCPAPI{
		server:      server,
		authService: authService,
	}
}

// RegisterRouter
// @Summary MCP streamable endpoint
// @Description Model Context Protocol endpoint exposing the list_skills and query_skill tools.
// @Tags MCP
// @Security BearerAuth
// @Accept json
// @Produce text/event-stream
// @Param request body any true "MCP request payload"
// @Success 200 {string} string "Streamed response (SSE or chunked transfer)"
// @Router /v1/mcp [post]
func (api *MCPAPI) RegisterRouter(router gin.IRouter) {
	router.POST("/mcp",
		api.authService.RequiredIdentityMiddleware(),
		MCPMethodGuard(skillMethods),
		gin.WrapH(mcpserver.NewStreamableHTTPServer(api.server)),
	)
}
