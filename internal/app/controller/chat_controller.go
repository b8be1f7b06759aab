package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/animestore-backend/internal/app/service"
	"github.com/ikkim/animestore-backend/internal/middleware"
	ws "github.com/ikkim/animestore-backend/internal/websocket"
)

type ChatController struct {
	chatService service.ChatService
	hub         *ws.Hub
	upgrader    *gorillaws.Upgrader
}

func NewChatController(chatService service.ChatService, hub *ws.Hub, allowedOrigins []string) *ChatController {
	return &ChatController{
		chatService: chatService,
		hub:         hub,
		upgrader:    ws.NewUpgrader(allowedOrigins),
	}
}

// Length limits are enforced by the service.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// GetMyConversation returns the caller's conversation, creating it on first use.
// GET /api/chat
func (ctrl *ChatController) GetMyConversation(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	view, err := ctrl.chatService.GetMyConversation(userID)
	if err != nil {
		respondError(c, err, "get conversation")
		return
	}
	c.JSON(http.StatusOK, view)
}

// SendMessage POST /api/chat/messages
func (ctrl *ChatController) SendMessage(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := ctrl.chatService.SendUserMessage(c.Request.Context(), userID, req.Content)
	if err != nil {
		respondError(c, err, "send message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// MarkRead PUT /api/chat/read
func (ctrl *ChatController) MarkRead(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := ctrl.chatService.MarkReadByUser(userID); err != nil {
		respondError(c, err, "mark conversation read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListConversations GET /api/admin/conversations?unread=true
func (ctrl *ChatController) ListConversations(c *gin.Context) {
	page := paginationFromQuery(c)
	conversations, total, err := ctrl.chatService.ListConversations(c.Query("unread") == "true", page)
	if err != nil {
		respondError(c, err, "list conversations")
		return
	}
	c.JSON(http.StatusOK, newPage(conversations, total, page))
}

// GetConversation GET /api/admin/conversations/:id
func (ctrl *ChatController) GetConversation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := ctrl.chatService.GetConversation(id)
	if err != nil {
		respondError(c, err, "get conversation")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Reply POST /api/admin/conversations/:id/messages
func (ctrl *ChatController) Reply(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SendMessageRequest
	if !bindJSON(c, &req) {
		return
	}

	msg, err := ctrl.chatService.SendAdminMessage(c.Request.Context(), adminID, id, req.Content)
	if err != nil {
		respondError(c, err, "send message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// MarkConversationRead PUT /api/admin/conversations/:id/read
func (ctrl *ChatController) MarkConversationRead(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.chatService.MarkReadByAdmin(id); err != nil {
		respondError(c, err, "mark conversation read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// WebSocket upgrades an authenticated request to a live event stream.
// GET /api/chat/ws
func (ctrl *ChatController) WebSocket(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	// the upgrader writes its own error response
	if err := ctrl.hub.Serve(ctrl.upgrader, c.Writer, c.Request, userID, middleware.IsAdmin(c)); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Failed to upgrade to WebSocket", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	middleware.GetLoggerFromContext(c).Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
