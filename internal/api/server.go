package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ticketeye/internal/auth"
	"github.com/ticketeye/internal/database"
	"github.com/ticketeye/internal/engine"
	"github.com/ticketeye/internal/models"
)

type Server struct {
	engine *engine.Engine
	router *gin.Engine
}

func NewServer(eng *engine.Engine) *Server {
	server := &Server{
		engine: eng,
		router: gin.Default(),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Public routes
	s.router.POST("/api/v1/auth/login", s.login)
	s.router.POST("/api/v1/auth/register", s.register)

	// Protected routes (require authentication)
	api := s.router.Group("/api/v1")
	api.Use(auth.AuthMiddleware())

	// Alert log endpoints
	api.GET("/alerts", s.listAlerts)
	api.GET("/alerts/active", s.listActiveAlerts)
	api.GET("/alerts/history", s.alertHistory)
	api.PUT("/alerts/:id/acknowledge", s.acknowledgeAlert)
	api.POST("/alerts/acknowledge-all", s.acknowledgeAll)
	api.DELETE("/alerts/:id", s.dismissAlert)
	api.DELETE("/alerts", auth.RequireRole(models.RoleAdmin), s.clearAlerts)

	// Engine control endpoints
	slaGroup := api.Group("/sla")
	{
		slaGroup.GET("/config", s.getConfig)
		slaGroup.PATCH("/config", auth.RequireRole(models.RoleAdmin), s.updateConfig)
		slaGroup.GET("/status", s.getStatus)
		slaGroup.PUT("/enabled", auth.RequireRole(models.RoleAdmin), s.setEnabled)
		slaGroup.POST("/permission", s.requestPermission)
	}
}

func (s *Server) Start(port int) error {
	return s.router.Run(fmt.Sprintf(":%d", port))
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) listAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Alerts())
}

func (s *Server) listActiveAlerts(c *gin.Context) {
	alerts := s.engine.ActiveAlerts()
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, alerts)
}

// alertHistory pages through the persisted alert rows, which survive
// restarts unlike the in-memory log.
func (s *Server) alertHistory(c *gin.Context) {
	var alerts []models.Alert
	query := database.GetDB().Order("created_at desc")

	if since := c.Query("since"); since != "" {
		if t, err := time.Parse(time.RFC3339, since); err == nil {
			query = query.Where("created_at >= ?", t)
		}
	}
	if ticketID := c.Query("ticket_id"); ticketID != "" {
		query = query.Where("ticket_id = ?", ticketID)
	}

	if err := query.Limit(200).Find(&alerts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch alert history"})
		return
	}

	c.JSON(http.StatusOK, alerts)
}

func (s *Server) acknowledgeAlert(c *gin.Context) {
	if err := s.engine.Acknowledge(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) acknowledgeAll(c *gin.Context) {
	s.engine.AcknowledgeAll()
	c.Status(http.StatusOK)
}

func (s *Server) dismissAlert(c *gin.Context) {
	if err := s.engine.Dismiss(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) clearAlerts(c *gin.Context) {
	s.engine.ClearAll()
	c.Status(http.StatusOK)
}

func (s *Server) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Config())
}

func (s *Server) updateConfig(c *gin.Context) {
	var update engine.ConfigUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.engine.UpdateConfig(update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s.engine.Config())
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"enabled":       s.engine.Enabled(),
		"active_alerts": len(s.engine.ActiveAlerts()),
	})
}

func (s *Server) setEnabled(c *gin.Context) {
	var req struct {
		Enabled *bool `json:"enabled" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.engine.SetEnabled(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"enabled": s.engine.Enabled()})
}

func (s *Server) requestPermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"granted": s.engine.RequestPermission()})
}

func (s *Server) login(c *gin.Context) {
	var loginReq struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.GetDB().Where("username = ?", loginReq.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if !user.CheckPassword(loginReq.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "api_key": user.ApiKey})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := models.User{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.RoleAgent,
		IsActive: true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	if err := database.GetDB().Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username})
}
