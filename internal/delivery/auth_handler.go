package delivery

import (
	"net/http"

	"buysmart/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	useCase domain.CustomerUseCase
	log     *logrus.Logger
}

func NewAuthHandler(uc domain.CustomerUseCase, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		useCase: uc,
		log:     logger,
	}
}

// RegisterPublicRoutes wires the unauthenticated endpoints.
func (h *AuthHandler) RegisterPublicRoutes(router gin.IRouter) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes wires endpoints behind the auth middleware.
func (h *AuthHandler) RegisterProtectedRoutes(router gin.IRouter) {
	router.GET("/customers/me", h.Me)
}

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("Failed to bind JSON for register: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	profile, err := h.useCase.Register(c.Request.Context(), &domain.Customer{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
	}, req.Password)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to register: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusCreated, "Customer registered successfully", profile)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	auth, err := h.useCase.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.log.Warnf("Login failed for username %s: %v", req.Username, err)
		// Credential failures are reported uniformly so usernames cannot be
		// probed.
		ErrorResponse(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	SuccessResponse(c, http.StatusOK, "Login successful", auth)
}

func (h *AuthHandler) Me(c *gin.Context) {
	custID, ok := customerID(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "User identification missing")
		return
	}

	profile, err := h.useCase.GetProfile(c.Request.Context(), custID)
	if err != nil {
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve profile: "+err.Error())
		return
	}

	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}
