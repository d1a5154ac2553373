package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration and session endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// RegisterClient handles POST /api/v1/client/register.
func (h *AuthHandler) RegisterClient(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	h.register(c, toRegisterRequest(domain.RoleClient, req))
}

// RegisterCompany handles POST /api/v1/company/register.
func (h *AuthHandler) RegisterCompany(c *gin.Context) {
	var req dto.CompanyRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	in := toRegisterRequest(domain.RoleCompany, req.RegisterRequest)
	in.CompanyName = &req.CompanyName
	in.CompanyURL = &req.CompanyURL
	h.register(c, in)
}

func (h *AuthHandler) register(c *gin.Context, in ports.RegisterRequest) {
	user, err := h.authSvc.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxUserID, user.ID)
	c.Set(middleware.CtxResourceID, user.ID.String())
	response.Created(c, dto.NewUserResponse(user))
}

func toRegisterRequest(role domain.Role, req dto.RegisterRequest) ports.RegisterRequest {
	return ports.RegisterRequest{
		Role:        role,
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
}

// Login returns the handler for POST /api/v1/{client,company}/login.
// Credentials of the other role are rejected.
func (h *AuthHandler) Login(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apperror.Validation(err.Error()))
			return
		}
		dto.SanitizeStruct(&req)

		result, err := h.authSvc.Login(c.Request.Context(), ports.LoginRequest{
			Role:     role,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(middleware.CtxUserID, result.User.ID)
		c.Set(middleware.CtxResourceID, result.User.ID.String())
		response.OK(c, dto.LoginResponse{
			Token:  result.Token,
			Expiry: result.ExpiresAt.Unix(),
			Role:   result.User.Role,
		})
	}
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims); err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, claims.TokenID)
	response.OK(c, gin.H{"logged_out": true})
}
