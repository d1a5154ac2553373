package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditTarget struct {
	action       domain.AuditAction
	resourceType string
}

// auditedRoutes maps "METHOD route-pattern" to the recorded action.
var auditedRoutes = map[string]auditTarget{
	"POST /api/v1/client/register":  {domain.AuditActionRegister, "user"},
	"POST /api/v1/company/register": {domain.AuditActionRegister, "user"},
	"POST /api/v1/client/login":     {domain.AuditActionLogin, "session"},
	"POST /api/v1/company/login":    {domain.AuditActionLogin, "session"},
	"POST /api/v1/auth/logout":      {domain.AuditActionLogout, "session"},
	"POST /api/v1/wallets":          {domain.AuditActionCreateWallet, "wallet"},
	"POST /api/v1/wallets/deposit":  {domain.AuditActionDeposit, "wallet"},
	"POST /api/v1/wallets/charge":   {domain.AuditActionCharge, "wallet"},
}

// AuditLog records successful write operations after the handler ran.
// Handlers name the affected resource through CtxResourceID.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		target, ok := auditedRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		var userID *uuid.UUID
		if uid, exists := c.Get(CtxUserID); exists {
			if id, ok := uid.(uuid.UUID); ok {
				userID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       target.action,
			ResourceType: target.resourceType,
			ResourceID:   c.GetString(CtxResourceID),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}
