package handler

import (
	"github.com/dafibh/evenup/evenup-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, rateLimiter *middleware.RateLimiter, groupHandler *GroupHandler, expenseHandler *ExpenseHandler, settlementHandler *SettlementHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Stateless settlement
	settlements := api.Group("/settlements")
	settlements.POST("/calculate", settlementHandler.Calculate)

	// Group session routes
	groups := api.Group("/groups")
	groups.POST("", groupHandler.CreateGroup)
	groups.GET("/:id", groupHandler.GetGroup)
	groups.PATCH("/:id", groupHandler.RenameGroup)
	groups.DELETE("/:id", groupHandler.DeleteGroup)
	groups.PUT("/:id/members", groupHandler.ReplaceMembers)
	groups.POST("/:id/settle", settlementHandler.SettleGroup)

	// Expense routes
	groups.POST("/:id/expenses", expenseHandler.CreateExpense)
	groups.GET("/:id/expenses", expenseHandler.ListExpenses)
	groups.DELETE("/:id/expenses/:expenseId", expenseHandler.DeleteExpense)

	// Real-time group events
	e.GET("/ws", wsHandler.HandleWS)
}
