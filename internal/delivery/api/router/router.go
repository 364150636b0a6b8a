// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"medchain/internal/delivery/api/middleware"
	"medchain/internal/delivery/api/router/handler"
	"medchain/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	SessionHandler    *handler.SessionHandler
	MaterialHandler   *handler.MaterialHandler
	EquipmentHandler  *handler.EquipmentHandler
	OrderHandler      *handler.OrderHandler
	PredictionHandler *handler.PredictionHandler
	ReconcileHandler  *handler.ReconcileHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	session    *handler.SessionHandler
	material   *handler.MaterialHandler
	equipment  *handler.EquipmentHandler
	order      *handler.OrderHandler
	prediction *handler.PredictionHandler
	reconcile  *handler.ReconcileHandler
	guard      *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		session:    params.SessionHandler,
		material:   params.MaterialHandler,
		equipment:  params.EquipmentHandler,
		order:      params.OrderHandler,
		prediction: params.PredictionHandler,
		reconcile:  params.ReconcileHandler,
		guard:      params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(r.guard.Attach)

	sessionGroup := apiV1.Group("/session")
	{
		sessionGroup.GET("", r.session.Current)
		sessionGroup.POST("/wallet", r.session.SwitchWallet)
		sessionGroup.POST("/register", r.session.Register, r.guard.RequireWallet)
		sessionGroup.POST("/login", r.session.Login, r.guard.RequireWallet)
		sessionGroup.POST("/logout", r.session.Logout)
	}

	apiV1.GET("/raw-materials", r.material.Available)

	supplierGroup := apiV1.Group("/supplier")
	supplierGroup.Use(r.guard.RequireWallet, r.guard.RequireRole(entity.RoleSupplier))
	{
		supplierGroup.GET("/raw-materials", r.material.Own)
		supplierGroup.POST("/raw-materials", r.material.Create)
		supplierGroup.GET("/requests", r.material.Inbox)
		supplierGroup.POST("/requests/:id/approve", r.material.Approve)
		supplierGroup.POST("/requests/:id/cancel", r.material.Cancel)
	}

	manufacturerGroup := apiV1.Group("/manufacturer")
	manufacturerGroup.Use(r.guard.RequireWallet, r.guard.RequireRole(entity.RoleManufacturer))
	{
		manufacturerGroup.POST("/requests", r.material.Request)
		manufacturerGroup.GET("/approved-requests", r.material.Approved)
		manufacturerGroup.POST("/equipment", r.equipment.Create)
	}

	stakeholderGroup := apiV1.Group("/stakeholder")
	stakeholderGroup.Use(r.guard.RequireWallet, r.guard.RequireRole(entity.RoleStakeholder))
	{
		stakeholderGroup.GET("/equipment", r.equipment.List)
		stakeholderGroup.POST("/equipment/:id/verify", r.equipment.Verify)
	}

	hospitalGroup := apiV1.Group("/hospital")
	hospitalGroup.Use(r.guard.RequireWallet, r.guard.RequireRole(entity.RoleHospital))
	{
		hospitalGroup.GET("/equipment", r.equipment.Orderable)
		hospitalGroup.POST("/orders", r.order.Place)
		hospitalGroup.GET("/orders/:orderId/qr", r.order.QR)
	}

	transporterGroup := apiV1.Group("/transporter")
	transporterGroup.Use(r.guard.RequireWallet, r.guard.RequireRole(entity.RoleTransporter))
	{
		transporterGroup.GET("/orders", r.order.List)
		transporterGroup.POST("/orders/:id/ship", r.order.Ship)
		transporterGroup.POST("/orders/ship-qr", r.order.ShipByQR)
	}

	predictionsGroup := apiV1.Group("/predictions")
	predictionsGroup.Use(r.guard.RequireWallet)
	{
		predictionsGroup.POST("/equipment", r.prediction.Equipment, r.guard.RequireRole(entity.RoleManufacturer))
		predictionsGroup.POST("/raw-materials", r.prediction.RawMaterials, r.guard.RequireRole(entity.RoleSupplier))
	}

	// Any role may reconcile its own entries; a superadmin sees all of them.
	reconcileGroup := apiV1.Group("/reconciliation")
	reconcileGroup.Use(r.guard.RequireWallet)
	{
		reconcileGroup.GET("/orphans", r.reconcile.List)
		reconcileGroup.POST("/orphans/:id/retry", r.reconcile.Retry)
	}
}
