package router

import (
	"github.com/labstack/echo/v4"

	"github.com/restovia/table-reservation/internal/handler"
	"github.com/restovia/table-reservation/internal/middleware"
	"github.com/restovia/table-reservation/internal/model"
)

// RegisterStaff registers the reservation management endpoints under
// /v1/staff.  All routes require a valid JWT with an OWNER or HOST role;
// the restaurant scope comes from the token's claims.
func RegisterStaff(e *echo.Echo, h *handler.StaffReservationHandler, jwtSecret string) {
	g := e.Group(
		"/v1/staff",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner, model.RoleHost),
	)

	g.GET("/reservations", h.List)
	g.PATCH("/reservations/:id/status", h.UpdateStatus)
}
