package session

import "timetrack/pkg/domain"

type Route string

const (
	RouteLoading      Route = "/loading"
	RouteLogin        Route = "/login"
	RouteDashboard    Route = "/dashboard"
	RouteTimeTracking Route = "/time-tracking"
	RouteVacation     Route = "/vacation"
	RouteManager      Route = "/manager"
)

// routeRoles lists routes that need a capability beyond being signed in.
var routeRoles = map[Route][]domain.Role{
	RouteManager: domain.ManagerRoles,
}

func knownRoute(r Route) bool {
	switch r {
	case RouteLogin, RouteDashboard, RouteTimeTracking, RouteVacation, RouteManager:
		return true
	}
	return false
}

// CanAccess reports whether the current user may open r.
func (s *Session) CanAccess(r Route) bool {
	u, ok := s.User()
	if !ok || s.Token() == "" {
		return r == RouteLogin
	}
	if r == RouteLogin {
		return false
	}
	allowed, gated := routeRoles[r]
	return !gated || u.Role.In(allowed...)
}

// Resolve returns the route to show when r is requested. Nothing is decided
// while a stored token is still being checked.
func (s *Session) Resolve(r Route) Route {
	if s.IsLoading() {
		return RouteLoading
	}
	if !s.IsAuthenticated() {
		return RouteLogin
	}
	if !knownRoute(r) || r == RouteLogin {
		return RouteDashboard
	}
	if !s.CanAccess(r) {
		return RouteDashboard
	}
	return r
}
