package obs

import "context"

type routeKey struct{}

// routeSlot is shared by every middleware below RouteMiddleware. chi only
// knows the full template once the innermost router has matched, so the slot
// is filled by the first reader after next.ServeHTTP returns.
type routeSlot struct{ template string }

// WithRoute tags ctx with a route template such as /api/v1/carts/{id}/checkout.
// Metrics and logs label requests by template so member and cart ids never
// become label values.
func WithRoute(ctx context.Context, template string) context.Context {
	return context.WithValue(ctx, routeKey{}, &routeSlot{template: template})
}

// setRoute records template on the slot WithRoute placed on ctx.
func setRoute(ctx context.Context, template string) bool {
	slot, ok := ctx.Value(routeKey{}).(*routeSlot)
	if !ok {
		return false
	}
	slot.template = template
	return true
}

// RouteFromContext returns the recorded template, or "" before routing.
func RouteFromContext(ctx context.Context) string {
	if slot, ok := ctx.Value(routeKey{}).(*routeSlot); ok {
		return slot.template
	}
	return ""
}
