package handlers

import (
	"context"

	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// NewCheckAccess builds the checkAccess handler: a thin pass-through to the
// access API with params [action, entityType].
func NewCheckAccess(api services.AccessAPI) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		action, err := stringArg(params, 0, "action")
		if err != nil {
			return nil, err
		}
		entityType, err := stringArg(params, 1, "entityType")
		if err != nil {
			return nil, err
		}
		return api.Can(ctx, action, entityType)
	}
}
