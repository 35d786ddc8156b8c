package handlers

import (
	"context"

	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// NewNotify builds the notify handler. Params are [{type, message}]; type
// selects the success or error sink, anything else is rejected.
func NewNotify(notifier services.Notifier) messaging.Handler {
	return func(ctx context.Context, params []any) (any, error) {
		options, err := mapArg(params, 0, "options")
		if err != nil {
			return nil, err
		}
		message := optionalString(options, "message")

		switch optionalString(options, "type") {
		case "success":
			return nil, notifier.Success(message)
		case "error":
			return nil, notifier.Error(message)
		default:
			return nil, messaging.NewChannelError("unsupported notification type", nil)
		}
	}
}
