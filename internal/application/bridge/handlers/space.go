package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/fieldstack/widgethost-go/internal/domain/services"
	"github.com/fieldstack/widgethost-go/internal/infrastructure/messaging"
)

// spaceMethod adapts one SpaceAPI method to the positional-argument calling
// convention of the wire.
type spaceMethod func(ctx context.Context, args []any) (any, error)

// spaceMethodTable builds the closed set of callable space methods. The
// mapping is fixed at registration time; a method name outside this table is
// rejected before anything is invoked.
func spaceMethodTable(api services.SpaceAPI) map[string]spaceMethod {
	byID := func(fn func(context.Context, string) (map[string]any, error)) spaceMethod {
		return func(ctx context.Context, args []any) (any, error) {
			id, err := stringArg(args, 0, "id")
			if err != nil {
				return nil, err
			}
			return fn(ctx, id)
		}
	}
	byQuery := func(fn func(context.Context, map[string]any) (map[string]any, error)) spaceMethod {
		return func(ctx context.Context, args []any) (any, error) {
			query := map[string]any{}
			if len(args) > 0 && args[0] != nil {
				q, err := mapArg(args, 0, "query")
				if err != nil {
					return nil, err
				}
				query = q
			}
			return fn(ctx, query)
		}
	}
	byData := func(fn func(context.Context, map[string]any) (map[string]any, error)) spaceMethod {
		return func(ctx context.Context, args []any) (any, error) {
			data, err := mapArg(args, 0, "data")
			if err != nil {
				return nil, err
			}
			return fn(ctx, data)
		}
	}

	return map[string]spaceMethod{
		"getEntry":        byID(api.GetEntry),
		"getEntries":      byQuery(api.GetEntries),
		"getAsset":        byID(api.GetAsset),
		"getAssets":       byQuery(api.GetAssets),
		"getContentType":  byID(api.GetContentType),
		"getContentTypes": func(ctx context.Context, _ []any) (any, error) { return api.GetContentTypes(ctx) },
		"getEditorInterface": func(ctx context.Context, args []any) (any, error) {
			id, err := stringArg(args, 0, "contentTypeId")
			if err != nil {
				return nil, err
			}
			return api.GetEditorInterface(ctx, id)
		},
		"createEntry":    byData(api.CreateEntry),
		"updateEntry":    byData(api.UpdateEntry),
		"deleteEntry":    byData(api.DeleteEntry),
		"publishEntry":   byData(api.PublishEntry),
		"unpublishEntry": byData(api.UnpublishEntry),
		"createAsset":    byData(api.CreateAsset),
		"updateAsset":    byData(api.UpdateAsset),
		"deleteAsset":    byData(api.DeleteAsset),
	}
}

// NewCallSpaceMethod builds the callSpaceMethod handler. Params are
// [methodName, ...args]. Read-only sessions may only call get* methods.
// Upstream API failures keep their status code and response body on the wire
// error so the widget SDK can rebuild them.
func NewCallSpaceMethod(api services.SpaceAPI, readOnly bool) messaging.Handler {
	table := spaceMethodTable(api)

	return func(ctx context.Context, params []any) (any, error) {
		name, err := stringArg(params, 0, "methodName")
		if err != nil {
			return nil, err
		}
		if readOnly && !strings.HasPrefix(name, "get") {
			return nil, messaging.NewChannelError("cannot use "+name+" in read-only mode", nil)
		}
		method, ok := table[name]
		if !ok {
			return nil, messaging.NewRangeError("unknown method name %s", name)
		}

		result, err := method(ctx, params[1:])
		if err != nil {
			var apiErr *services.APIError
			if errors.As(err, &apiErr) {
				return nil, messaging.NewChannelError(apiErr.Error(), map[string]any{
					"code": apiErr.Code,
					"body": apiErr.Body,
				})
			}
			return nil, err
		}
		return result, nil
	}
}
