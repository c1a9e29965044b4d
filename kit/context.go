package kit

import "context"

type contextKey string

const (
	// CommandIDKey carries the batch command ID through an invocation.
	CommandIDKey contextKey = "kit_command_id"
	// TransportKey records which transport carried the request ("mcp", "test").
	TransportKey contextKey = "kit_transport"
)

func WithCommandID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CommandIDKey, id)
}
func GetCommandID(ctx context.Context) string {
	v, _ := ctx.Value(CommandIDKey).(string)
	return v
}

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "mcp"
}
