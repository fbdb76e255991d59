package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// requestFields - поля запроса, которые попадают в каждую строку лога
type requestFields struct {
	requestID string
	userID    string
}

func fieldsFrom(ctx context.Context) requestFields {
	f, _ := ctx.Value(contextKey{}).(requestFields)
	return f
}

// WithRequestID кладет request ID в context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	f := fieldsFrom(ctx)
	f.requestID = requestID
	return context.WithValue(ctx, contextKey{}, f)
}

// WithUserID кладет ID аутентифицированного пользователя в context
func WithUserID(ctx context.Context, userID string) context.Context {
	f := fieldsFrom(ctx)
	f.userID = userID
	return context.WithValue(ctx, contextKey{}, f)
}

func GetRequestID(ctx context.Context) string {
	return fieldsFrom(ctx).requestID
}

func GetUserID(ctx context.Context) string {
	return fieldsFrom(ctx).userID
}

// FromContext возвращает логгер с request_id и user_id, если они есть
func FromContext(ctx context.Context) *slog.Logger {
	l := GetLogger()
	f := fieldsFrom(ctx)
	if f.requestID != "" {
		l = l.With(slog.String("request_id", f.requestID))
	}
	if f.userID != "" {
		l = l.With(slog.String("user_id", f.userID))
	}
	return l
}

func CtxDebug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func CtxInfo(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func CtxWarn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

// CtxWithError логирует ошибку уровня error вместе с err
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	FromContext(ctx).Error(msg, append([]any{"error", err.Error()}, args...)...)
}
