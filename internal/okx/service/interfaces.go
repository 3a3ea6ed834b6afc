package service

import (
	"context"

	"depositrelay/internal/okx/entity"
)

// Exchange — подписанный вызов REST API OKX
type Exchange interface {
	Call(ctx context.Context, method, requestPath, body string) (*entity.Response, error)
}
