package deposit

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("deposit request not found")

// Ledger — журнал запросов адресов, только добавление
type Ledger interface {
	Record(ctx context.Context, req *Request) (string, error)
	FindByID(ctx context.Context, id string) (*Request, error)
}
