package deposit

import (
	"time"

	"depositrelay/internal/okx/entity"
)

// Request — запись журнала: один запрос адреса пополнения.
// Address и Memo задаются только при создании.
type Request struct {
	ID        string        `db:"id" json:"id"`
	UserID    string        `db:"user_id" json:"userId"`
	Currency  string        `db:"currency" json:"currency"`
	Chain     string        `db:"chain" json:"chain"`
	Address   string        `db:"address" json:"address"`
	Memo      *string       `db:"memo" json:"memo"`
	Status    entity.Status `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}
