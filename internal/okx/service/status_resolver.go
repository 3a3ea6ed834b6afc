package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"depositrelay/internal/apperr"
	"depositrelay/internal/okx/entity"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultHistoryLimit = 50

// StatusQuery — что ищем в истории пополнений
type StatusQuery struct {
	Address  string
	Currency string
	Chain    string // пусто — подходит любая сеть
	Amount   decimal.Decimal
}

type StatusResult struct {
	Status entity.Status
	Amount *decimal.Decimal // сумма из найденной записи
	DepID  string
	TxID   string
}

// StatusResolver ищет пополнение в последних записях истории OKX
type StatusResolver struct {
	exchange Exchange
	limit    int
	logger   *zap.Logger
}

func NewStatusResolver(exchange Exchange, limit int, logger *zap.Logger) *StatusResolver {
	if limit <= 0 || limit > 100 {
		limit = DefaultHistoryLimit
	}
	return &StatusResolver{exchange: exchange, limit: limit, logger: logger.Named("status_resolver")}
}

func (r *StatusResolver) historyPath(currency string) string {
	q := url.Values{}
	q.Set("ccy", currency)
	q.Set("limit", strconv.Itoa(r.limit))
	return OKXAPIVersion + "/asset/deposit-history?" + q.Encode()
}

// Resolve никогда не возвращает пустой статус: при сбое вызова это StatusError
// вместе с причиной, которую вызывающий логирует. Нет совпадения — StatusPending.
func (r *StatusResolver) Resolve(ctx context.Context, q StatusQuery) (StatusResult, error) {
	const op = "StatusResolver.Resolve"

	resp, err := r.exchange.Call(ctx, http.MethodGet, r.historyPath(q.Currency), "")
	if err != nil {
		return StatusResult{Status: entity.StatusError}, fmt.Errorf("%s: %w", op, err)
	}

	var history []entity.DepositRecord
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &history); err != nil {
			return StatusResult{Status: entity.StatusError},
				&apperr.Error{Kind: apperr.KindExchange, Op: op, Msg: "unexpected deposit-history payload", Err: err}
		}
	}

	// История отсортирована от новых к старым, берём первое совпадение
	for _, rec := range history {
		if !r.matches(rec, q) {
			continue
		}
		amt, _ := decimal.NewFromString(rec.Amt)
		return StatusResult{
			Status: entity.StatusFromState(rec.State),
			Amount: &amt,
			DepID:  rec.DepID,
			TxID:   rec.TxID,
		}, nil
	}

	return StatusResult{Status: entity.StatusPending}, nil
}

func (r *StatusResolver) matches(rec entity.DepositRecord, q StatusQuery) bool {
	if rec.Address() != q.Address {
		return false
	}
	if q.Chain != "" && !MatchChain(rec.Chain, q.Currency, q.Chain) {
		return false
	}
	amt, err := decimal.NewFromString(rec.Amt)
	if err != nil {
		r.logger.Warn("skipping history record with bad amount",
			zap.String("dep_id", rec.DepID), zap.String("amt", rec.Amt))
		return false
	}
	// сравнение точное, без допуска
	return amt.Equal(q.Amount)
}
