package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"depositrelay/internal/apperr"
	"depositrelay/internal/okx/entity"

	"go.uber.org/zap"
)

// AddressResolver выбирает адрес пополнения под запрошенную сеть.
// Кэша нет: каждый вызов заново спрашивает биржу.
type AddressResolver struct {
	exchange Exchange
	logger   *zap.Logger
}

func NewAddressResolver(exchange Exchange, logger *zap.Logger) *AddressResolver {
	return &AddressResolver{exchange: exchange, logger: logger.Named("address_resolver")}
}

func depositAddressPath(currency, chain string) string {
	q := url.Values{}
	q.Set("ccy", currency)
	if chain != "" {
		q.Set("chain", chain)
	}
	return OKXAPIVersion + "/asset/deposit-address?" + q.Encode()
}

func (r *AddressResolver) Resolve(ctx context.Context, currency, chain string) (*entity.ResolvedAddress, error) {
	const op = "AddressResolver.Resolve"

	resp, err := r.exchange.Call(ctx, http.MethodGet, depositAddressPath(currency, chain), "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var listing []entity.DepositAddress
	if len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, &listing); err != nil {
			return nil, &apperr.Error{Kind: apperr.KindExchange, Op: op, Msg: "unexpected deposit-address payload", Err: err}
		}
	}

	if len(listing) == 0 {
		return nil, apperr.E(apperr.KindNoAddress, op, fmt.Errorf("no deposit address returned for %s", currency))
	}

	chainListed := false
	for _, item := range listing {
		if !MatchChain(item.Chain, currency, chain) {
			continue
		}
		chainListed = true
		if item.Addr == "" {
			continue
		}
		r.logger.Debug("deposit address resolved",
			zap.String("currency", currency), zap.String("chain", item.Chain))
		return &entity.ResolvedAddress{
			Address: item.Addr,
			Memo:    memoOf(item),
			Chain:   item.Chain,
		}, nil
	}

	if chainListed {
		return nil, apperr.E(apperr.KindNoAddress, op, fmt.Errorf("chain %s listed for %s without an address", chain, currency))
	}
	return nil, apperr.E(apperr.KindChainNotFound, op,
		fmt.Errorf("chain %s not listed for %s (%d addresses)", chain, currency, len(listing)))
}

// memoOf: memo, tag и pmtId — разные имена одного и того же второго идентификатора
func memoOf(item entity.DepositAddress) *string {
	for _, v := range []string{item.Memo, item.Tag, item.PmtID} {
		if v != "" {
			memo := v
			return &memo
		}
	}
	return nil
}
