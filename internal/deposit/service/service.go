package service

import (
	"context"
	"fmt"
	"time"

	"depositrelay/internal/apperr"
	"depositrelay/internal/deposit"
	"depositrelay/internal/metrics"
	"depositrelay/internal/okx/entity"
	okxservice "depositrelay/internal/okx/service"

	"go.uber.org/zap"
)

const unresolvedCurrency = "unresolved"

type AddressResolver interface {
	Resolve(ctx context.Context, currency, chain string) (*entity.ResolvedAddress, error)
}

type StatusResolver interface {
	Resolve(ctx context.Context, q okxservice.StatusQuery) (okxservice.StatusResult, error)
}

// Service связывает выдачу адреса биржей с записью в журнал
type Service struct {
	addresses       AddressResolver
	statuses        StatusResolver
	ledger          deposit.Ledger
	exchangeTimeout time.Duration
	logger          *zap.Logger
}

func NewService(addresses AddressResolver, statuses StatusResolver, ledger deposit.Ledger, exchangeTimeout time.Duration, logger *zap.Logger) *Service {
	return &Service{
		addresses:       addresses,
		statuses:        statuses,
		ledger:          ledger,
		exchangeTimeout: exchangeTimeout,
		logger:          logger.Named("deposit_service"),
	}
}

func (s *Service) exchangeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.exchangeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.exchangeTimeout)
}

// RequestAddress получает адрес у биржи и пишет строку в журнал.
// Если биржа ответила, а запись не удалась, возвращается и заполненный
// Request, и ошибка KindPersistence: адрес можно показать пользователю.
func (s *Service) RequestAddress(ctx context.Context, userID, currency, chain string) (*deposit.Request, error) {
	const op = "Service.RequestAddress"

	if userID == "" || currency == "" || chain == "" {
		return nil, apperr.Invalid(op, "userId, currency and chain are required")
	}

	exCtx, cancel := s.exchangeCtx(ctx)
	resolved, err := s.addresses.Resolve(exCtx, currency, chain)
	cancel()
	if err != nil {
		// тикер не подтверждён биржей, в метку его не пишем
		metrics.DepositAddressesIssued.WithLabelValues(unresolvedCurrency, string(apperr.KindOf(err))).Inc()
		s.logger.Warn("deposit address not resolved",
			zap.String("user_id", userID), zap.String("currency", currency),
			zap.String("chain", chain), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req := &deposit.Request{
		UserID:   userID,
		Currency: currency,
		Chain:    chain,
		Address:  resolved.Address,
		Memo:     resolved.Memo,
		Status:   entity.StatusPending,
	}

	if _, err := s.ledger.Record(ctx, req); err != nil {
		metrics.DepositAddressesIssued.WithLabelValues(currency, string(apperr.KindPersistence)).Inc()
		s.logger.Error("deposit request not recorded",
			zap.String("user_id", userID), zap.String("currency", currency),
			zap.String("chain", chain), zap.Error(err))
		if apperr.KindOf(err) != apperr.KindPersistence {
			err = apperr.E(apperr.KindPersistence, op, err)
		}
		return req, fmt.Errorf("%s: %w", op, err)
	}

	metrics.DepositAddressesIssued.WithLabelValues(currency, "ok").Inc()
	s.logger.Info("deposit address issued",
		zap.String("deposit_id", req.ID), zap.String("user_id", userID),
		zap.String("currency", currency), zap.String("chain", chain))
	return req, nil
}

// PollStatus всегда отдаёт статус; сбой вызова биржи логируется и даёт StatusError
func (s *Service) PollStatus(ctx context.Context, q okxservice.StatusQuery) okxservice.StatusResult {
	exCtx, cancel := s.exchangeCtx(ctx)
	defer cancel()

	res, err := s.statuses.Resolve(exCtx, q)
	if err != nil {
		s.logger.Warn("deposit status lookup failed",
			zap.String("address", q.Address), zap.String("currency", q.Currency),
			zap.String("chain", q.Chain), zap.Error(err))
		res = okxservice.StatusResult{Status: entity.StatusError}
	}

	metrics.DepositStatusPolls.WithLabelValues(string(res.Status)).Inc()
	return res
}

func (s *Service) Get(ctx context.Context, id string) (*deposit.Request, error) {
	return s.ledger.FindByID(ctx, id)
}
