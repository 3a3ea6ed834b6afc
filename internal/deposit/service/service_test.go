package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"depositrelay/internal/apperr"
	"depositrelay/internal/deposit"
	"depositrelay/internal/metrics"
	"depositrelay/internal/okx/entity"
	okxservice "depositrelay/internal/okx/service"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAddresses struct {
	res *entity.ResolvedAddress
	err error
}

func (s stubAddresses) Resolve(context.Context, string, string) (*entity.ResolvedAddress, error) {
	return s.res, s.err
}

type stubStatuses struct {
	res okxservice.StatusResult
	err error
}

func (s stubStatuses) Resolve(context.Context, okxservice.StatusQuery) (okxservice.StatusResult, error) {
	return s.res, s.err
}

type memLedger struct {
	rows []deposit.Request
	err  error
}

func (m *memLedger) Record(_ context.Context, req *deposit.Request) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if req.ID == "" {
		req.ID = "dep-1"
	}
	m.rows = append(m.rows, *req)
	return req.ID, nil
}

func (m *memLedger) FindByID(_ context.Context, id string) (*deposit.Request, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			return &m.rows[i], nil
		}
	}
	return nil, deposit.ErrNotFound
}

func newSvc(a AddressResolver, st StatusResolver, l deposit.Ledger) *Service {
	return NewService(a, st, l, time.Second, zap.NewNop())
}

func TestRequestAddress(t *testing.T) {
	t.Run("records one row", func(t *testing.T) {
		ledger := &memLedger{}
		svc := newSvc(stubAddresses{res: &entity.ResolvedAddress{Address: "T1", Chain: "USDT-TRC20"}}, nil, ledger)

		req, err := svc.RequestAddress(context.Background(), "u1", "USDT", "TRC20")
		require.NoError(t, err)
		assert.Equal(t, "dep-1", req.ID)
		assert.Equal(t, "T1", req.Address)
		assert.Equal(t, "TRC20", req.Chain)
		assert.Nil(t, req.Memo)
		assert.Equal(t, entity.StatusPending, req.Status)
		assert.Len(t, ledger.rows, 1)
	})

	t.Run("missing input", func(t *testing.T) {
		ledger := &memLedger{}
		svc := newSvc(stubAddresses{}, nil, ledger)

		_, err := svc.RequestAddress(context.Background(), "u1", "", "TRC20")
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
		assert.Empty(t, ledger.rows)
	})

	t.Run("resolution failure writes nothing", func(t *testing.T) {
		ledger := &memLedger{}
		svc := newSvc(stubAddresses{err: apperr.E(apperr.KindChainNotFound, "x", errors.New("nope"))}, nil, ledger)

		req, err := svc.RequestAddress(context.Background(), "u1", "USDT", "TRC20")
		assert.Nil(t, req)
		assert.Equal(t, apperr.KindChainNotFound, apperr.KindOf(err))
		assert.Empty(t, ledger.rows)
	})

	t.Run("persistence failure keeps resolved address", func(t *testing.T) {
		ledger := &memLedger{err: errors.New("db down")}
		svc := newSvc(stubAddresses{res: &entity.ResolvedAddress{Address: "T1"}}, nil, ledger)

		req, err := svc.RequestAddress(context.Background(), "u1", "USDT", "TRC20")
		require.Error(t, err)
		assert.Equal(t, apperr.KindPersistence, apperr.KindOf(err))
		require.NotNil(t, req)
		assert.Equal(t, "T1", req.Address)
	})
}

func TestRequestAddressFailuresDoNotLabelCurrency(t *testing.T) {
	svc := newSvc(stubAddresses{err: apperr.E(apperr.KindChainNotFound, "x", errors.New("nope"))}, nil, &memLedger{})
	failures := metrics.DepositAddressesIssued.WithLabelValues(unresolvedCurrency, string(apperr.KindChainNotFound))
	before := testutil.ToFloat64(failures)

	_, err := svc.RequestAddress(context.Background(), "u1", "BOGUS1", "TRC20")
	require.Error(t, err)
	series := testutil.CollectAndCount(metrics.DepositAddressesIssued)

	for _, ccy := range []string{"BOGUS2", "BOGUS3", "BOGUS4"} {
		_, err := svc.RequestAddress(context.Background(), "u1", ccy, "TRC20")
		require.Error(t, err)
	}
	assert.Equal(t, series, testutil.CollectAndCount(metrics.DepositAddressesIssued))
	assert.Equal(t, before+4, testutil.ToFloat64(failures))
}

func TestPollStatus(t *testing.T) {
	q := okxservice.StatusQuery{Address: "a", Currency: "ETH", Chain: "ETH", Amount: decimal.NewFromInt(1)}

	t.Run("passes result through", func(t *testing.T) {
		amt := decimal.NewFromInt(1)
		svc := newSvc(nil, stubStatuses{res: okxservice.StatusResult{Status: entity.StatusSuccess, Amount: &amt}}, &memLedger{})
		res := svc.PollStatus(context.Background(), q)
		assert.Equal(t, entity.StatusSuccess, res.Status)
		assert.NotNil(t, res.Amount)
	})

	t.Run("failure becomes error status", func(t *testing.T) {
		svc := newSvc(nil, stubStatuses{err: errors.New("timeout")}, &memLedger{})
		res := svc.PollStatus(context.Background(), q)
		assert.Equal(t, entity.StatusError, res.Status)
	})
}

func TestGet(t *testing.T) {
	ledger := &memLedger{rows: []deposit.Request{{ID: "d1", Address: "T1"}}}
	svc := newSvc(nil, nil, ledger)

	req, err := svc.Get(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "T1", req.Address)

	_, err = svc.Get(context.Background(), "d2")
	assert.ErrorIs(t, err, deposit.ErrNotFound)
}
