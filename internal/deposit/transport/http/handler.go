package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"depositrelay/internal/api/dto"
	"depositrelay/internal/apperr"
	"depositrelay/internal/deposit"
	"depositrelay/internal/deposit/service"
	okxservice "depositrelay/internal/okx/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler обработчик HTTP запросов по депозитам
type Handler struct {
	Service *service.Service
	logger  *zap.Logger
}

func NewDepositHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{Service: svc, logger: logger.Named("deposit_handler")}
}

// публичные тексты ошибок; подробности остаются в логах
var publicMessages = map[apperr.Kind]string{
	apperr.KindInvalidInput:       "Missing parameters",
	apperr.KindChainNotFound:      "Chain not available for currency",
	apperr.KindNoAddress:          "No deposit address returned from OKX",
	apperr.KindExchange:           "OKX API request failed",
	apperr.KindTransport:          "OKX API request failed",
	apperr.KindMissingCredentials: "Missing OKX API credentials",
	apperr.KindPersistence:        "Database error",
}

func publicMessage(kind apperr.Kind) string {
	if msg, ok := publicMessages[kind]; ok {
		return msg
	}
	return "Internal error"
}

// RequestAddress — POST /api/deposit/address
func (h *Handler) RequestAddress(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON format", Detail: err.Error()})
		return
	}
	req.Normalize()
	if err := dto.Validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Missing parameters", Detail: dto.ValidationMessage(err)})
		return
	}

	dep, err := h.Service.RequestAddress(r.Context(), req.UserID, req.Currency, req.Chain)
	if err != nil {
		kind := apperr.KindOf(err)
		resp := dto.ErrorResponse{Error: publicMessage(kind)}
		if kind == apperr.KindPersistence && dep != nil {
			// адрес уже выдан биржей, отдаём его вместе с ошибкой записи
			resp.Detail = "deposit address resolved but the request could not be recorded"
			resp.Address = dep.Address
			resp.Memo = dep.Memo
			resp.Currency = dep.Currency
			resp.Chain = dep.Chain
		}
		h.writeJSON(w, apperr.HTTPStatus(kind), resp)
		return
	}

	h.writeJSON(w, http.StatusOK, dto.DepositAddressResponse{
		Success:   true,
		DepositID: dep.ID,
		Address:   dep.Address,
		Memo:      dep.Memo,
		Currency:  dep.Currency,
		Chain:     dep.Chain,
	})
}

// PollStatus — POST /api/deposit/status
func (h *Handler) PollStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid JSON format", Detail: err.Error()})
		return
	}
	req.Normalize()
	if err := dto.Validate.Struct(req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Missing parameters", Detail: dto.ValidationMessage(err)})
		return
	}
	if !req.Amount.IsPositive() {
		h.writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Missing parameters", Detail: "amount must be positive"})
		return
	}

	res := h.Service.PollStatus(r.Context(), okxservice.StatusQuery{
		Address:  req.Address,
		Currency: req.Currency,
		Chain:    req.Chain,
		Amount:   *req.Amount,
	})

	h.writeJSON(w, http.StatusOK, dto.DepositStatusResponse{Status: string(res.Status), Amount: res.Amount})
}

// GetDeposit — GET /api/deposit/{id}
func (h *Handler) GetDeposit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dep, err := h.Service.Get(r.Context(), id)
	if errors.Is(err, deposit.ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Deposit not found"})
		return
	}
	if err != nil {
		h.logger.Error("deposit lookup failed", zap.String("deposit_id", id), zap.Error(err))
		h.writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: publicMessage(apperr.KindOf(err))})
		return
	}

	h.writeJSON(w, http.StatusOK, dep)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Debug("failed to write response", zap.Int("status", status), zap.Error(err))
	}
}
