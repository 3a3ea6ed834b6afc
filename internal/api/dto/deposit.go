package dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type DepositAddressRequest struct {
	UserID   string `json:"userId" validate:"required,max=128"`
	Currency string `json:"currency" validate:"required,max=32"`
	Chain    string `json:"chain" validate:"required,max=64"`
}

// Normalize убирает пробелы; тикер приводится к верхнему регистру, как у OKX
func (r *DepositAddressRequest) Normalize() {
	r.UserID = strings.TrimSpace(r.UserID)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.Chain = strings.TrimSpace(r.Chain)
}

// DepositStatusRequest: chain необязателен, amount принимается и числом, и строкой
type DepositStatusRequest struct {
	Address  string           `json:"address" validate:"required"`
	Currency string           `json:"currency" validate:"required,max=32"`
	Chain    string           `json:"chain" validate:"omitempty,max=64"`
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
}

func (r *DepositStatusRequest) Normalize() {
	r.Address = strings.TrimSpace(r.Address)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.Chain = strings.TrimSpace(r.Chain)
}

type DepositAddressResponse struct {
	Success   bool    `json:"success"`
	DepositID string  `json:"depositId"`
	Address   string  `json:"address"`
	Memo      *string `json:"memo"`
	Currency  string  `json:"currency"`
	Chain     string  `json:"chain"`
}

type DepositStatusResponse struct {
	Status string           `json:"status"`
	Amount *decimal.Decimal `json:"amount,omitempty"`
}

// ErrorResponse — тело ответа при ошибке. Поля адреса заполняются только
// когда адрес получен, но запись в журнал не удалась.
type ErrorResponse struct {
	Error    string  `json:"error"`
	Detail   string  `json:"detail,omitempty"`
	Address  string  `json:"address,omitempty"`
	Memo     *string `json:"memo,omitempty"`
	Currency string  `json:"currency,omitempty"`
	Chain    string  `json:"chain,omitempty"`
}

var Validate = newValidator()

// в сообщениях об ошибках используются имена полей из json-тегов
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationMessage собирает читаемое сообщение из ошибок validator
func ValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if fe.Tag() == "required" {
			msgs = append(msgs, field+" is required")
		} else {
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
