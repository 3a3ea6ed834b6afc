package entity

import "encoding/json"

// Response — общий конверт ответа OKX v5
type Response struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// DepositAddress — элемент ответа /asset/deposit-address
type DepositAddress struct {
	Addr     string `json:"addr"`
	Ccy      string `json:"ccy"`
	Chain    string `json:"chain"` // например USDT-TRC20
	Memo     string `json:"memo"`
	Tag      string `json:"tag"`   // XRP, XLM и т.п.
	PmtID    string `json:"pmtId"` // EOS-подобные сети
	To       string `json:"to"`
	Selected bool   `json:"selected"`
}

// DepositRecord — элемент ответа /asset/deposit-history
type DepositRecord struct {
	DepID   string `json:"depId"`
	Ccy     string `json:"ccy"`
	Chain   string `json:"chain"`
	Amt     string `json:"amt"`
	From    string `json:"from"`
	To      string `json:"to"`
	DepAddr string `json:"depAddr"`
	TxID    string `json:"txId"`
	Ts      string `json:"ts"`
	State   string `json:"state"`
}

// Address возвращает адрес зачисления, в каком бы поле его ни прислали
func (r DepositRecord) Address() string {
	if r.DepAddr != "" {
		return r.DepAddr
	}
	return r.To
}

// ResolvedAddress — итог выбора адреса под конкретную сеть
type ResolvedAddress struct {
	Address string
	Memo    *string
	Chain   string // сеть в том виде, в каком её вернула биржа
}
