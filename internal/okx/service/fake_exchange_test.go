package service

import (
	"context"
	"encoding/json"

	"depositrelay/internal/okx/entity"
)

type fakeCall struct {
	method string
	path   string
}

type fakeExchange struct {
	data  string
	err   error
	calls []fakeCall
}

func (f *fakeExchange) Call(_ context.Context, method, requestPath, _ string) (*entity.Response, error) {
	f.calls = append(f.calls, fakeCall{method: method, path: requestPath})
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Response{Code: "0", Data: json.RawMessage(f.data)}, nil
}
