package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// LiveQuery keeps a query result current for one subscriber.
type LiveQuery struct {
	hub  *Hub
	fn   Function
	args json.RawMessage
}

// Live prepares a subscription to the named query. Arguments are checked once up front
// so a bad request fails before any stream is opened.
func (r *Registry) Live(ctx context.Context, hub *Hub, name string, args json.RawMessage) (*LiveQuery, error) {
	fn, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if fn.Kind != KindQuery {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongFunctionKind, name, fn.Kind)
	}
	if _, err := fn.Handler(ctx, args); err != nil {
		return nil, err
	}
	return &LiveQuery{hub: hub, fn: fn, args: args}, nil
}

func (q *LiveQuery) Name() string {
	return q.fn.Name
}

// Run emits the current result, then a new result each time a watched table changes
// and the encoded value differs from the last one sent. It returns when ctx is done,
// when emit fails or when the query fails.
func (q *LiveQuery) Run(ctx context.Context, emit func(json.RawMessage) error) error {
	sub := q.hub.Subscribe(q.fn.Tables...)
	defer sub.Close()

	var last []byte
	evaluate := func() error {
		value, err := q.fn.Handler(ctx, q.args)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if last != nil && bytes.Equal(last, encoded) {
			return nil
		}
		last = encoded
		return emit(encoded)
	}

	if err := evaluate(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := evaluate(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}
