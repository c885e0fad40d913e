// Package pagination implements the cursor loop shared by the list
// endpoints: POST a page request, collect the items, follow the
// continuation cursor until the service stops returning one. The iterator
// is forward-only and non-restartable; item order is whatever the service
// returns, with no re-ordering or de-duplication.
package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/schubergphilis/awssso-go/logging"
	"github.com/schubergphilis/awssso-go/transport"
)

// ErrNoMorePages is returned by NextPage after the final page has been
// consumed.
var ErrNoMorePages = errors.New("no more pages")

// Config describes one paginated list call.
type Config struct {
	// URL is the endpoint the page requests are posted to.
	URL string

	// Build returns the request envelope for one page. cursor is empty for
	// the first page.
	Build func(cursor string) (any, error)

	// ItemsField names the response field holding the page's items. An
	// absent field means an empty page.
	ItemsField string

	// CursorField names the response field holding the continuation
	// cursor. An absent or empty cursor ends the iteration.
	CursorField string

	// Service and Operation label the call in the structured log.
	Service   string
	Operation string
}

// Iterator fetches one page per NextPage call.
type Iterator struct {
	session transport.Session
	logger  logging.Logger
	cfg     Config
	cursor  string
	done    bool
}

// NewIterator creates an Iterator over the list endpoint described by cfg.
// A nil logger discards call records.
func NewIterator(session transport.Session, logger logging.Logger, cfg Config) *Iterator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Iterator{session: session, logger: logger, cfg: cfg}
}

// HasMorePages reports whether NextPage can produce another page. It is
// true before the first call and stays true until a response without a
// cursor, or an error, is seen.
func (it *Iterator) HasMorePages() bool {
	return !it.done
}

// NextPage issues one POST and returns that page's items. A non-2xx
// response ends the iteration with a StatusError carrying the response
// body. A response without the cursor field is the final page.
func (it *Iterator) NextPage(ctx context.Context) ([]json.RawMessage, error) {
	if it.done {
		return nil, ErrNoMorePages
	}

	env, err := it.cfg.Build(it.cursor)
	if err != nil {
		it.done = true
		return nil, err
	}

	start := time.Now()
	resp, err := it.session.Post(ctx, it.cfg.URL, env)
	it.logger.Log(it.cfg.Service, it.cfg.Operation, time.Since(start), err)
	if err != nil {
		it.done = true
		return nil, err
	}
	if !resp.OK() {
		it.done = true
		return nil, &transport.StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var page map[string]json.RawMessage
	if err := resp.JSON(&page); err != nil {
		it.done = true
		return nil, fmt.Errorf("%s: %w", it.cfg.Operation, err)
	}

	var items []json.RawMessage
	if raw, ok := page[it.cfg.ItemsField]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			it.done = true
			return nil, fmt.Errorf("%s: decode %s: %w", it.cfg.Operation, it.cfg.ItemsField, err)
		}
	}

	it.cursor = ""
	if raw, ok := page[it.cfg.CursorField]; ok {
		if err := json.Unmarshal(raw, &it.cursor); err != nil {
			it.done = true
			return nil, fmt.Errorf("%s: decode %s: %w", it.cfg.Operation, it.cfg.CursorField, err)
		}
	}
	if it.cursor == "" {
		it.done = true
	}

	return items, nil
}

// All drains the remaining pages into one slice, preserving page order.
func (it *Iterator) All(ctx context.Context) ([]json.RawMessage, error) {
	var items []json.RawMessage
	for it.HasMorePages() {
		page, err := it.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
	}
	return items, nil
}
