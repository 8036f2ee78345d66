// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"math"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/api/utils"
	"github.com/cactusfi/cactus/eventlog"
	"github.com/cactusfi/cactus/staking"
)

type Events struct {
	db    *eventlog.EventLog
	limit uint64
}

func New(db *eventlog.EventLog, limit uint64) *Events {
	return &Events{db, limit}
}

func (e *Events) parseFilter(req *http.Request) (*eventlog.Filter, error) {
	query := req.URL.Query()
	filter := &eventlog.Filter{Order: eventlog.ASC}

	if s := query.Get("user"); s != "" {
		user, err := utils.ParseAddress("user", s)
		if err != nil {
			return nil, err
		}
		filter.User = &user
	}
	if s := query.Get("kind"); s != "" {
		for _, name := range strings.Split(s, ",") {
			kind, err := staking.ParseEventKind(strings.TrimSpace(name))
			if err != nil {
				return nil, utils.BadRequest(errors.WithMessage(err, "kind"))
			}
			filter.Kinds = append(filter.Kinds, kind)
		}
	}

	from, err := utils.ParseUint("from", query.Get("from"), 0)
	if err != nil {
		return nil, err
	}
	to, err := utils.ParseUint("to", query.Get("to"), math.MaxInt64)
	if err != nil {
		return nil, err
	}
	// sqlite integers are signed
	to = min(to, math.MaxInt64)
	if from > to {
		return nil, utils.BadRequest(errors.New("from: must not be after to"))
	}
	filter.Range = &eventlog.Range{From: from, To: to}

	switch order := eventlog.Order(strings.ToLower(query.Get("order"))); order {
	case "", eventlog.ASC:
	case eventlog.DESC:
		filter.Order = eventlog.DESC
	default:
		return nil, utils.BadRequest(errors.Errorf("order: unknown value %q", order))
	}

	offset, err := utils.ParseUint("offset", query.Get("offset"), 0)
	if err != nil {
		return nil, err
	}
	limit, err := utils.ParseUint("limit", query.Get("limit"), e.limit)
	if err != nil {
		return nil, err
	}
	if limit > e.limit {
		return nil, utils.Forbidden(errors.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	filter.Options = &eventlog.Options{Offset: min(offset, math.MaxInt64), Limit: limit}
	return filter, nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	filter, err := e.parseFilter(req)
	if err != nil {
		return err
	}
	records, err := e.db.Filter(req.Context(), filter)
	if err != nil {
		return err
	}
	if records == nil {
		records = []*eventlog.Record{}
	}
	return utils.WriteJSON(w, records)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
