// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/api/utils"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/staking"
)

const defaultStakersLimit = 100

// Pool serves the staking pool under a REST prefix.
type Pool struct {
	pool *staking.Pool
}

func New(pool *staking.Pool) *Pool {
	return &Pool{pool}
}

func (p *Pool) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	totals, err := p.pool.Totals(req.Context())
	if err != nil {
		return err
	}
	solvency, err := p.pool.Solvency(req.Context())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &PoolView{
		Config:   convertConfig(p.pool.Config()),
		Totals:   convertTotals(totals),
		Solvency: solvency,
	})
}

func (p *Pool) handleGetStakers(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	offset, err := utils.ParseUint("offset", query.Get("offset"), 0)
	if err != nil {
		return err
	}
	limit, err := utils.ParseUint("limit", query.Get("limit"), defaultStakersLimit)
	if err != nil {
		return err
	}
	if limit == 0 || limit > defaultStakersLimit*10 {
		return utils.BadRequest(errors.Errorf("limit: must be between 1 and %d", defaultStakersLimit*10))
	}
	stakers, err := p.pool.Stakers(req.Context(), int(offset), int(limit))
	if err != nil {
		return err
	}
	if stakers == nil {
		stakers = []cactus.Address{}
	}
	return utils.WriteJSON(w, stakers)
}

func (p *Pool) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	details, err := p.pool.GetUserDetails(req.Context(), addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Staker{Address: addr, UserDetails: details})
}

func (p *Pool) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	rewards, err := p.pool.GetRewards(req.Context(), addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Rewards{Address: addr, Rewards: rewards})
}

func (p *Pool) handleStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := utils.ParseTokens("amount", body.Amount)
	if err != nil {
		return err
	}
	receipt, err := p.pool.Stake(req.Context(), addr, value)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pool) handleHarvest(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	receipt, err := p.pool.Harvest(req.Context(), addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pool) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	receipt, err := p.pool.Unstake(req.Context(), addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (p *Pool) handleFund(w http.ResponseWriter, req *http.Request) error {
	var body FundRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := utils.ParseTokens("amount", body.Amount)
	if err != nil {
		return err
	}
	if err := p.pool.Fund(req.Context(), body.From, value); err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"from": body.From, "amount": value})
}

// Mount registers the pool routes. Stakers live under pathPrefix + "/stakers".
func (p *Pool) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/fund").
		Methods(http.MethodPost).
		Name("POST /pool/fund").
		HandlerFunc(utils.WrapHandlerFunc(p.handleFund))
	sub.Path("/stakers").
		Methods(http.MethodGet).
		Name("GET /pool/stakers").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetStakers))
	sub.Path("/stakers/{address}").
		Methods(http.MethodGet).
		Name("GET /pool/stakers/{address}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetStaker))
	sub.Path("/stakers/{address}/rewards").
		Methods(http.MethodGet).
		Name("GET /pool/stakers/{address}/rewards").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetRewards))
	sub.Path("/stakers/{address}/stake").
		Methods(http.MethodPost).
		Name("POST /pool/stakers/{address}/stake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleStake))
	sub.Path("/stakers/{address}/harvest").
		Methods(http.MethodPost).
		Name("POST /pool/stakers/{address}/harvest").
		HandlerFunc(utils.WrapHandlerFunc(p.handleHarvest))
	sub.Path("/stakers/{address}/unstake").
		Methods(http.MethodPost).
		Name("POST /pool/stakers/{address}/unstake").
		HandlerFunc(utils.WrapHandlerFunc(p.handleUnstake))
}
