// Copyright (c) 2026 The Cactus developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tokens exposes the node's own token ledger, so dev accounts can
// approve and move tokens without an external token. Minting is solo only.
package tokens

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/cactusfi/cactus/amount"
	"github.com/cactusfi/cactus/api/utils"
	"github.com/cactusfi/cactus/cactus"
	"github.com/cactusfi/cactus/token"
)

type Token struct {
	Symbol      string        `json:"symbol"`
	Decimals    int           `json:"decimals"`
	TotalSupply amount.Amount `json:"totalSupply"`
}

type Balance struct {
	Owner   cactus.Address `json:"owner"`
	Balance amount.Amount  `json:"balance"`
}

type Allowance struct {
	Owner     cactus.Address `json:"owner"`
	Spender   cactus.Address `json:"spender"`
	Allowance amount.Amount  `json:"allowance"`
}

type MintRequest struct {
	To     cactus.Address `json:"to"`
	Amount string         `json:"amount"`
}

type ApproveRequest struct {
	Owner   cactus.Address `json:"owner"`
	Spender cactus.Address `json:"spender"`
	Amount  string         `json:"amount"`
}

type TransferRequest struct {
	From   cactus.Address `json:"from"`
	To     cactus.Address `json:"to"`
	Amount string         `json:"amount"`
}

type Tokens struct {
	token     token.Issuer
	allowMint bool
}

func New(token token.Issuer, allowMint bool) *Tokens {
	return &Tokens{token, allowMint}
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Token{
		Symbol:      t.token.Symbol(),
		Decimals:    amount.Decimals,
		TotalSupply: t.token.TotalSupply(),
	})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	balance, err := t.token.BalanceOf(req.Context(), owner)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Owner: owner, Balance: balance})
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.ParseAddress("owner", mux.Vars(req)["owner"])
	if err != nil {
		return err
	}
	spender, err := utils.ParseAddress("spender", mux.Vars(req)["spender"])
	if err != nil {
		return err
	}
	allowance, err := t.token.Allowance(req.Context(), owner, spender)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Allowance{Owner: owner, Spender: spender, Allowance: allowance})
}

func (t *Tokens) handleMint(w http.ResponseWriter, req *http.Request) error {
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := utils.ParseTokens("amount", body.Amount)
	if err != nil {
		return err
	}
	if err := t.token.Mint(body.To, value); err != nil {
		return utils.BadRequest(err)
	}
	return t.writeBalance(w, req, body.To)
}

func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := utils.ParseTokens("amount", body.Amount)
	if err != nil {
		return err
	}
	if err := t.token.Approve(body.Owner, body.Spender, value); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Allowance{Owner: body.Owner, Spender: body.Spender, Allowance: value})
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := utils.ParseTokens("amount", body.Amount)
	if err != nil {
		return err
	}
	if err := t.token.Transfer(req.Context(), body.From, body.To, value); err != nil {
		if errors.Is(err, token.ErrInsufficientBalance) {
			return utils.BadRequest(err)
		}
		return err
	}
	return t.writeBalance(w, req, body.From)
}

func (t *Tokens) writeBalance(w http.ResponseWriter, req *http.Request, owner cactus.Address) error {
	balance, err := t.token.BalanceOf(req.Context(), owner)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Owner: owner, Balance: balance})
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /token").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /token/balances/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("GET /token/allowances/{owner}/{spender}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
	if t.allowMint {
		sub.Path("/mint").
			Methods(http.MethodPost).
			Name("POST /token/mint").
			HandlerFunc(utils.WrapHandlerFunc(t.handleMint))
	}
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /token/approve").
		HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /token/transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
}
