// Copyright (c) 2026 The Cactus developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Reverts of pool operations. A reverted operation leaves no trace in the ledger.
var (
	ErrBelowMinimum     = New("amount is less than the minimum staking amount")
	ErrAboveMaximum     = New("amount is greater than the maximum staking amount")
	ErrExposureExceeded = New("pool exposure limit reached")
	ErrNothingStaked    = New("nothing staked")
	ErrNothingToHarvest = New("nothing to harvest")
	ErrTransferFailed   = New("token transfer failed")
	ErrReentrant        = New("pool operation already in progress")
)

type ErrRevert struct {
	message string
	base    *ErrRevert
	cause   error
	breach  bool
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// Wrap returns a revert of the same kind as e, carrying cause.
func (e *ErrRevert) Wrap(cause error) *ErrRevert {
	return &ErrRevert{
		message: e.message,
		base:    e.root(),
		cause:   cause,
	}
}

func (e *ErrRevert) root() *ErrRevert {
	if e.base != nil {
		return e.base
	}
	return e
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Is reports whether target is the same kind of revert.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	return e.root() == t.root()
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// TransferFailed reverts a transfer rejected for the caller's balance or allowance.
func TransferFailed(cause error) error {
	return ErrTransferFailed.Wrap(cause)
}

// SolvencyBreach reverts an outbound transfer the pool's custody could not cover.
// It is a TransferFailed to the caller, but signals a broken pool invariant.
func SolvencyBreach(cause error) error {
	e := ErrTransferFailed.Wrap(cause)
	e.breach = true
	return e
}

// IsSolvencyBreach reports whether err was produced by SolvencyBreach.
func IsSolvencyBreach(err error) bool {
	var ve *ErrRevert
	return errors.As(err, &ve) && ve.breach
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
