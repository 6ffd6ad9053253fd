// Package pool implements a zero-fee constant-product DAI/ETH market maker.
package pool

import (
	"errors"
	"fmt"
	"math"

	"AMMSim/internal/model"
)

var (
	ErrInvalidAmount     = errors.New("invalid trade amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDivisionByZero    = errors.New("pool reserve is zero")
	ErrInvalidSide       = errors.New("invalid trade side")
)

// Counterparty is anything holding a two-currency balance that can trade
// against the pool.
type Counterparty interface {
	Balances() *model.Balances
}

// Pool holds the two reserves. reserveDai*reserveEth is preserved by every
// successful trade, up to floating-point rounding.
type Pool struct {
	reserveDai float64
	reserveEth float64
}

// New creates a pool from strictly positive initial reserves.
func New(reserveDai, reserveEth float64) (*Pool, error) {
	if !(reserveDai > 0) || !(reserveEth > 0) || math.IsInf(reserveDai, 0) || math.IsInf(reserveEth, 0) {
		return nil, fmt.Errorf("new pool (dai=%v, eth=%v): reserves must be positive", reserveDai, reserveEth)
	}
	return &Pool{reserveDai: reserveDai, reserveEth: reserveEth}, nil
}

// Price returns the DAI price of one ETH.
func (p *Pool) Price() (float64, error) {
	if p.reserveEth == 0 {
		return 0, ErrDivisionByZero
	}
	return p.reserveDai / p.reserveEth, nil
}

// Reserves returns the current DAI and ETH reserves.
func (p *Pool) Reserves() (dai, eth float64) {
	return p.reserveDai, p.reserveEth
}

// K returns the constant product.
func (p *Pool) K() float64 {
	return p.reserveDai * p.reserveEth
}

// Quote computes what a trade would pay out without touching any state.
func (p *Pool) Quote(side model.Side, amountIn float64) (float64, error) {
	if !(amountIn > 0) || math.IsInf(amountIn, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, amountIn)
	}
	if p.reserveDai <= 0 || p.reserveEth <= 0 {
		return 0, ErrDivisionByZero
	}

	k := p.reserveEth * p.reserveDai
	var out, reserveOut float64
	switch side {
	case model.BuyEth:
		out = p.reserveEth - k/(p.reserveDai+amountIn)
		reserveOut = p.reserveEth
	case model.BuyDai:
		out = p.reserveDai - k/(p.reserveEth+amountIn)
		reserveOut = p.reserveDai
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}

	// Inputs too small to move the reserves buy nothing.
	if !(out > 0) {
		return 0, fmt.Errorf("%w: %v %s yields no %s", ErrInvalidAmount, amountIn, side.Input(), side.Output())
	}
	if out >= reserveOut {
		return 0, fmt.Errorf("%w: %s output %v drains reserve %v", ErrDivisionByZero, side.Output(), out, reserveOut)
	}
	return out, nil
}

// Trade swaps amountIn of the side's input currency from cp into the pool and
// pays the output currency back to cp. It returns the amount cp received.
// Nothing is mutated unless every check passes.
func (p *Pool) Trade(cp Counterparty, side model.Side, amountIn float64) (float64, error) {
	out, err := p.Quote(side, amountIn)
	if err != nil {
		return 0, err
	}

	bal := cp.Balances()
	in := side.Input()
	if have := bal.Get(in); have < amountIn {
		return 0, fmt.Errorf("%w: have %v %s, need %v", ErrInsufficientFunds, have, in, amountIn)
	}

	switch side {
	case model.BuyEth:
		p.reserveDai += amountIn
		p.reserveEth -= out
	case model.BuyDai:
		p.reserveEth += amountIn
		p.reserveDai -= out
	}
	bal.Debit(in, amountIn)
	bal.Credit(side.Output(), out)

	return out, nil
}
