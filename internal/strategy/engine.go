// Package strategy holds the per-tick decision and sizing rules shared by
// every agent.
package strategy

import (
	"math"
	"math/rand"

	"AMMSim/internal/model"
)

// Policy caps the size of a single trade. Each trade draws uniformly from
// [0, cap) and is then clamped to the agent's balance.
type Policy struct {
	MaxDaiIn float64 `yaml:"max_dai_in"`
	MaxEthIn float64 `yaml:"max_eth_in"`
}

// DefaultPolicy mirrors the reference experiment: up to 1000 DAI or 10 ETH.
func DefaultPolicy() Policy {
	return Policy{MaxDaiIn: 1000, MaxEthIn: 10}
}

// Decide picks a side for this tick.
//
// An arbitrageur buys ETH when the external price is above the pool price
// (ETH is cheap in the pool, buying it pushes the pool price up) and buys DAI
// otherwise. A random trader flips a fair coin.
func Decide(role model.Role, externalPrice, poolPrice float64, rng *rand.Rand) model.Side {
	switch role {
	case model.RoleArbitrageur:
		if externalPrice > poolPrice {
			return model.BuyEth
		}
		return model.BuyDai
	default:
		if rng.Float64() > 0.5 {
			return model.BuyEth
		}
		return model.BuyDai
	}
}

// Size draws the trade amount for side, clamped to what bal can pay.
// A zero result means the agent cannot trade this side.
func (p Policy) Size(side model.Side, bal model.Balances, rng *rand.Rand) float64 {
	limit := p.MaxEthIn
	if side == model.BuyEth {
		limit = p.MaxDaiIn
	}
	amount := math.Min(rng.Float64()*limit, bal.Get(side.Input()))
	if !(amount > 0) {
		return 0
	}
	return amount
}
