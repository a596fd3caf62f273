// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gysr-io/core-go/config"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/pool"
	"github.com/gysr-io/core-go/reward"
	"github.com/gysr-io/core-go/share"
	"github.com/gysr-io/core-go/staking"
	"github.com/gysr-io/core-go/token"
)

// scenario is a deterministic script executed against an in-memory pool. All
// times are offsets in seconds from the scenario start; amounts are decimal
// token quantities.
type scenario struct {
	Staking struct {
		Token struct {
			Kind   string `yaml:"kind"` // standard | fee | elastic
			FeeBps int64  `yaml:"feeBps"`
		} `yaml:"token"`
		BurndownPeriod uint64 `yaml:"burndownPeriod"`
	} `yaml:"staking"`
	Reward struct {
		Policy        string `yaml:"policy"` // friendly | competitive
		VestingPeriod uint64 `yaml:"vestingPeriod"`
		VestingStart  string `yaml:"vestingStart"`
		BonusMin      string `yaml:"bonusMin"`
		BonusMax      string `yaml:"bonusMax"`
		BonusPeriod   uint64 `yaml:"bonusPeriod"`
		GysrWeight    string `yaml:"gysrWeight"`
	} `yaml:"reward"`
	Funding []struct {
		Amount   string `yaml:"amount"`
		Start    uint64 `yaml:"start"`
		Duration uint64 `yaml:"duration"`
	} `yaml:"funding"`
	Accounts map[string]struct {
		Balance string `yaml:"balance"`
		Gysr    string `yaml:"gysr"`
	} `yaml:"accounts"`
	Actions []action `yaml:"actions"`
}

type action struct {
	At       uint64 `yaml:"at"`
	Op       string `yaml:"op"` // stake | unstake | claim | update | clean | rebase
	Account  string `yaml:"account"`
	Amount   string `yaml:"amount"`
	Gysr     string `yaml:"gysr"`
	Position int    `yaml:"position"`
	Coeff    string `yaml:"coeff"` // rebase only
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	var sc scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "parse scenario")
	}
	return &sc, nil
}

// addr derives a stable address from a scenario name.
func addr(name string) gysr.Address {
	return gysr.BytesToAddress([]byte(name))
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "amount %q", s)
	}
	if d.Sign() < 0 {
		return nil, errors.Errorf("amount %q is negative", s)
	}
	return d.Shift(18).Truncate(0).BigInt(), nil
}

func fmtAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -18).String()
}

func (sc *scenario) run(w io.Writer, fees config.Registry) error {
	epoch := time.Unix(1_700_000_000, 0)
	clock := clockwork.NewFakeClockAt(epoch)

	var stakeTok token.Token
	var elastic *token.ElasticToken
	switch sc.Staking.Token.Kind {
	case "", "standard":
		stakeTok = token.NewMemToken(18)
	case "fee":
		stakeTok = token.NewFeeToken(18, sc.Staking.Token.FeeBps)
	case "elastic":
		elastic = token.NewElasticToken(18)
		stakeTok = elastic
	default:
		return errors.Errorf("unknown staking token kind %q", sc.Staking.Token.Kind)
	}
	rewardTok := token.NewMemToken(18)
	gysrTok := token.NewMemToken(18)

	minter, ok := stakeTok.(interface {
		Mint(gysr.Address, *big.Int)
	})
	if !ok {
		return errors.New("staking token is not mintable")
	}
	names := make([]string, 0, len(sc.Accounts))
	for name, acct := range sc.Accounts {
		names = append(names, name)
		if bal, err := parseAmount(acct.Balance); err != nil {
			return err
		} else if bal != nil {
			minter.Mint(addr(name), bal)
		}
		if spend, err := parseAmount(acct.Gysr); err != nil {
			return err
		} else if spend != nil {
			gysrTok.Mint(addr(name), spend)
		}
	}
	sort.Strings(names)

	stakingMod := staking.NewERC20(clock, addr("token.staking"), share.New(stakeTok, addr("vault.staking")),
		staking.ERC20Config{BurndownPeriod: sc.Staking.BurndownPeriod})
	rewardMod, err := sc.buildRewardModule(clock, rewardTok, fees)
	if err != nil {
		return err
	}

	p := pool.New(clock, addr("geyser.owner"), addr("vault.pool"), stakingMod, rewardMod, gysrTok, fees)

	funderAddr := addr("geyser.funder")
	for i, f := range sc.Funding {
		amount, err := parseAmount(f.Amount)
		if err != nil || amount == nil {
			return errors.Wrapf(err, "funding %d", i)
		}
		rewardTok.Mint(funderAddr, amount)
		start := f.Start
		if start > 0 {
			start += uint64(epoch.Unix())
		}
		if err := rewardMod.Fund(funderAddr, amount, start, f.Duration); err != nil {
			return errors.Wrapf(err, "funding %d", i)
		}
	}

	for i, a := range sc.Actions {
		target := epoch.Add(time.Duration(a.At) * time.Second)
		if target.Before(clock.Now()) {
			return errors.Errorf("action %d: time %d is in the past", i, a.At)
		}
		clock.Advance(target.Sub(clock.Now()))
		if err := sc.apply(w, p, elastic, a); err != nil {
			return errors.Wrapf(err, "action %d (%s at t=%d)", i, a.Op, a.At)
		}
	}

	sc.report(w, p, stakeTok, rewardTok, gysrTok, names)
	return nil
}

// fundableModule is the policy-independent surface the scenario drives: the
// pool's reward.Module plus funding.
type fundableModule interface {
	reward.Module
	Fund(funder gysr.Address, amount *big.Int, start, duration uint64) error
}

func (sc *scenario) buildRewardModule(clock clockwork.Clock, tok token.Token, fees config.Registry) (fundableModule, error) {
	ledger := share.New(tok, addr("vault.reward"))
	tokenID := addr("token.reward")

	vestingStart, err := parseAmount(sc.Reward.VestingStart)
	if err != nil {
		return nil, err
	}
	gysrWeight, err := parseAmount(sc.Reward.GysrWeight)
	if err != nil {
		return nil, err
	}
	if gysrWeight == nil {
		if entry, ok := fees.Get(config.KeyGysrWeight); ok {
			gysrWeight = entry.Rate
		}
	}

	switch sc.Reward.Policy {
	case "", "friendly":
		return reward.NewFriendly(clock, tokenID, ledger, reward.FriendlyConfig{
			VestingPeriod: sc.Reward.VestingPeriod,
			VestingStart:  vestingStart,
			GysrWeight:    gysrWeight,
		})
	case "competitive":
		bonusMin, err := parseAmount(sc.Reward.BonusMin)
		if err != nil {
			return nil, err
		}
		bonusMax, err := parseAmount(sc.Reward.BonusMax)
		if err != nil {
			return nil, err
		}
		return reward.NewCompetitive(clock, tokenID, ledger, reward.CompetitiveConfig{
			BonusMin:    bonusMin,
			BonusMax:    bonusMax,
			BonusPeriod: sc.Reward.BonusPeriod,
			GysrWeight:  gysrWeight,
		})
	default:
		return nil, errors.Errorf("unknown reward policy %q", sc.Reward.Policy)
	}
}

func (sc *scenario) apply(w io.Writer, p *pool.Pool, elastic *token.ElasticToken, a action) error {
	amount, err := parseAmount(a.Amount)
	if err != nil {
		return err
	}
	spend, err := parseAmount(a.Gysr)
	if err != nil {
		return err
	}
	account := addr(a.Account)

	switch a.Op {
	case "stake":
		r, err := p.Stake(account, amount, spend, nil, nil)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "t=%-6d %s stakes %s (gysr %s)\n", a.At, a.Account, a.Amount, fmtAmount(r.GysrSpent))
	case "unstake":
		r, err := p.Unstake(account, amount, nil, &reward.PositionData{Index: a.Position})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "t=%-6d %s unstakes %s, rewards %s\n", a.At, a.Account, a.Amount, fmtRewards(r))
	case "claim":
		if amount == nil {
			amount = p.Balance(account)
		}
		r, err := p.Claim(account, amount, spend, nil, &reward.PositionData{Index: a.Position})
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "t=%-6d %s claims, rewards %s\n", a.At, a.Account, fmtRewards(r))
	case "update":
		if err := p.Update(account, nil, nil); err != nil {
			return err
		}
		fmt.Fprintf(w, "t=%-6d update %s\n", a.At, a.Account)
	case "clean":
		if err := p.Clean(nil); err != nil {
			return err
		}
		fmt.Fprintf(w, "t=%-6d clean\n", a.At)
	case "rebase":
		if elastic == nil {
			return errors.New("rebase requires an elastic staking token")
		}
		coeff, err := parseAmount(a.Coeff)
		if err != nil || coeff == nil {
			return errors.Wrap(err, "rebase coefficient")
		}
		elastic.Rebase(coeff)
		fmt.Fprintf(w, "t=%-6d rebase %s\n", a.At, a.Coeff)
	default:
		return errors.Errorf("unknown op %q", a.Op)
	}
	return nil
}

func fmtRewards(r *reward.Receipt) string {
	total := new(big.Int)
	for _, v := range r.Rewards {
		total.Add(total, v)
	}
	return fmtAmount(total)
}

func (sc *scenario) report(w io.Writer, p *pool.Pool, stakeTok, rewardTok, gysrTok token.Token, names []string) {
	fmt.Fprintln(w, "\nfinal balances:")
	for _, name := range names {
		a := addr(name)
		fmt.Fprintf(w, "  %-12s staked=%-14s rewards=%-14s wallet=%-14s gysr=%s\n",
			name,
			fmtAmount(p.Balance(a)),
			fmtAmount(rewardTok.BalanceOf(a)),
			fmtAmount(stakeTok.BalanceOf(a)),
			fmtAmount(gysrTok.BalanceOf(a)))
	}
	pending, retained := p.GysrBalances()
	fmt.Fprintf(w, "  pool         staked=%-14s gysrPending=%-9s gysrRetained=%s\n",
		fmtAmount(p.Totals()), fmtAmount(pending), fmtAmount(retained))
}
