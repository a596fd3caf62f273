// Copyright (c) 2026 The GYSR developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"bytes"
	"math/big"

	"github.com/jonboulle/clockwork"

	"github.com/gysr-io/core-go/fixed"
	"github.com/gysr-io/core-go/gysr"
	"github.com/gysr-io/core-go/reverts"
	"github.com/gysr-io/core-go/share"
)

// DefaultMaxRewardTokens bounds how many reward tokens one position may
// register for in a single call.
const DefaultMaxRewardTokens = 16

// MultiConfig parameterizes the multi-token reward module. Vesting follows
// the friendly policy and is shared across all reward tokens.
type MultiConfig struct {
	VestingPeriod uint64
	VestingStart  *big.Int // wad
	GysrWeight    *big.Int // wad
	MaxTokens     int
}

func (c *MultiConfig) normalize() error {
	if c.VestingStart == nil {
		c.VestingStart = new(big.Int)
	}
	if c.VestingStart.Sign() < 0 || c.VestingStart.Cmp(fixed.Unit) > 0 {
		return reverts.InvalidInput("vesting start outside [0,1]")
	}
	if c.GysrWeight == nil || c.GysrWeight.Sign() <= 0 {
		c.GysrWeight = fixed.Clone(DefaultGysrWeight)
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxRewardTokens
	}
	return nil
}

// MultiStakeData is the auxiliary stake argument for the multi-token module.
// Tokens must be strictly ascending; an empty list intentionally skips
// registration (the position can register later via Update).
type MultiStakeData struct {
	Tokens    []gysr.Address
	GysrSpent *big.Int
}

// MultiPositionData names a position and, for unstake and claim, all and
// exactly the tokens it is registered for.
type MultiPositionData struct {
	Index  int
	Tokens []gysr.Address
}

// MultiUpdateData registers and deregisters reward tokens for a position
// without moving principal.
type MultiUpdateData struct {
	Index      int
	Register   []gysr.Address
	Deregister []gysr.Address
}

// MultiCleanData selects the reward tokens to sweep; empty means all.
type MultiCleanData struct {
	Tokens []gysr.Address
}

// multiPosition is one stake action with per-token registration baselines.
// weight is the registered amount, fixed at stake and decremented exactly on
// partial exits, so the accumulator books always reconcile to zero.
type multiPosition struct {
	shares    *big.Int
	weight    *big.Int // shares scaled by the spend bonus
	gysr      *big.Int
	timestamp uint64
	baselines map[gysr.Address]*big.Int
}

// frac returns the pro-rata weight and GYSR attributed to the given share
// count, which must not exceed the position's shares.
func (p *multiPosition) frac(shares *big.Int) (weight, gysrPart *big.Int) {
	if shares.Cmp(p.shares) == 0 {
		return fixed.Clone(p.weight), fixed.Clone(p.gysr)
	}
	return fixed.MulDiv(p.weight, shares, p.shares), fixed.MulDiv(p.gysr, shares, p.shares)
}

// Multi distributes N independently funded reward tokens, each with its own
// accumulator and funding schedules, under a shared vesting policy. Positions
// opt in per token; deregistering a token realizes the unvested forfeiture
// for that token/position pair immediately.
type Multi struct {
	clock     clockwork.Clock
	cfg       MultiConfig
	tokens    []gysr.Address
	accs      map[gysr.Address]*Accumulator
	positions map[gysr.Address][]*multiPosition
	aggWeight *big.Int // registered weight summed over tokens
	aggRaw    *big.Int // registered raw shares summed over tokens
}

// NewMulti creates an empty multi-token reward module; reward tokens are
// added with AddToken before use.
func NewMulti(clock clockwork.Clock, cfg MultiConfig) (*Multi, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &Multi{
		clock:     clock,
		cfg:       cfg,
		accs:      make(map[gysr.Address]*Accumulator),
		positions: make(map[gysr.Address][]*multiPosition),
		aggWeight: new(big.Int),
		aggRaw:    new(big.Int),
	}, nil
}

// AddToken registers a reward token with its share ledger.
func (m *Multi) AddToken(tokenID gysr.Address, ledger *share.Ledger) error {
	if _, ok := m.accs[tokenID]; ok {
		return reverts.StateConflict("reward token already added")
	}
	m.accs[tokenID] = NewAccumulator(ledger)
	m.tokens = append(m.tokens, tokenID)
	return nil
}

func (m *Multi) now() uint64 {
	return uint64(m.clock.Now().Unix())
}

// Tokens implements Module.
func (m *Multi) Tokens() []gysr.Address {
	out := make([]gysr.Address, len(m.tokens))
	copy(out, m.tokens)
	return out
}

// Accumulator returns the accumulator for a reward token, or nil.
func (m *Multi) Accumulator(tokenID gysr.Address) *Accumulator {
	return m.accs[tokenID]
}

// PositionCount returns the number of open positions for the account.
func (m *Multi) PositionCount(account gysr.Address) int {
	return len(m.positions[account])
}

// Registered returns how many reward tokens the position is registered for.
func (m *Multi) Registered(account gysr.Address, index int) (int, error) {
	pos, err := m.position(account, index)
	if err != nil {
		return 0, err
	}
	return len(pos.baselines), nil
}

// Fund schedules new rewards for one token; start zero means now.
func (m *Multi) Fund(funder gysr.Address, tokenID gysr.Address, amount *big.Int, start, duration uint64) error {
	acc, ok := m.accs[tokenID]
	if !ok {
		return reverts.InvalidInput("unknown reward token")
	}
	now := m.now()
	if start == 0 {
		start = now
	}
	return acc.Fund(funder, amount, start, duration, now)
}

// validTokenList enforces the list contract: bounded length, strictly
// ascending (which makes duplicates impossible in one pass), all known.
func (m *Multi) validTokenList(tokens []gysr.Address) error {
	if len(tokens) > m.cfg.MaxTokens {
		return reverts.InvalidInput("too many reward tokens")
	}
	for i, t := range tokens {
		if _, ok := m.accs[t]; !ok {
			return reverts.InvalidInput("unknown reward token %s", t)
		}
		if i > 0 && bytes.Compare(tokens[i-1].Bytes(), t.Bytes()) >= 0 {
			return reverts.InvalidInput("token list must be strictly ascending")
		}
	}
	return nil
}

func (m *Multi) position(account gysr.Address, index int) (*multiPosition, error) {
	list := m.positions[account]
	if index < 0 || index >= len(list) {
		return nil, reverts.InvalidInput("position index out of range")
	}
	return list[index], nil
}

func (m *Multi) vestingCoeff(age uint64) *big.Int {
	if m.cfg.VestingPeriod == 0 || age >= m.cfg.VestingPeriod {
		return fixed.Clone(fixed.Unit)
	}
	span := new(big.Int).Sub(fixed.Unit, m.cfg.VestingStart)
	ramp := fixed.MulDiv(span, new(big.Int).SetUint64(age), new(big.Int).SetUint64(m.cfg.VestingPeriod))
	return ramp.Add(ramp, m.cfg.VestingStart)
}

// register opts the position in for one token. Caller has settled.
func (m *Multi) register(pos *multiPosition, tokenID gysr.Address) {
	pos.baselines[tokenID] = m.accs[tokenID].AddWeight(pos.weight)
	m.aggWeight.Add(m.aggWeight, pos.weight)
	m.aggRaw.Add(m.aggRaw, pos.shares)
}

// settleOut realizes a position's accrual for one token over the given share
// fraction, paying the vested part and forfeiting the rest to the token's
// dust. Caller has settled. Returns the distributed amount.
func (m *Multi) settleOut(account gysr.Address, pos *multiPosition, tokenID gysr.Address, shares *big.Int, now uint64) (*big.Int, error) {
	acc := m.accs[tokenID]
	weight, _ := pos.frac(shares)
	earned := acc.Earned(pos.baselines[tokenID], weight)
	vested := fixed.WadMul(earned, m.vestingCoeff(now-pos.timestamp))
	forfeited := new(big.Int).Sub(earned, vested)

	amount, err := acc.Distribute(account, vested)
	if err != nil {
		return nil, err
	}
	acc.Forfeit(forfeited)
	acc.RemoveWeight(weight)
	m.aggWeight.Sub(m.aggWeight, weight)
	m.aggRaw.Sub(m.aggRaw, shares)
	return amount, nil
}

// Stake implements Module. data is *MultiStakeData or nil.
func (m *Multi) Stake(account gysr.Address, shares *big.Int, data any) (*Receipt, error) {
	var d *MultiStakeData
	switch v := data.(type) {
	case nil:
		d = &MultiStakeData{}
	case *MultiStakeData:
		d = v
	default:
		return nil, reverts.InvalidInput("malformed stake data")
	}
	if fixed.IsZero(shares) {
		return nil, reverts.InvalidInput("zero share stake")
	}
	if err := m.validTokenList(d.Tokens); err != nil {
		return nil, err
	}
	now := m.now()
	m.settleAll(now)

	spent := gysrOrZero(d.GysrSpent)
	bonus, err := SpendBonus(spent, usageRatio(m.aggWeight, m.aggRaw), m.cfg.GysrWeight)
	if err != nil {
		return nil, err
	}
	pos := &multiPosition{
		shares:    fixed.Clone(shares),
		weight:    fixed.WadMul(shares, bonus),
		gysr:      spent,
		timestamp: now,
		baselines: make(map[gysr.Address]*big.Int, len(d.Tokens)),
	}
	for _, t := range d.Tokens {
		m.register(pos, t)
	}
	m.positions[account] = append(m.positions[account], pos)

	logger.Debug("multi stake", "account", account, "shares", shares, "tokens", len(d.Tokens))
	r := newReceipt()
	r.GysrSpent = fixed.Clone(spent)
	return r, nil
}

// requireExactTokens checks the caller named all and exactly the registered
// tokens, preventing a dangling registration that would double-count rewards.
func (m *Multi) requireExactTokens(pos *multiPosition, tokens []gysr.Address) error {
	if err := m.validTokenList(tokens); err != nil {
		return err
	}
	if len(tokens) != len(pos.baselines) {
		return reverts.InvalidInput("token list does not match registrations")
	}
	for _, t := range tokens {
		if _, ok := pos.baselines[t]; !ok {
			return reverts.InvalidInput("token %s not registered", t)
		}
	}
	return nil
}

// Unstake implements Module. data is *MultiPositionData; the token list must
// match the position's registrations exactly.
func (m *Multi) Unstake(account gysr.Address, shares *big.Int, data any) (*Receipt, error) {
	d, ok := data.(*MultiPositionData)
	if !ok || d == nil {
		return nil, reverts.InvalidInput("malformed position data")
	}
	if fixed.IsZero(shares) {
		return nil, reverts.InvalidInput("zero share unstake")
	}
	pos, err := m.position(account, d.Index)
	if err != nil {
		return nil, err
	}
	if shares.Cmp(pos.shares) > 0 {
		return nil, reverts.InsufficientBalance("unstake exceeds position shares")
	}
	if err := m.requireExactTokens(pos, d.Tokens); err != nil {
		return nil, err
	}
	now := m.now()
	m.settleAll(now)

	r := newReceipt()
	for _, t := range d.Tokens {
		amount, err := m.settleOut(account, pos, t, shares, now)
		if err != nil {
			return nil, err
		}
		r.addReward(t, amount)
	}

	weightPart, gysrPart := pos.frac(shares)
	r.GysrVested = gysrPart

	if shares.Cmp(pos.shares) == 0 {
		list := m.positions[account]
		last := len(list) - 1
		list[d.Index] = list[last]
		list[last] = nil
		if last == 0 {
			delete(m.positions, account)
		} else {
			m.positions[account] = list[:last]
		}
	} else {
		// the surviving shares keep their registrations and old baselines;
		// settleOut removed exactly this weight fraction per token
		pos.shares.Sub(pos.shares, shares)
		pos.weight.Sub(pos.weight, weightPart)
		pos.gysr.Sub(pos.gysr, gysrPart)
	}

	logger.Debug("multi unstake", "account", account, "shares", shares, "tokens", len(d.Tokens))
	return r, nil
}

// Claim implements Module: realizes vested accrual for all and exactly the
// registered tokens and re-baselines them; principal and registrations are
// untouched and the vesting clock is not reset. The position's escrowed GYSR
// stays committed across claims and only vests when principal unwinds via
// Unstake; unlike the single-token modules, no re-boost spend is accepted.
func (m *Multi) Claim(account gysr.Address, data any) (*Receipt, error) {
	d, ok := data.(*MultiPositionData)
	if !ok || d == nil {
		return nil, reverts.InvalidInput("malformed position data")
	}
	pos, err := m.position(account, d.Index)
	if err != nil {
		return nil, err
	}
	if err := m.requireExactTokens(pos, d.Tokens); err != nil {
		return nil, err
	}
	now := m.now()
	m.settleAll(now)

	r := newReceipt()
	for _, t := range d.Tokens {
		amount, err := m.settleOut(account, pos, t, pos.shares, now)
		if err != nil {
			return nil, err
		}
		r.addReward(t, amount)
		m.register(pos, t)
	}
	return r, nil
}

// Update implements Module. data is *MultiUpdateData: register or deregister
// reward tokens for a position without moving principal. Deregistering pays
// the vested accrual and forfeits the unvested remainder immediately.
func (m *Multi) Update(account gysr.Address, data any) error {
	if data == nil {
		m.settleAll(m.now())
		return nil
	}
	d, ok := data.(*MultiUpdateData)
	if !ok {
		return reverts.InvalidInput("malformed update data")
	}
	pos, err := m.position(account, d.Index)
	if err != nil {
		return err
	}
	if err := m.validTokenList(d.Register); err != nil {
		return err
	}
	if err := m.validTokenList(d.Deregister); err != nil {
		return err
	}
	for _, t := range d.Register {
		if _, ok := pos.baselines[t]; ok {
			return reverts.StateConflict("token %s already registered", t)
		}
	}
	for _, t := range d.Deregister {
		if _, ok := pos.baselines[t]; !ok {
			return reverts.StateConflict("token %s not registered", t)
		}
	}
	now := m.now()
	m.settleAll(now)

	for _, t := range d.Deregister {
		if _, err := m.settleOut(account, pos, t, pos.shares, now); err != nil {
			return err
		}
		delete(pos.baselines, t)
	}
	for _, t := range d.Register {
		m.register(pos, t)
	}
	return nil
}

// Clean implements Module. data is *MultiCleanData or nil; an empty token
// list sweeps every reward token. Idempotent.
func (m *Multi) Clean(data any) error {
	tokens := m.tokens
	if d, ok := data.(*MultiCleanData); ok && d != nil && len(d.Tokens) > 0 {
		if err := m.validTokenList(d.Tokens); err != nil {
			return err
		}
		tokens = d.Tokens
	} else if data != nil && !ok {
		return reverts.InvalidInput("malformed clean data")
	}
	now := m.now()
	for _, t := range tokens {
		m.accs[t].Clean(now)
	}
	return nil
}

// ValidateTokens checks, without mutating, that tokens names all and exactly
// the position's registrations.
func (m *Multi) ValidateTokens(account gysr.Address, index int, tokens []gysr.Address) error {
	pos, err := m.position(account, index)
	if err != nil {
		return err
	}
	return m.requireExactTokens(pos, tokens)
}

// Claimable previews the vested accrual of a position for one token.
func (m *Multi) Claimable(account gysr.Address, index int, tokenID gysr.Address) (*big.Int, error) {
	pos, err := m.position(account, index)
	if err != nil {
		return nil, err
	}
	acc, ok := m.accs[tokenID]
	if !ok {
		return nil, reverts.InvalidInput("unknown reward token")
	}
	baseline, ok := pos.baselines[tokenID]
	if !ok {
		return new(big.Int), nil
	}
	now := m.now()
	acc.Settle(now)
	earned := acc.Earned(baseline, pos.weight)
	vested := fixed.WadMul(earned, m.vestingCoeff(now-pos.timestamp))
	return acc.ledger.TokensFor(vested), nil
}

func (m *Multi) settleAll(now uint64) {
	for _, t := range m.tokens {
		m.accs[t].Settle(now)
	}
}

var _ Module = (*Multi)(nil)
