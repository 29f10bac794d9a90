package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/festival/asset"
	"github.com/xraph/festival/market"
	"github.com/xraph/festival/sale"
	"github.com/xraph/festival/token"
	"github.com/xraph/festival/types"
)

// compile-time interface check
var _ Tx = (*recordTx)(nil)

type recordTx struct {
	b Bucket
}

// NewTx returns the typed record view over b.
func NewTx(b Bucket) Tx {
	return &recordTx{b: b}
}

// get decodes key into v. It reports false when the key is absent.
func (t *recordTx) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := t.b.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("festival/store: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("festival/store: decode %s: %w", key, err)
	}
	return true, nil
}

func (t *recordTx) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("festival/store: encode %s: %w", key, err)
	}
	if err := t.b.Put(ctx, key, data); err != nil {
		return fmt.Errorf("festival/store: put %s: %w", key, err)
	}
	return nil
}

func (t *recordTx) del(ctx context.Context, key string) error {
	if err := t.b.Delete(ctx, key); err != nil {
		return fmt.Errorf("festival/store: delete %s: %w", key, err)
	}
	return nil
}

func (t *recordTx) getUint(ctx context.Context, key string) (uint64, error) {
	var s string
	if ok, err := t.get(ctx, key, &s); err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("festival/store: decode %s: %w", key, err)
	}
	return n, nil
}

func (t *recordTx) putUint(ctx context.Context, key string, n uint64) error {
	return t.put(ctx, key, strconv.FormatUint(n, 10))
}

// ==================== Token Store ====================

func (t *recordTx) GetAccount(ctx context.Context, addr common.Address) (*token.Account, error) {
	acct := &token.Account{Address: addr}
	if _, err := t.get(ctx, AccountKey(addr), acct); err != nil {
		return nil, err
	}
	return acct, nil
}

func (t *recordTx) PutAccount(ctx context.Context, acct *token.Account) error {
	return t.put(ctx, AccountKey(acct.Address), acct)
}

func (t *recordTx) GetAllowance(ctx context.Context, owner, spender common.Address) (types.Amount, error) {
	var a types.Amount
	if _, err := t.get(ctx, AllowanceKey(owner, spender), &a); err != nil {
		return types.Amount{}, err
	}
	return a, nil
}

func (t *recordTx) PutAllowance(ctx context.Context, owner, spender common.Address, amount types.Amount) error {
	key := AllowanceKey(owner, spender)
	if amount.IsZero() {
		return t.del(ctx, key)
	}
	return t.put(ctx, key, amount)
}

func (t *recordTx) GetSupply(ctx context.Context) (types.Amount, error) {
	var a types.Amount
	if _, err := t.get(ctx, SupplyKey(), &a); err != nil {
		return types.Amount{}, err
	}
	return a, nil
}

func (t *recordTx) PutSupply(ctx context.Context, amount types.Amount) error {
	return t.put(ctx, SupplyKey(), amount)
}

// ==================== Asset Store ====================

func (t *recordTx) GetUnit(ctx context.Context, unitID uint64) (*asset.Unit, error) {
	u := new(asset.Unit)
	ok, err := t.get(ctx, UnitKey(unitID), u)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrUnknownUnit
	}
	return u, nil
}

func (t *recordTx) PutUnit(ctx context.Context, u *asset.Unit) error {
	return t.put(ctx, UnitKey(u.ID), u)
}

func (t *recordTx) GetHolder(ctx context.Context, addr common.Address) (*asset.Holder, error) {
	h := &asset.Holder{Address: addr}
	if _, err := t.get(ctx, HolderKey(addr), h); err != nil {
		return nil, err
	}
	return h, nil
}

func (t *recordTx) PutHolder(ctx context.Context, h *asset.Holder) error {
	if len(h.Units) == 0 {
		return t.del(ctx, HolderKey(h.Address))
	}
	return t.put(ctx, HolderKey(h.Address), h)
}

func (t *recordTx) IsOperator(ctx context.Context, owner, operator common.Address) (bool, error) {
	var approved bool
	if _, err := t.get(ctx, OperatorKey(owner, operator), &approved); err != nil {
		return false, err
	}
	return approved, nil
}

func (t *recordTx) PutOperator(ctx context.Context, owner, operator common.Address, approved bool) error {
	key := OperatorKey(owner, operator)
	if !approved {
		return t.del(ctx, key)
	}
	return t.put(ctx, key, true)
}

func (t *recordTx) GetLastUnitID(ctx context.Context) (uint64, error) {
	return t.getUint(ctx, UnitSeqKey())
}

func (t *recordTx) PutLastUnitID(ctx context.Context, unitID uint64) error {
	return t.putUint(ctx, UnitSeqKey(), unitID)
}

// ==================== Sale Store ====================

func (t *recordTx) GetSaleConfig(ctx context.Context) (*sale.Config, error) {
	c := new(sale.Config)
	ok, err := t.get(ctx, SaleKey(), c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNotInitialized
	}
	return c, nil
}

func (t *recordTx) PutSaleConfig(ctx context.Context, c *sale.Config) error {
	return t.put(ctx, SaleKey(), c)
}

func (t *recordTx) GetMintCount(ctx context.Context, addr common.Address) (uint64, error) {
	return t.getUint(ctx, MintedKey(addr))
}

func (t *recordTx) PutMintCount(ctx context.Context, addr common.Address, n uint64) error {
	return t.putUint(ctx, MintedKey(addr), n)
}

// ==================== Market Store ====================

func (t *recordTx) GetListing(ctx context.Context, unitID uint64) (*market.Listing, error) {
	l := new(market.Listing)
	ok, err := t.get(ctx, ListingKey(unitID), l)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNoActiveListing
	}
	return l, nil
}

func (t *recordTx) PutListing(ctx context.Context, l *market.Listing) error {
	return t.put(ctx, ListingKey(l.UnitID), l)
}

func (t *recordTx) DeleteListing(ctx context.Context, unitID uint64) error {
	return t.del(ctx, ListingKey(unitID))
}

func (t *recordTx) GetFeeConfig(ctx context.Context) (*market.FeeConfig, error) {
	f := new(market.FeeConfig)
	ok, err := t.get(ctx, FeeKey(), f)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.ErrNotInitialized
	}
	return f, nil
}

func (t *recordTx) PutFeeConfig(ctx context.Context, f *market.FeeConfig) error {
	return t.put(ctx, FeeKey(), f)
}
