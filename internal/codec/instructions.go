package codec

// accountArranger walks an ordered account list, failing once it runs short.
// Mirrors the slot-by-slot arrangement the program's client bindings use.
type accountArranger struct {
	accounts []Pubkey
	idx      int
	short    bool
}

func (a *accountArranger) next() Pubkey {
	if a.idx >= len(a.accounts) {
		a.short = true
		return Pubkey{}
	}
	p := a.accounts[a.idx]
	a.idx++
	return p
}

// SwapInstruction is the user-submitted swap with its arranged accounts.
type SwapInstruction struct {
	AmountIn     uint64
	MinAmountOut uint64
	Accounts     SwapAccounts
}

func (*SwapInstruction) message() {}

type SwapAccounts struct {
	Pair               Pubkey
	RateModel          Pubkey
	TokenInVault       Pubkey
	TokenOutVault      Pubkey
	UserTokenInAccount Pubkey
	TokenInMint        Pubkey
	TokenOutMint       Pubkey
	User               Pubkey
}

func decodeSwapInstruction(r *reader, accounts []Pubkey) (Message, error) {
	ix := &SwapInstruction{}
	ix.AmountIn = r.U64()
	ix.MinAmountOut = r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	a := &accountArranger{accounts: accounts}
	ix.Accounts.Pair = a.next()
	ix.Accounts.RateModel = a.next()
	a.next() // futarchy authority
	ix.Accounts.TokenInVault = a.next()
	ix.Accounts.TokenOutVault = a.next()
	ix.Accounts.UserTokenInAccount = a.next()
	a.next() // user token-out account
	ix.Accounts.TokenInMint = a.next()
	ix.Accounts.TokenOutMint = a.next()
	a.next() // authority token-in account
	ix.Accounts.User = a.next()
	if a.short {
		return nil, ErrMalformedPayload
	}
	return ix, nil
}

// AddLiquidityInstruction deposits both sides into a pair.
type AddLiquidityInstruction struct {
	Amount0In       uint64
	Amount1In       uint64
	MinLiquidityOut uint64
	Accounts        LiquidityAccounts
}

func (*AddLiquidityInstruction) message() {}

// RemoveLiquidityInstruction burns LP tokens for both sides.
type RemoveLiquidityInstruction struct {
	LiquidityIn   uint64
	MinAmount0Out uint64
	MinAmount1Out uint64
	Accounts      LiquidityAccounts
}

func (*RemoveLiquidityInstruction) message() {}

// LiquidityAccounts is shared by the add and remove liquidity forms; both
// address the same vaults and mints in the same order.
type LiquidityAccounts struct {
	Pair              Pubkey
	RateModel         Pubkey
	Reserve0Vault     Pubkey
	Reserve1Vault     Pubkey
	UserToken0Account Pubkey
	UserToken1Account Pubkey
	Token0Mint        Pubkey
	Token1Mint        Pubkey
	LpMint            Pubkey
	UserLpAccount     Pubkey
	User              Pubkey
}

func arrangeLiquidityAccounts(accounts []Pubkey) (LiquidityAccounts, error) {
	a := &accountArranger{accounts: accounts}
	var out LiquidityAccounts
	out.Pair = a.next()
	out.RateModel = a.next()
	a.next() // futarchy authority
	out.Reserve0Vault = a.next()
	out.Reserve1Vault = a.next()
	out.UserToken0Account = a.next()
	out.UserToken1Account = a.next()
	out.Token0Mint = a.next()
	out.Token1Mint = a.next()
	out.LpMint = a.next()
	out.UserLpAccount = a.next()
	out.User = a.next()
	if a.short {
		return LiquidityAccounts{}, ErrMalformedPayload
	}
	return out, nil
}

func decodeAddLiquidityInstruction(r *reader, accounts []Pubkey) (Message, error) {
	ix := &AddLiquidityInstruction{}
	ix.Amount0In = r.U64()
	ix.Amount1In = r.U64()
	ix.MinLiquidityOut = r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	var err error
	ix.Accounts, err = arrangeLiquidityAccounts(accounts)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

func decodeRemoveLiquidityInstruction(r *reader, accounts []Pubkey) (Message, error) {
	ix := &RemoveLiquidityInstruction{}
	ix.LiquidityIn = r.U64()
	ix.MinAmount0Out = r.U64()
	ix.MinAmount1Out = r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	var err error
	ix.Accounts, err = arrangeLiquidityAccounts(accounts)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// AdjustCollateralInstruction covers both the add and remove forms; IsAdd
// distinguishes them since they share an args layout.
type AdjustCollateralInstruction struct {
	Amount   uint64
	IsAdd    bool
	Accounts PositionAccounts
}

func (*AdjustCollateralInstruction) message() {}

// AdjustDebtInstruction covers borrow and repay; IsBorrow distinguishes them.
type AdjustDebtInstruction struct {
	Amount   uint64
	IsBorrow bool
	Accounts PositionAccounts
}

func (*AdjustDebtInstruction) message() {}

// PositionAccounts is the account shape shared by the collateral and debt
// adjustment instructions.
type PositionAccounts struct {
	Pair         Pubkey
	UserPosition Pubkey
	RateModel    Pubkey
	Vault        Pubkey
	UserTokenAccount Pubkey
	TokenMint    Pubkey
	User         Pubkey
}

// addCollateral orders pair, rate_model, futarchy, position; the other three
// position instructions order pair, position, rate_model, futarchy.
func arrangePositionAccounts(accounts []Pubkey, positionFirst bool) (PositionAccounts, error) {
	a := &accountArranger{accounts: accounts}
	var out PositionAccounts
	out.Pair = a.next()
	if positionFirst {
		out.UserPosition = a.next()
		out.RateModel = a.next()
		a.next() // futarchy authority
	} else {
		out.RateModel = a.next()
		a.next() // futarchy authority
		out.UserPosition = a.next()
	}
	out.Vault = a.next()
	out.UserTokenAccount = a.next()
	out.TokenMint = a.next()
	out.User = a.next()
	if a.short {
		return PositionAccounts{}, ErrMalformedPayload
	}
	return out, nil
}

func decodeAddCollateralInstruction(r *reader, accounts []Pubkey) (Message, error) {
	ix := &AdjustCollateralInstruction{IsAdd: true}
	ix.Amount = r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	var err error
	ix.Accounts, err = arrangePositionAccounts(accounts, false)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

func decodeRemoveCollateralInstruction(r *reader, accounts []Pubkey) (Message, error) {
	ix := &AdjustCollateralInstruction{IsAdd: false}
	ix.Amount = r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	var err error
	ix.Accounts, err = arrangePositionAccounts(accounts, true)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

func decodeBorrowInstruction(r *reader, accounts []Pubkey) (Message, error) {
	ix := &AdjustDebtInstruction{IsBorrow: true}
	ix.Amount = r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	var err error
	ix.Accounts, err = arrangePositionAccounts(accounts, true)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

func decodeRepayInstruction(r *reader, accounts []Pubkey) (Message, error) {
	ix := &AdjustDebtInstruction{IsBorrow: false}
	ix.Amount = r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	var err error
	ix.Accounts, err = arrangePositionAccounts(accounts, true)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// LiquidateInstruction has no args; everything of interest is in accounts.
type LiquidateInstruction struct {
	Accounts LiquidateAccounts
}

func (*LiquidateInstruction) message() {}

type LiquidateAccounts struct {
	Pair            Pubkey
	UserPosition    Pubkey
	RateModel       Pubkey
	CollateralVault Pubkey
	PositionOwner   Pubkey
	Payer           Pubkey
}

func decodeLiquidateInstruction(_ *reader, accounts []Pubkey) (Message, error) {
	a := &accountArranger{accounts: accounts}
	ix := &LiquidateInstruction{}
	ix.Accounts.Pair = a.next()
	ix.Accounts.UserPosition = a.next()
	ix.Accounts.RateModel = a.next()
	a.next() // futarchy authority
	ix.Accounts.CollateralVault = a.next()
	a.next() // caller token account
	a.next() // collateral token mint
	a.next() // reserve vault
	ix.Accounts.PositionOwner = a.next()
	ix.Accounts.Payer = a.next()
	if a.short {
		return nil, ErrMalformedPayload
	}
	return ix, nil
}
