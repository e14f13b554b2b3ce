package codec

// pairAccountDisc tags the program's pair (market) account.
var pairAccountDisc = disc("554831b0b6e48d52")

// PairAccount is the on-chain market state, decoded only as far as the
// reserve snapshot the indexer cares about; the trailing rate-model and
// accounting fields are skipped.
type PairAccount struct {
	Token0     Pubkey
	Token1     Pubkey
	LpMint     Pubkey
	RateModel  Pubkey
	SwapFeeBps uint16
	HalfLife   uint64
	Reserve0   uint64
	Reserve1   uint64
}

// IsPairAccount reports whether the account data carries the pair tag.
func IsPairAccount(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	var tag Discriminator
	copy(tag[:], data[:8])
	return tag == pairAccountDisc
}

// DecodePairAccount parses a pair account snapshot.
func DecodePairAccount(data []byte) (*PairAccount, error) {
	if !IsPairAccount(data) {
		return nil, ErrUnknownDiscriminator
	}
	r := newReader(data[8:])
	acct := &PairAccount{}
	acct.Token0 = r.Pubkey()
	acct.Token1 = r.Pubkey()
	acct.LpMint = r.Pubkey()
	acct.RateModel = r.Pubkey()
	acct.SwapFeeBps = r.U16()
	acct.HalfLife = r.U64()
	r.OptionU16() // fixed_cf_bps
	acct.Reserve0 = r.U64()
	acct.Reserve1 = r.U64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	return acct, nil
}
