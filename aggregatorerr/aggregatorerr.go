// Package aggregatorerr maps the Anchor custom-error codes a swap
// aggregator program can return into named sentinels, and extracts those
// codes out of a simulation/submission error string. Grounded on
// original_source/src/error.rs's SwapError enum and from_code table.
package aggregatorerr

import (
	"fmt"
	"regexp"
	"strconv"
)

// SwapError is one of the aggregator program's documented Anchor errors.
type SwapError int

const (
	EmptyRoute SwapError = 6000 + iota
	SlippageToleranceExceeded
	InvalidCalculation
	MissingPlatformFeeAccount
	InvalidSlippage
	NotEnoughPercent
	InvalidInputIndex
	InvalidOutputIndex
	NotEnoughAccountKeys
	NonZeroMinimumOutAmountNotSupported
	InvalidRoutePlan
	InvalidReferralAuthority
	LedgerTokenAccountDoesNotMatch
	InvalidTokenLedger
	IncorrectTokenProgramID
	TokenProgramNotProvided
	SwapNotSupported
	ExactOutAmountNotMatched
	SourceAndDestinationMintCannotBeTheSame
	InvalidMint
	InvalidProgramAuthority
	InvalidOutputTokenAccount
	InvalidFeeWallet
	InvalidAuthority
	InsufficientFunds
	InvalidTokenAccount
)

// NoProfitableFound is the profit-check program's own error code (100),
// distinct from the 6000-range aggregator codes.
const NoProfitableFound SwapError = 100

var messages = map[SwapError]string{
	EmptyRoute:                               "empty route",
	SlippageToleranceExceeded:                "slippage tolerance exceeded",
	InvalidCalculation:                       "invalid calculation",
	MissingPlatformFeeAccount:                "missing platform fee account",
	InvalidSlippage:                          "invalid slippage",
	NotEnoughPercent:                         "not enough percent to 100",
	InvalidInputIndex:                        "token input index is invalid",
	InvalidOutputIndex:                       "token output index is invalid",
	NotEnoughAccountKeys:                     "not enough account keys",
	NonZeroMinimumOutAmountNotSupported:      "non zero minimum out amount not supported",
	InvalidRoutePlan:                         "invalid route plan",
	InvalidReferralAuthority:                 "invalid referral authority",
	LedgerTokenAccountDoesNotMatch:           "token account doesn't match the ledger",
	InvalidTokenLedger:                       "invalid token ledger",
	IncorrectTokenProgramID:                  "token program id is invalid",
	TokenProgramNotProvided:                  "token program not provided",
	SwapNotSupported:                         "swap not supported",
	ExactOutAmountNotMatched:                 "exact out amount doesn't match",
	SourceAndDestinationMintCannotBeTheSame:  "source mint and destination mint cannot be the same",
	InvalidMint:                              "invalid mint",
	InvalidProgramAuthority:                  "invalid program authority",
	InvalidOutputTokenAccount:                "invalid output token account",
	InvalidFeeWallet:                         "invalid fee wallet",
	InvalidAuthority:                         "invalid authority",
	InsufficientFunds:                        "insufficient funds",
	InvalidTokenAccount:                      "invalid token account",
	NoProfitableFound:                        "no profitable arbitrage found",
}

func (e SwapError) Error() string {
	if msg, ok := messages[e]; ok {
		return msg
	}
	return fmt.Sprintf("unknown swap error code %d", int(e))
}

// FromCode returns the named SwapError for code, or false if code isn't
// one of the documented ones.
func FromCode(code uint64) (SwapError, bool) {
	e := SwapError(code)
	_, ok := messages[e]
	return e, ok
}

var programErrorPattern = regexp.MustCompile(`Instruction (\d+): Custom program error: 0x([0-9a-fA-F]+)`)

// ExtractProgramError pulls the custom error code out of a transaction
// submission/simulation error string, e.g.
// "Instruction 4: Custom program error: 0x1774" -> 6004.
func ExtractProgramError(errText string) (SwapError, bool) {
	m := programErrorPattern.FindStringSubmatch(errText)
	if m == nil {
		return 0, false
	}
	code, err := strconv.ParseUint(m[2], 16, 64)
	if err != nil {
		return 0, false
	}
	return FromCode(code)
}
