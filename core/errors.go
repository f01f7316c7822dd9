package core

import "errors"

// BridgeError is a typed, code-bearing error so callers (the relayer, the
// HTTP admin surface, CLI commands) can branch on failure kind with
// errors.As instead of string-matching messages.
type BridgeError struct {
	Code    string
	Message string
	Err     error
}

func (e *BridgeError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *BridgeError) Unwrap() error { return e.Err }

func newErr(code, message string, cause error) *BridgeError {
	return &BridgeError{Code: code, Message: message, Err: cause}
}

// Sentinel causes. Compare with errors.Is; BridgeError.Code distinguishes
// the same root cause raised against different operations.
var (
	ErrInvalidChainKind          = errors.New("invalid chain kind")
	ErrInvalidAddress            = errors.New("invalid omni address")
	ErrZeroAmount                = errors.New("amount is zero")
	ErrTokenNotRegistered        = errors.New("token not registered")
	ErrTokenAlreadyBound         = errors.New("token already bound")
	ErrUnknownFactory            = errors.New("unknown factory for chain")
	ErrTransferNotFound          = errors.New("transfer does not exist")
	ErrTransferAlreadyFinalised  = errors.New("transfer already finalised")
	ErrFastTransferExists        = errors.New("fast transfer already exists")
	ErrFastTransferNotFinalised  = errors.New("fast transfer not yet finalised")
	ErrFastTransferFinalised     = errors.New("fast transfer already finalised")
	ErrOnlySenderCanUpdateFee    = errors.New("only sender can update token fee")
	ErrFeeMustIncrease           = errors.New("new fee must be higher than the current fee")
	ErrNativeFeeMismatch         = errors.New("native fee must equal attached deposit exactly")
	ErrFeeRecipientNotSet        = errors.New("fee recipient not set")
	ErrOnlyFeeRecipientCanClaim  = errors.New("only the fee recipient can claim this fee")
	ErrInsufficientStorage       = errors.New("insufficient storage balance")
	ErrAmountOverflow            = errors.New("denormalized amount overflows destination precision")
	ErrUnauthorizedRelayer       = errors.New("relayer is not authorized")
	ErrInvalidProof              = errors.New("invalid chain proof")
	ErrUpdateFeeProofUnsupported = errors.New("fee update via proof is not implemented")
	ErrDecimalsNotFound          = errors.New("token decimals not found")
	ErrSentAmountMismatch        = errors.New("sent amount does not cover amount plus fee")
	ErrInvalidFee                = errors.New("fee must be strictly less than amount")
	ErrSenderIsNotConnector      = errors.New("sender is not the registered connector for this chain")
	ErrDeployerNotSet            = errors.New("no token deployer registered for chain")
	ErrNotUTXONativeAsset        = errors.New("token is not the destination utxo chain's native asset")
	ErrFastTransferAlreadyFinalised = errors.New("fast transfer already finalised")
	ErrRecipientIsHome           = errors.New("recipient must not be the home chain")
	ErrTokenAlreadyDeployed      = errors.New("token already deployed for this chain")
)

// errCodes maps every sentinel cause to the stable ERR_* string a caller can
// branch on without string-matching Error(), mirroring the require!(...,
// "ERR_...") string literals the original contract panics with.
var errCodes = map[error]string{
	ErrInvalidChainKind:             "ERR_INVALID_CHAIN_KIND",
	ErrInvalidAddress:               "ERR_INVALID_ADDRESS",
	ErrZeroAmount:                   "ERR_ZERO_AMOUNT",
	ErrTokenNotRegistered:           "ERR_TOKEN_NOT_REGISTERED",
	ErrTokenAlreadyBound:            "ERR_TOKEN_ALREADY_BOUND",
	ErrUnknownFactory:               "ERR_UNKNOWN_FACTORY",
	ErrTransferNotFound:             "ERR_TRANSFER_NOT_FOUND",
	ErrTransferAlreadyFinalised:     "ERR_TRANSFER_ALREADY_FINALISED",
	ErrFastTransferExists:           "ERR_FAST_TRANSFER_EXISTS",
	ErrFastTransferNotFinalised:     "ERR_FAST_TRANSFER_NOT_FINALISED",
	ErrFastTransferFinalised:        "ERR_FAST_TRANSFER_FINALISED",
	ErrOnlySenderCanUpdateFee:       "ERR_ONLY_SENDER_CAN_UPDATE_FEE",
	ErrFeeMustIncrease:              "ERR_FEE_MUST_INCREASE",
	ErrNativeFeeMismatch:            "ERR_INVALID_ATTACHED_DEPOSIT",
	ErrFeeRecipientNotSet:           "ERR_FEE_RECIPIENT_NOT_SET",
	ErrOnlyFeeRecipientCanClaim:     "ERR_ONLY_FEE_RECIPIENT_CAN_CLAIM",
	ErrInsufficientStorage:          "ERR_INSUFFICIENT_STORAGE",
	ErrAmountOverflow:               "ERR_AMOUNT_OVERFLOW",
	ErrUnauthorizedRelayer:          "ERR_UNAUTHORIZED_RELAYER",
	ErrInvalidProof:                 "ERR_INVALID_PROOF",
	ErrUpdateFeeProofUnsupported:    "ERR_UPDATE_FEE_PROOF_UNSUPPORTED",
	ErrDecimalsNotFound:             "ERR_TOKEN_DECIMALS_NOT_FOUND",
	ErrSentAmountMismatch:           "ERR_SENT_AMOUNT_MISMATCH",
	ErrInvalidFee:                   "ERR_INVALID_FEE",
	ErrSenderIsNotConnector:         "ERR_SENDER_IS_NOT_CONNECTOR",
	ErrDeployerNotSet:               "ERR_DEPLOYER_NOT_SET",
	ErrNotUTXONativeAsset:           "ERR_NOT_UTXO_NATIVE_ASSET",
	ErrFastTransferAlreadyFinalised: "ERR_FAST_TRANSFER_ALREADY_FINALISED",
	ErrRecipientIsHome:              "ERR_RECIPIENT_IS_HOME",
	ErrTokenAlreadyDeployed:         "ERR_TOKEN_EXIST",
}

// bridgeErr wraps sentinel in a *BridgeError carrying its stable code, the
// way Locker methods report their own validation failures: callers branch
// on Code or use errors.Is against the sentinel, never on the free-form
// message. Errors passed up from the registry or the store keep their own
// wrapping and are not BridgeErrors. detail
// overrides the default message when the caller has more specific context
// (an account id, a chain name); pass "" to use sentinel's own text.
func bridgeErr(sentinel error, detail string) *BridgeError {
	code, ok := errCodes[sentinel]
	if !ok {
		code = "ERR_UNKNOWN"
	}
	msg := sentinel.Error()
	if detail != "" {
		msg = detail
	}
	return newErr(code, msg, sentinel)
}
