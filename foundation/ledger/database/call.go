package database

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ardanlabs/memoledger/foundation/ledger/signature"
)

// Set of methods a call can execute against the memo ledger.
const (
	MethodBuyCoffee    = "buyCoffee"
	MethodWithdrawTips = "withdrawTips"
)

// =============================================================================

// Call is the request an account makes to execute one of the ledger's state
// changing functions. The account making the call is not part of the data,
// it's recovered from the signature.
type Call struct {
	ChainID uint16 `json:"chain_id"`
	Nonce   uint64 `json:"nonce"`
	Method  string `json:"method" validate:"required,oneof=buyCoffee withdrawTips"`
	Value   uint64 `json:"value"`
	Name    string `json:"name" validate:"required_if=Method buyCoffee"`
	Message string `json:"message" validate:"required_if=Method buyCoffee"`
}

// NewBuyCoffeeCall constructs a call that records a payment with a memo.
func NewBuyCoffeeCall(chainID uint16, nonce uint64, value uint64, name string, message string) Call {
	return Call{
		ChainID: chainID,
		Nonce:   nonce,
		Method:  MethodBuyCoffee,
		Value:   value,
		Name:    name,
		Message: message,
	}
}

// NewWithdrawTipsCall constructs a call that withdraws the ledger balance.
func NewWithdrawTipsCall(chainID uint16, nonce uint64) Call {
	return Call{
		ChainID: chainID,
		Nonce:   nonce,
		Method:  MethodWithdrawTips,
	}
}

// Sign uses the specified private key to sign the call.
func (c Call) Sign(privateKey *ecdsa.PrivateKey) (SignedCall, error) {
	v, r, s, err := signature.Sign(c, privateKey)
	if err != nil {
		return SignedCall{}, err
	}

	signedCall := SignedCall{
		Call: c,
		V:    v,
		R:    r,
		S:    s,
	}

	return signedCall, nil
}

// =============================================================================

// SignedCall is a signed version of the call. This is how clients like a
// wallet provide calls for execution.
type SignedCall struct {
	Call
	V *big.Int `json:"v" validate:"required"` // Recovery identifier, either 29 or 30.
	R *big.Int `json:"r" validate:"required"` // First coordinate of the ECDSA signature.
	S *big.Int `json:"s" validate:"required"` // Second coordinate of the ECDSA signature.
}

// Validate verifies the call has a proper signature that conforms to our
// standards and names a known method.
func (sc SignedCall) Validate(chainID uint16) error {
	if sc.ChainID != chainID {
		return fmt.Errorf("%w: got %d, exp %d", ErrWrongChain, sc.ChainID, chainID)
	}

	switch sc.Method {
	case MethodBuyCoffee, MethodWithdrawTips:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, sc.Method)
	}

	if err := signature.VerifySignature(sc.Call, sc.V, sc.R, sc.S); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSignature, err)
	}

	return nil
}

// FromAccount extracts the account id that signed the call.
func (sc SignedCall) FromAccount() (AccountID, error) {
	if sc.V == nil || sc.R == nil || sc.S == nil {
		return "", errors.New("missing signature values")
	}

	address, err := signature.FromAddress(sc.Call, sc.V, sc.R, sc.S)
	return AccountID(address), err
}

// SignatureString returns the signature as a string.
func (sc SignedCall) SignatureString() string {
	return signature.SignatureString(sc.V, sc.R, sc.S)
}

// String implements the fmt.Stringer interface for logging.
func (sc SignedCall) String() string {
	from, err := sc.FromAccount()
	if err != nil {
		from = "unknown"
	}

	return fmt.Sprintf("%s:%d:%s", from, sc.Nonce, sc.Method)
}

// =============================================================================

// Record represents a call as it's written to the journal once it has been
// executed successfully. The timestamp is the execution time assigned by
// the node.
type Record struct {
	Number    uint64     `json:"number"`
	Call      SignedCall `json:"call"`
	TimeStamp uint64     `json:"timestamp"`
}

// Hash returns the unique hash for the record.
func (r Record) Hash() string {
	if r.Number == 0 {
		return signature.ZeroHash
	}

	return signature.Hash(r)
}
