package shipping

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedMethod is returned for blank or unrecognized method codes.
var ErrUnsupportedMethod = errors.New("unsupported shipping method")

// strategies holds every known strategy in the stable order reported by
// Codes. Adding a shipping method means appending a new entry here.
var strategies = []Strategy{
	groundStrategy{},
	airStrategy{},
}

// New resolves a method code to its strategy. Matching is case-insensitive
// and ignores surrounding whitespace.
func New(code string) (Strategy, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, fmt.Errorf("%w: code is empty", ErrUnsupportedMethod)
	}
	for _, s := range strategies {
		if s.Code() == normalized {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, code)
}

// All returns every known strategy in the same stable order as Codes.
func All() []Strategy {
	out := make([]Strategy, len(strategies))
	copy(out, strategies)
	return out
}

// Codes returns the known method codes in stable order.
func Codes() []string {
	codes := make([]string, len(strategies))
	for i, s := range strategies {
		codes[i] = s.Code()
	}
	return codes
}

// IsSupported reports whether the code resolves to a known strategy. It
// never errors, including for blank input.
func IsSupported(code string) bool {
	_, err := New(code)
	return err == nil
}

// Quote is a priced shipping estimate for a given subtotal.
type Quote struct {
	Method      string          `json:"method"`
	Description string          `json:"description"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Fee         decimal.Decimal `json:"fee"`
	Total       decimal.Decimal `json:"total"`
}

// QuoteFor computes the fee and subtotal+fee total for a method code.
func QuoteFor(code string, subtotal decimal.Decimal) (*Quote, error) {
	strategy, err := New(code)
	if err != nil {
		return nil, err
	}
	fee, err := strategy.Fee(subtotal)
	if err != nil {
		return nil, err
	}
	return &Quote{
		Method:      strategy.Code(),
		Description: strategy.Description(),
		Subtotal:    subtotal,
		Fee:         fee,
		Total:       subtotal.Add(fee),
	}, nil
}
