package pricing

import (
	"fmt"
	"strings"
)

// Model selects a pricing model.
type Model string

const (
	ModelBlackScholes Model = "black-scholes" // closed-form analytic model
	ModelBinomial     Model = "binomial"      // Cox-Ross-Rubinstein lattice
)

// Models lists the supported models in display order.
var Models = []Model{ModelBlackScholes, ModelBinomial}

// ParseModel resolves a model name or one of its aliases, ignoring case.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black-scholes", "blackscholes", "bs", "bsm", "analytic":
		return ModelBlackScholes, nil
	case "binomial", "binomial-tree", "crr", "lattice":
		return ModelBinomial, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownModel)
}

// Price computes the call/put pair for params under model. It is the only
// dispatch point: point prices and grid cells both go through here.
func Price(model Model, params MarketParameters) (PriceResult, error) {
	switch model {
	case ModelBlackScholes:
		return BlackScholesPrice(params)
	case ModelBinomial:
		call, err := BinomialPrice(params, Call)
		if err != nil {
			return PriceResult{}, err
		}
		put, err := BinomialPrice(params, Put)
		if err != nil {
			return PriceResult{}, err
		}
		return newPriceResult(call, put), nil
	}
	return PriceResult{}, fmt.Errorf("%q: %w", model, ErrUnknownModel)
}

// PriceSide is Price projected to one side.
func PriceSide(model Model, params MarketParameters, side OptionSide) (float64, error) {
	res, err := Price(model, params)
	if err != nil {
		return 0, err
	}
	return res.Side(side), nil
}
