package strategy

import (
	"fmt"
	"sort"

	"github.com/qtsys/quant/config"
)

// Factory constructs a strategy from its aggregation weight and a parameter
// map; absent parameters take the strategy's defaults.
type Factory func(weight float64, params map[string]float64) (Strategy, error)

// Registry holds a named collection of strategy factories so strategies can
// be built from configuration.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous entry.
func (r *Registry) Register(name string, f Factory) {
	r.factories[name] = f
}

// Build constructs the named strategy.
func (r *Registry) Build(name string, weight float64, params map[string]float64) (Strategy, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return f(weight, params)
}

// List returns the sorted registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FromConfig builds every configured strategy in order.
func (r *Registry) FromConfig(cfgs []config.StrategyConfig) ([]Strategy, error) {
	out := make([]Strategy, 0, len(cfgs))
	for _, cfg := range cfgs {
		s, err := r.Build(cfg.Name, cfg.Weight, cfg.Params)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// DefaultRegistry returns a registry with the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("MovingAverageCrossover", func(weight float64, params map[string]float64) (Strategy, error) {
		return NewMACross(
			int(param(params, "short_window", 5)),
			int(param(params, "long_window", 20)),
			param(params, "buy_fraction", 0.1),
			param(params, "sell_fraction", 0.5),
			weight,
		), nil
	})
	r.Register("RSI", func(weight float64, params map[string]float64) (Strategy, error) {
		return NewRSI(
			int(param(params, "window", 14)),
			param(params, "overbought", 70),
			param(params, "oversold", 30),
			param(params, "buy_fraction", 0.05),
			param(params, "sell_fraction", 0.3),
			weight,
		), nil
	})
	return r
}

func param(params map[string]float64, key string, def float64) float64 {
	if v, ok := params[key]; ok {
		return v
	}
	return def
}
