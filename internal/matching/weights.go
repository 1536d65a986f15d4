package matching

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Tiers maps an overlap size onto points: exactly one common item, two to six, more than six.
type Tiers struct {
	One  int `mapstructure:"one" validate:"gte=0"`
	Few  int `mapstructure:"few" validate:"gte=0"`
	Many int `mapstructure:"many" validate:"gte=0"`
}

func (t Tiers) Points(n int) int {
	switch {
	case n == 1:
		return t.One
	case n >= 2 && n <= 6:
		return t.Few
	case n > 6:
		return t.Many
	default:
		return 0
	}
}

// Weights holds per-field tiers for the free-text comparators.
type Weights struct {
	Activities Tiers `mapstructure:"activities"`
	Interests  Tiers `mapstructure:"interests"`
	InspiredBy Tiers `mapstructure:"inspired-by"`
	Music      Tiers `mapstructure:"music"`
	Movies     Tiers `mapstructure:"movies"`
	TV         Tiers `mapstructure:"tv"`
	Books      Tiers `mapstructure:"books"`
	Games      Tiers `mapstructure:"games"`
}

// DefaultWeights favours activities and interests over the rest.
func DefaultWeights() Weights {
	return Weights{
		Activities: Tiers{One: 2, Few: 4, Many: 6},
		Interests:  Tiers{One: 2, Few: 4, Many: 6},
		InspiredBy: Tiers{One: 1, Few: 2, Many: 3},
		Music:      Tiers{One: 2, Few: 3, Many: 4},
		Movies:     Tiers{One: 2, Few: 3, Many: 4},
		TV:         Tiers{One: 1, Few: 2, Many: 3},
		Books:      Tiers{One: 1, Few: 2, Many: 3},
		Games:      Tiers{One: 1, Few: 2, Many: 3},
	}
}

func (w Weights) Validate() error {
	if err := validator.New().Struct(w); err != nil {
		return fmt.Errorf("invalid ranking weights: %w", err)
	}
	return nil
}
