package storefront

import (
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"
)

// Seeder supplies rating and review count for a product id. It stands in
// for review data the data service does not expose.
type Seeder interface {
	Seed(productID string) (rating float64, reviewCount int)
}

// DemoSeeder derives demo ratings from the seed and the product id, so the
// same catalog always maps to the same numbers.
type DemoSeeder struct {
	seed uint64
}

func NewDemoSeeder(seed uint64) DemoSeeder {
	return DemoSeeder{seed: seed}
}

func (d DemoSeeder) Seed(productID string) (float64, int) {
	r := rand.New(rand.NewSource(int64(xxhash.Sum64String(productID) ^ d.seed)))
	rating := math.Min(5, math.Max(3, 4+(r.Float64()-0.5)))
	reviews := r.Intn(50) + 5
	return rating, reviews
}
