// Package multiples selects revenue/EV-EBIT/EV-EBITDA/P-E valuation multiples
// from industry, company size and profitability. The selector is a pure,
// table-driven function: the industry buckets live in data, not in branching
// code, so the whole policy can be overridden from configuration and
// property-tested for determinism.
package multiples

// BaseMultiples are the unadjusted multiples for one industry bucket.
type BaseMultiples struct {
	Revenue  float64 `yaml:"revenue"`
	EVEBIT   float64 `yaml:"ev_ebit"`
	EVEBITDA float64 `yaml:"ev_ebitda"`
	PE       float64 `yaml:"p_e"`
}

// Bucket is one industry classification row. Keywords are matched against the
// lowercased industry string in table order; the first bucket with a hit wins.
type Bucket struct {
	Name     string        `yaml:"name"`
	Keywords []string      `yaml:"keywords"`
	Base     BaseMultiples `yaml:"base"`
}

// Table is the full selection policy: ordered buckets plus the generic
// fallback applied when no keyword matches.
type Table struct {
	Buckets []Bucket      `yaml:"buckets"`
	Generic BaseMultiples `yaml:"generic"`
}

// Size and profitability thresholds. Fixed policy constants, not derived from
// a documented source; they must not be "improved" when touched.
const (
	largeRevenueThreshold = 10_000_000
	smallRevenueThreshold = 1_000_000
	highMarginThreshold   = 20.0 // EBITDA margin, percent
	lowMarginThreshold    = 5.0
)

// DefaultTable returns the built-in selection policy. A yaml override from
// config replaces bucket rows wholesale but the shipped defaults are the
// authoritative baseline.
func DefaultTable() Table {
	return Table{
		Buckets: []Bucket{
			{
				Name:     "technology",
				Keywords: []string{"technology", "software", "it", "tech", "saas"},
				Base:     BaseMultiples{Revenue: 1.5, EVEBIT: 12, EVEBITDA: 10, PE: 15},
			},
			{
				Name:     "services",
				Keywords: []string{"services", "service", "consulting"},
				Base:     BaseMultiples{Revenue: 1.0, EVEBIT: 7, EVEBITDA: 5, PE: 9},
			},
			{
				Name:     "manufacturing",
				Keywords: []string{"manufacturing", "production", "industrial"},
				Base:     BaseMultiples{Revenue: 0.7, EVEBIT: 6, EVEBITDA: 5, PE: 8},
			},
			{
				Name:     "construction",
				Keywords: []string{"construction", "building"},
				Base:     BaseMultiples{Revenue: 0.5, EVEBIT: 5, EVEBITDA: 4, PE: 7},
			},
		},
		Generic: BaseMultiples{Revenue: 0.8, EVEBIT: 8, EVEBITDA: 6, PE: 10},
	}
}
