package cache

// Keyer derives cache keys from run inputs.
type Keyer interface {
	// PlanKey keys a drawn plan by graph hash and run options.
	PlanKey(graphHash string, opts PlanKeyOpts) string
}

// PlanKeyOpts are the run options that change a plan.
type PlanKeyOpts struct {
	NumDistricts     int    `json:"num_districts"`
	AllowedDeviation int    `json:"allowed_deviation"`
	Seed             uint64 `json:"seed"`
	Strategy         string `json:"strategy"`
	SeedPolicy       string `json:"seed_policy"`
	MaxBalanceRounds int    `json:"max_balance_rounds"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// PlanKey returns "plan:" followed by a hash of the graph hash and options.
func (DefaultKeyer) PlanKey(graphHash string, opts PlanKeyOpts) string {
	return hashKey("plan", graphHash, opts)
}
