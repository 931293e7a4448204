package generator

// Config drives the synthetic request generator.
type Config struct {
	NumRequests int
	// RepeatCustomerChance is the probability an order reuses an earlier customer.
	RepeatCustomerChance float64
	// UnlistedMethodChance is the probability of a payment method with no
	// registered processor.
	UnlistedMethodChance float64
	// IncompleteChance is the probability the payment details are omitted.
	IncompleteChance float64
	Seed             int64
}

// DefaultConfig returns baseline settings for local load runs.
func DefaultConfig() Config {
	return Config{
		NumRequests:          100,
		RepeatCustomerChance: 0.3,
		UnlistedMethodChance: 0.1,
		IncompleteChance:     0,
		Seed:                 42,
	}
}
