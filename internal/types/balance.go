package types

// Balance tracks a user's holdings in one asset. Held is the portion
// reserved by open orders; Available() never exceeds Actual.
type Balance struct {
	UserID string  `json:"user_id"`
	Asset  string  `json:"asset"`
	Actual float64 `json:"actual_balance"`
	Held   float64 `json:"held"`
}

// Available returns the balance usable for new orders
func (b *Balance) Available() float64 {
	return b.Actual - b.Held
}
