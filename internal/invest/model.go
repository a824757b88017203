package invest

import "time"

// Position is one investment purchase. Positions are append-only; repeated
// investments in the same instrument create new rows.
type Position struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	InstrumentType string    `gorm:"not null" json:"type"`
	Amount         float64   `gorm:"not null" json:"amount"`
	Units          float64   `gorm:"not null" json:"units"`
	PurchasePrice  float64   `gorm:"not null" json:"purchase_price"`
	PurchaseDate   time.Time `json:"purchase_date"`
}

// TableName keeps the table name aligned with the seeded demo database.
func (Position) TableName() string {
	return "portfolio"
}

// Holding aggregates all positions of one instrument with current valuation.
type Holding struct {
	Type             string  `json:"type"`
	InvestedAmount   float64 `json:"invested_amount"`
	CurrentValue     float64 `json:"current_value"`
	Units            float64 `json:"units"`
	AvgPurchasePrice float64 `json:"avg_purchase_price"`
	CurrentPrice     float64 `json:"current_price"`
	Returns          float64 `json:"returns"`
	ReturnPercentage float64 `json:"return_percentage"`
}

// Portfolio is the valued view of a user's holdings.
type Portfolio struct {
	TotalInvested    float64   `json:"total_invested"`
	CurrentValue     float64   `json:"current_value"`
	TotalReturn      float64   `json:"total_return"`
	ReturnPercentage float64   `json:"return_percentage"`
	Investments      []Holding `json:"investments"`
}
