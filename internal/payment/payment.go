package payment

import (
	"time"

	"github.com/google/uuid"
)

type Purchase struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	Product       string    `json:"product" db:"product"`
	Amount        *string   `json:"amount" db:"amount"`
	Currency      *string   `json:"currency" db:"currency"`
	Status        string    `json:"status" db:"status"`
	PurchasedAt   time.Time `json:"purchased_at" db:"purchased_at"`
}

type Price struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Interval    string `json:"interval"`
}

type CreateTransactionRequest struct {
	PriceID string `json:"priceId" validate:"required"`
}

type CheckoutResponse struct {
	TransactionID string `json:"transactionId"`
	CheckoutURL   string `json:"checkoutUrl"`
}
