package services

import (
	"context"
	"fmt"
	"os"

	paddle "github.com/PaddleHQ/paddle-go-sdk"
	"github.com/google/uuid"

	"scoutlineAPI/internal/apperr"
	"scoutlineAPI/internal/payment"
)

type PaymentService struct {
	db     DB
	Paddle *paddle.SDK
}

func NewPaymentService(db DB, client *paddle.SDK) *PaymentService {
	return &PaymentService{db: db, Paddle: client}
}

// ListPrices pulls the active catalog from Paddle.
func (s *PaymentService) ListPrices(ctx context.Context) ([]*payment.Price, error) {
	req := &paddle.ListPricesRequest{
		Status: []string{string(paddle.StatusActive)},
	}

	collection, err := s.Paddle.ListPrices(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list paddle prices: %w", err)
	}

	var prices []*payment.Price
	for {
		result := collection.Next(ctx)
		if !result.Ok() {
			if err := result.Err(); err != nil {
				return nil, fmt.Errorf("failed to iterate paddle prices: %w", err)
			}
			break
		}

		p := result.Value()
		interval := ""
		if p.BillingCycle != nil {
			interval = string(p.BillingCycle.Interval)
		}
		prices = append(prices, &payment.Price{
			ID:          p.ID,
			ProductID:   p.ProductID,
			Description: p.Description,
			Amount:      p.UnitPrice.Amount,
			Currency:    string(p.UnitPrice.CurrencyCode),
			Interval:    interval,
		})
	}

	if prices == nil {
		prices = []*payment.Price{}
	}
	return prices, nil
}

// CreateCheckout starts a Paddle transaction carrying our user ID so the
// webhook can attribute the payment later.
func (s *PaymentService) CreateCheckout(ctx context.Context, userID, priceID string) (*payment.CheckoutResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	successURL := "scoutline://payment-success"
	createReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{
			*paddle.NewCreateTransactionItemsCatalogItem(&paddle.CatalogItem{
				Quantity: 1,
				PriceID:  priceID,
			}),
		},
		CustomData: paddle.CustomData{
			"userId": userID,
		},
		CollectionMode: paddle.PtrTo(paddle.CollectionModeAutomatic),
		Checkout: &paddle.TransactionCheckout{
			URL: &successURL,
		},
	}

	tx, err := s.Paddle.CreateTransaction(ctx, createReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	checkoutEnv := "checkout"
	if os.Getenv("PADDLE_SANDBOX") == "true" {
		checkoutEnv = "sandbox-checkout"
	}

	return &payment.CheckoutResponse{
		TransactionID: tx.ID,
		CheckoutURL:   fmt.Sprintf("https://%s.paddle.com/checkout/custom?_ptxn=%s", checkoutEnv, tx.ID),
	}, nil
}

// RecordPurchase persists a completed Paddle transaction and marks the user
// premium in the same transaction.
func (s *PaymentService) RecordPurchase(ctx context.Context, userID, transactionID, product string, amount, currency *string) (*payment.Purchase, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	p := &payment.Purchase{
		ID:            uuid.New(),
		UserID:        userUUID,
		TransactionID: transactionID,
		Product:       product,
		Amount:        amount,
		Currency:      currency,
		Status:        "completed",
	}

	query := `
	INSERT INTO purchases (id, user_id, transaction_id, product, amount, currency, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (transaction_id) DO UPDATE SET status = EXCLUDED.status
	RETURNING id, purchased_at
	`

	err = tx.QueryRow(ctx, query,
		p.ID, p.UserID, p.TransactionID, p.Product, p.Amount, p.Currency, p.Status,
	).Scan(&p.ID, &p.PurchasedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperr.NotFoundf("user not found")
		}
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET premium = TRUE, updated_at = NOW() WHERE id = $1`, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock premium: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return p, nil
}

func (s *PaymentService) ListPurchases(ctx context.Context, userID string) ([]*payment.Purchase, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validationf("invalid user id")
	}

	query := `
	SELECT id, user_id, transaction_id, product, amount, currency, status, purchased_at
	FROM purchases
	WHERE user_id = $1
	ORDER BY purchased_at DESC
	`

	rows, err := s.db.Query(ctx, query, userUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*payment.Purchase
	for rows.Next() {
		p := &payment.Purchase{}
		err := rows.Scan(
			&p.ID, &p.UserID, &p.TransactionID, &p.Product, &p.Amount, &p.Currency, &p.Status, &p.PurchasedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if purchases == nil {
		purchases = []*payment.Purchase{}
	}
	return purchases, nil
}
