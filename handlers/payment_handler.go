package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk"

	"scoutlineAPI/internal/payment"
	"scoutlineAPI/middleware"
	"scoutlineAPI/services"
)

type PaymentHandler struct {
	paymentService *services.PaymentService
}

func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	prices, err := h.paymentService.ListPrices(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, prices)
}

func (h *PaymentHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 120*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req payment.CreateTransactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondServiceError(w, err)
		return
	}

	checkout, err := h.paymentService.CreateCheckout(ctx, userID, req.PriceID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, checkout)
}

func (h *PaymentHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	purchases, err := h.paymentService.ListPurchases(ctx, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, purchases)
}

// PaddleWebhook receives signed Paddle events. Completed transactions are
// recorded and unlock premium for the user carried in custom_data.
func (h *PaymentHandler) PaddleWebhook(w http.ResponseWriter, r *http.Request) {
	secret := os.Getenv("PADDLE_WEBHOOK_SECRET")
	if secret == "" {
		log.Println("PADDLE_WEBHOOK_SECRET missing")
		http.Error(w, "Configuration Error", http.StatusInternalServerError)
		return
	}

	verifier := paddle.NewWebhookVerifier(secret)
	valid, err := verifier.Verify(r)
	if err != nil {
		http.Error(w, "Verification failed", http.StatusInternalServerError)
		return
	}
	if !valid {
		http.Error(w, "Invalid signature", http.StatusForbidden)
		return
	}

	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Unable to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var event struct {
		EventID   string               `json:"event_id"`
		EventType paddle.EventTypeName `json:"event_type"`
	}
	if err := json.Unmarshal(bodyBytes, &event); err != nil {
		http.Error(w, "Unable to parse JSON", http.StatusBadRequest)
		return
	}

	switch event.EventType {
	case paddle.EventTypeNameTransactionCompleted, paddle.EventTypeNameTransactionPaid:
		var full struct {
			Data paddle.Transaction `json:"data"`
		}
		if err := json.Unmarshal(bodyBytes, &full); err != nil {
			log.Printf("Error parsing transaction event: %v", err)
			break
		}

		userID, _ := full.Data.CustomData["userId"].(string)
		if userID == "" {
			log.Printf("Transaction %s has no userId in custom data", full.Data.ID)
			break
		}

		product := "scout-subscription"
		if p, ok := full.Data.CustomData["product"].(string); ok && p != "" {
			product = p
		}

		var amount, currency *string
		if full.Data.Details.Totals.GrandTotal != "" {
			amount = &full.Data.Details.Totals.GrandTotal
			cur := string(full.Data.Details.Totals.CurrencyCode)
			currency = &cur
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		if _, err := h.paymentService.RecordPurchase(ctx, userID, full.Data.ID, product, amount, currency); err != nil {
			log.Printf("Failed to record purchase for transaction %s: %v", full.Data.ID, err)
			http.Error(w, "Failed to record purchase", http.StatusInternalServerError)
			return
		}
		log.Printf("Recorded purchase for user %s, transaction %s", userID, full.Data.ID)

	default:
		log.Printf("Unhandled paddle event type: %s", event.EventType)
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"id": event.EventID})
}
