package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andreyv-dev/ledger-service/cmd/logger"
	"github.com/andreyv-dev/ledger-service/cmd/models"
	"github.com/andreyv-dev/ledger-service/cmd/utils"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes sets up all transaction-related routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", h.GetTransactions).Methods("GET")
	router.HandleFunc("/transactions", h.CreateTransaction).Methods("POST")
	router.HandleFunc("/transactions/{id}", h.DeleteTransaction).Methods("DELETE")
	router.HandleFunc("/users/{id}/transactions", h.GetUserTransactions).Methods("GET")
}

// Transfer moves itemPrice from the buyer to the seller and records the
// transaction, all inside one database transaction. The balance check is
// part of the debit statement (balance >= price in the WHERE clause), so
// two concurrent transfers against the same buyer cannot both pass it:
// the loser affects zero rows and the whole transfer rolls back.
//
// Returns gorm.ErrRecordNotFound if either user does not exist and
// ErrInsufficientBalance if the buyer cannot cover the price. Buyer and
// seller may be the same user; the movement then nets to zero.
func (h *Handler) Transfer(userID, sellerID uint, itemName string, itemPrice float64, transactionType string) (*models.Transaction, error) {
	transaction := &models.Transaction{
		Reference:       uuid.NewString(),
		UserID:          userID,
		SellerID:        sellerID,
		ItemName:        itemName,
		ItemPrice:       itemPrice,
		TransactionType: transactionType,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var buyer models.User
		if err := tx.First(&buyer, userID).Error; err != nil {
			return err
		}

		var seller models.User
		if err := tx.First(&seller, sellerID).Error; err != nil {
			return err
		}

		debit := tx.Model(&models.User{}).
			Where("id = ? AND balance >= ?", userID, itemPrice).
			Update("balance", gorm.Expr("balance - ?", itemPrice))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		credit := tx.Model(&models.User{}).
			Where("id = ?", sellerID).
			Update("balance", gorm.Expr("balance + ?", itemPrice))
		if credit.Error != nil {
			return credit.Error
		}

		return tx.Create(transaction).Error
	})
	if err != nil {
		return nil, err
	}

	return transaction, nil
}

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID          uint    `json:"user_id"`
		SellerID        uint    `json:"seller_id"`
		ItemName        string  `json:"item_name"`
		ItemPrice       float64 `json:"item_price"`
		TransactionType string  `json:"transaction_type"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.UserID == 0 || req.SellerID == 0 {
		utils.WriteError(w, http.StatusBadRequest, "user_id and seller_id are required")
		return
	}
	if req.ItemName == "" || req.TransactionType == "" {
		utils.WriteError(w, http.StatusBadRequest, "item_name and transaction_type are required")
		return
	}
	if req.ItemPrice <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "item_price must be positive")
		return
	}

	transaction, err := h.Transfer(req.UserID, req.SellerID, req.ItemName, req.ItemPrice, req.TransactionType)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			utils.WriteError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, ErrInsufficientBalance):
			utils.WriteError(w, http.StatusBadRequest, "Insufficient balance")
		default:
			logger.Log.Error("transfer failed", zap.Error(err),
				zap.Uint("buyer", req.UserID), zap.Uint("seller", req.SellerID))
			utils.WriteError(w, http.StatusInternalServerError, "Error creating transaction")
		}
		return
	}

	logger.Log.Info("transfer completed",
		zap.Uint("transaction", transaction.ID),
		zap.Uint("buyer", req.UserID),
		zap.Uint("seller", req.SellerID),
		zap.Float64("amount", req.ItemPrice))

	utils.WriteJSON(w, http.StatusCreated, utils.IDResponse{ID: transaction.ID})
}

func (h *Handler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	transactions := []models.Transaction{}
	if err := h.db.Order("id").Find(&transactions).Error; err != nil {
		logger.Log.Error("failed to fetch transactions", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error fetching transactions")
		return
	}

	utils.WriteJSON(w, http.StatusOK, transactions)
}

// GetUserTransactions lists the transactions where the user is the buyer.
func (h *Handler) GetUserTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseIDParam(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Log.Error("failed to fetch user", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error fetching transactions")
		return
	}

	transactions := []models.Transaction{}
	if err := h.db.Where("user_id = ?", id).Order("id").Find(&transactions).Error; err != nil {
		logger.Log.Error("failed to fetch transactions", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error fetching transactions")
		return
	}

	utils.WriteJSON(w, http.StatusOK, transactions)
}

// DeleteTransaction removes the record only. The balance movement it
// recorded is NOT reversed; the debit and credit are permanent. A real
// ledger would post a compensating entry instead, but the published
// contract of this service is plain deletion.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseIDParam(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	var transaction models.Transaction
	if err := h.db.First(&transaction, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		logger.Log.Error("failed to fetch transaction", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error deleting transaction")
		return
	}

	if err := h.db.Delete(&transaction).Error; err != nil {
		logger.Log.Error("failed to delete transaction", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error deleting transaction")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.MessageResponse{Message: "Transaction deleted successfully"})
}
