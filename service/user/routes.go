package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/andreyv-dev/ledger-service/cmd/logger"
	"github.com/andreyv-dev/ledger-service/cmd/models"
	"github.com/andreyv-dev/ledger-service/cmd/utils"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes sets up all user-related routes
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users", h.GetUsers).Methods("GET")
	router.HandleFunc("/users", h.CreateUser).Methods("POST")
	router.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	router.HandleFunc("/users/{id}", h.UpdateUser).Methods("PUT")
	router.HandleFunc("/users/{id}", h.DeleteUser).Methods("DELETE")
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string  `json:"username"`
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Balance  float64 `json:"balance"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("failed to hash password", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	// Balance is stored exactly as given; negative opening balances are not
	// rejected here.
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Balance:      req.Balance,
	}

	if err := h.db.Create(&user).Error; err != nil {
		logger.Log.Error("failed to create user", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error creating user")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.IDResponse{ID: user.ID})
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users := []models.User{}
	if err := h.db.Order("id").Find(&users).Error; err != nil {
		logger.Log.Error("failed to fetch users", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error fetching users")
		return
	}

	utils.WriteJSON(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
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
		utils.WriteError(w, http.StatusInternalServerError, "Error fetching user")
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

// UpdateUser applies a partial update: only fields present in the request
// body change, everything else keeps its stored value.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ParseIDParam(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req struct {
		Username *string  `json:"username"`
		Email    *string  `json:"email"`
		Password *string  `json:"password"`
		Balance  *float64 `json:"balance"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		logger.Log.Error("failed to fetch user", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error updating user")
		return
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Log.Error("failed to hash password", zap.Error(err))
			utils.WriteError(w, http.StatusInternalServerError, "Error updating user")
			return
		}
		user.PasswordHash = string(hash)
	}
	if req.Balance != nil {
		user.Balance = *req.Balance
	}

	if err := h.db.Save(&user).Error; err != nil {
		logger.Log.Error("failed to update user", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error updating user")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.MessageResponse{Message: "User updated successfully"})
}

// DeleteUser removes a user. Deletion is refused while any transaction still
// references the user as buyer or seller, so ledger history stays intact.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
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
		utils.WriteError(w, http.StatusInternalServerError, "Error deleting user")
		return
	}

	var refs int64
	if err := h.db.Model(&models.Transaction{}).
		Where("user_id = ? OR seller_id = ?", id, id).
		Count(&refs).Error; err != nil {
		logger.Log.Error("failed to count transactions", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	if refs > 0 {
		utils.WriteError(w, http.StatusConflict, "User is referenced by transactions and cannot be deleted")
		return
	}

	if err := h.db.Delete(&user).Error; err != nil {
		logger.Log.Error("failed to delete user", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "Error deleting user")
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.MessageResponse{Message: "User deleted successfully"})
}
