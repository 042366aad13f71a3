package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidstream-live-public/internal/auth"
	"github.com/vidstream-live-public/pkg/logger"
)

type Handler struct {
	pool *pgxpool.Pool
	auth *auth.Service
	log  logger.Logger
}

func NewHandler(pool *pgxpool.Pool, authSvc *auth.Service, logg logger.Logger) *Handler {
	return &Handler{pool: pool, auth: authSvc, log: logg.WithModule("http")}
}

// Login exchanges credentials for the JWT the real-time hubs expect. Identity
// itself lives with the platform's account service; this endpoint only covers
// local development and the token path.
func (h *Handler) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	var (
		userID int64
		hashed string
	)
	err := h.pool.QueryRow(ctx, `SELECT id, password FROM users WHERE email = $1`, req.Email).Scan(&userID, &hashed)
	if errors.Is(err, pgx.ErrNoRows) {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hashed), []byte(req.Password)) != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.auth.Sign(userID)
	if err != nil {
		h.log.Errorf("sign token for user=%d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"userId": userID, "token": token})
}

// VerifyToken confirms the caller's token is still valid.
func (h *Handler) VerifyToken(ctx *gin.Context) {
	userID := ctx.GetInt64("userId")
	ctx.JSON(http.StatusOK, gin.H{"userId": userID, "valid": true})
}

func (h *Handler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
