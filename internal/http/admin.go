package http

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sujalbistaa/sonymous/internal/models"
)

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// adminMessageView re-exposes is_deleted, which the public serialization
// hides.
type adminMessageView struct {
	models.Message
	IsDeleted bool `json:"is_deleted"`
}

// AdminLogin handles POST /api/admin/login. A fresh token revokes every
// previously issued one, so each admin has a single active session.
func (e *Env) AdminLogin(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, map[string][]string{
			"email":    {"The email field is required."},
			"password": {"The password field is required."},
		})
		return
	}

	errs := map[string][]string{}
	if input.Email == "" {
		errs["email"] = append(errs["email"], "The email field is required.")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errs["email"] = append(errs["email"], "The email field must be a valid email address.")
	}
	if input.Password == "" {
		errs["password"] = append(errs["password"], "The password field is required.")
	}
	if len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	var admin models.Admin
	err := e.DB.Where("email = ?", input.Email).First(&admin).Error
	if err == nil {
		err = bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password))
	}
	if err != nil {
		// Same answer whether the account or the password was wrong.
		log.Printf("Admin login failed for %s", input.Email)
		respondError(c, http.StatusUnauthorized, "Invalid credentials.")
		return
	}

	token, tokenHash, err := newToken()
	if err != nil {
		log.Printf("Error generating admin token: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to log in.")
		return
	}

	err = e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("admin_id = ?", admin.ID).
			Delete(&models.AdminToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.AdminToken{AdminID: admin.ID, TokenHash: tokenHash}).Error
	})
	if err != nil {
		log.Printf("Error issuing admin token: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to log in.")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"token": token,
		"admin": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
		},
	})
}

// AdminGetMessages handles GET /api/admin/messages: every message including
// soft-deleted ones, newest first, 50 per page, with optional category and
// is_deleted filters.
func (e *Env) AdminGetMessages(c *gin.Context) {
	page := parsePage(c.Query("page"))
	category := sanitizeFilter(c.Query("category"))
	isDeleted := parseBoolish(c.Query("is_deleted"))

	query := func() *gorm.DB {
		q := e.DB.Model(&models.Message{})
		if category != "" {
			q = q.Where("category = ?", category)
		}
		if isDeleted != nil {
			q = q.Where("is_deleted = ?", *isDeleted)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		log.Printf("Error counting messages for admin: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch messages.")
		return
	}

	var messages []models.Message
	if err := query().
		Order("created_at desc").
		Limit(adminPerPage).
		Offset((page - 1) * adminPerPage).
		Find(&messages).Error; err != nil {
		log.Printf("Error fetching messages for admin: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch messages.")
		return
	}

	views := make([]adminMessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, adminMessageView{Message: m, IsDeleted: m.IsDeleted})
	}

	respondPage(c, views, gin.H{
		"current_page": page,
		"last_page":    lastPage(total, adminPerPage),
		"per_page":     adminPerPage,
		"total":        total,
	})
}

// AdminDestroyMessage handles DELETE /api/admin/messages/:id. Soft delete:
// the row stays until the expiry sweep removes it.
func (e *Env) AdminDestroyMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusNotFound, "Message not found.")
		return
	}

	var message models.Message
	if err := e.DB.First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Message not found.")
			return
		}
		log.Printf("Error fetching message %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to delete message.")
		return
	}

	if message.IsDeleted {
		respondError(c, http.StatusConflict, "Message is already deleted.")
		return
	}

	if err := e.DB.Model(&message).Update("is_deleted", true).Error; err != nil {
		log.Printf("Error soft-deleting message %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to delete message.")
		return
	}

	admin := currentAdmin(c)
	log.Printf("Admin moderation: message deleted admin_id=%d admin_email=%s message_id=%d action=soft_delete",
		admin.ID, admin.Email, message.ID)

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Message has been deleted.",
		"data":    gin.H{"id": message.ID, "is_deleted": true},
	})
}

// newToken returns a fresh opaque bearer token and the SHA-256 digest that
// gets persisted. The plaintext is only ever returned to the caller once.
func newToken() (plain, hash string, err error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plain = hex.EncodeToString(buf)
	return plain, hashToken(plain), nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// parseBoolish accepts the usual truthy/falsy string forms. Anything else
// yields nil and the filter is ignored.
func parseBoolish(raw string) *bool {
	v := true
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "on", "yes":
	case "0", "false", "off", "no":
		v = false
	default:
		return nil
	}
	return &v
}

func currentAdmin(c *gin.Context) models.Admin {
	if v, ok := c.Get(adminContextKey); ok {
		if admin, ok := v.(models.Admin); ok {
			return admin
		}
	}
	return models.Admin{}
}
