package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sujalbistaa/sonymous/internal/likeguard"
	"github.com/sujalbistaa/sonymous/internal/models"
	"github.com/sujalbistaa/sonymous/internal/ws"
)

const (
	maxContentLength = 200
	messageTTL       = 24 * time.Hour
	publicPerPage    = 12
	adminPerPage     = 50
)

// Env carries the handlers' dependencies. Now is injectable so tests can pin
// the clock for expiry checks.
type Env struct {
	DB     *gorm.DB
	Hub    *ws.Hub
	Guard  *likeguard.Guard
	Secret []byte
	Now    func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// visibleMessages scopes a query to what the public may see: not moderated
// away and not expired.
func (e *Env) visibleMessages() *gorm.DB {
	return e.DB.Model(&models.Message{}).
		Where("is_deleted = ?", false).
		Where("expires_at IS NULL OR expires_at > ?", e.now())
}

// WsMessage is the JSON frame pushed to websocket subscribers.
type WsMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type CreateMessageInput struct {
	Content  string  `json:"content"`
	Category *string `json:"category"`
}

// GetMessages handles GET /api/messages: visible messages, newest first,
// 12 per page, with an optional exact-match category filter.
func (e *Env) GetMessages(c *gin.Context) {
	page := parsePage(c.Query("page"))
	category := sanitizeFilter(c.Query("category"))

	query := func() *gorm.DB {
		q := e.visibleMessages()
		if category != "" {
			// An unknown category is not an error; it just matches nothing.
			q = q.Where("category = ?", category)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		log.Printf("Error counting messages: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch messages.")
		return
	}

	messages := make([]models.Message, 0, publicPerPage)
	if err := query().
		Order("created_at desc").
		Limit(publicPerPage).
		Offset((page - 1) * publicPerPage).
		Find(&messages).Error; err != nil {
		log.Printf("Error fetching messages: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch messages.")
		return
	}

	respondPage(c, messages, gin.H{
		"current_page": page,
		"last_page":    lastPage(total, publicPerPage),
		"total":        total,
	})
}

// CreateMessage handles POST /api/messages.
func (e *Env) CreateMessage(c *gin.Context) {
	var input CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, map[string][]string{
			"content": {"The content field is required."},
		})
		return
	}

	errs := map[string][]string{}
	if input.Content == "" {
		errs["content"] = append(errs["content"], "The content field is required.")
	} else if len([]rune(input.Content)) > maxContentLength {
		errs["content"] = append(errs["content"], "The content field must not be greater than 200 characters.")
	}
	category := input.Category
	if category != nil && *category == "" {
		category = nil
	}
	if category != nil && !models.ValidCategory(*category) {
		errs["category"] = append(errs["category"], "The selected category is invalid.")
	}
	if len(errs) > 0 {
		log.Printf("Message validation failed: %v", errs)
		respondValidation(c, errs)
		return
	}

	now := e.now()
	expires := now.Add(messageTTL)
	message := models.Message{
		Content:   stripTags(input.Content),
		IPHash:    hashAddr(c.ClientIP(), e.Secret),
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: &expires,
	}
	if err := e.DB.Create(&message).Error; err != nil {
		log.Printf("Error creating message: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to create message.")
		return
	}

	// Real-time updates are optional; a missing or broken hub never affects
	// the response.
	e.broadcast(WsMessage{Type: "new_message", Data: message})

	respondData(c, http.StatusCreated, message)
}

// LikeMessage handles POST /api/messages/:id/like. The guard's atomic add is
// what makes two concurrent likes from one identity count once.
func (e *Env) LikeMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusNotFound, "Message not found or has expired.")
		return
	}

	var message models.Message
	if err := e.visibleMessages().First(&message, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Expired, deleted and nonexistent are indistinguishable here.
			respondError(c, http.StatusNotFound, "Message not found or has expired.")
			return
		}
		log.Printf("Error fetching message %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to process like.")
		return
	}

	ipHash := hashAddr(c.ClientIP(), e.Secret)
	if !e.Guard.Add(likeguard.Key(message.ID, ipHash), messageTTL) {
		respondError(c, http.StatusTooManyRequests, "You have already liked this message.")
		return
	}

	if err := e.DB.Model(&message).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1)).Error; err != nil {
		log.Printf("Error incrementing likes for message %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to process like.")
		return
	}

	var fresh models.Message
	if err := e.DB.First(&fresh, message.ID).Error; err != nil {
		log.Printf("Error reloading message %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to process like.")
		return
	}

	respondData(c, http.StatusOK, gin.H{"likes_count": fresh.LikesCount})
}

// broadcast marshals and hands the frame to the hub. Failures are swallowed:
// delivery is best effort by contract.
func (e *Env) broadcast(msg WsMessage) {
	if e.Hub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshalling WS message: %v", err)
		return
	}
	select {
	case e.Hub.Broadcast <- payload:
	default:
	}
}

func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func lastPage(total int64, perPage int) int64 {
	last := (total + int64(perPage) - 1) / int64(perPage)
	if last < 1 {
		last = 1
	}
	return last
}
