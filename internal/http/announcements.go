package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sujalbistaa/sonymous/internal/models"
)

type CreateAnnouncementInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsActive *bool  `json:"is_active"`
}

// UpdateAnnouncementInput accepts partial field sets; nil means "leave as is".
type UpdateAnnouncementInput struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"is_active"`
}

// GetAnnouncements handles GET /api/announcements: active ones only, newest
// first, no pagination.
func (e *Env) GetAnnouncements(c *gin.Context) {
	announcements := make([]models.Announcement, 0)
	if err := e.DB.
		Where("is_active = ?", true).
		Order("created_at desc").
		Find(&announcements).Error; err != nil {
		log.Printf("Error fetching announcements: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to fetch announcements.")
		return
	}
	respondData(c, http.StatusOK, announcements)
}

func (e *Env) CreateAnnouncement(c *gin.Context) {
	var input CreateAnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, map[string][]string{
			"title":   {"The title field is required."},
			"content": {"The content field is required."},
		})
		return
	}

	errs := map[string][]string{}
	if input.Title == "" {
		errs["title"] = append(errs["title"], "The title field is required.")
	} else if len([]rune(input.Title)) > 255 {
		errs["title"] = append(errs["title"], "The title field must not be greater than 255 characters.")
	}
	if input.Content == "" {
		errs["content"] = append(errs["content"], "The content field is required.")
	}
	if len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	announcement := models.Announcement{
		Title:   input.Title,
		Content: input.Content,
	}
	if input.IsActive != nil {
		announcement.IsActive = *input.IsActive
	}
	if err := e.DB.Create(&announcement).Error; err != nil {
		log.Printf("Error creating announcement: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to create announcement.")
		return
	}

	respondData(c, http.StatusCreated, announcement)
}

func (e *Env) UpdateAnnouncement(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusNotFound, "Announcement not found.")
		return
	}

	var announcement models.Announcement
	if err := e.DB.First(&announcement, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Announcement not found.")
			return
		}
		log.Printf("Error fetching announcement %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to update announcement.")
		return
	}

	var input UpdateAnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondValidation(c, map[string][]string{
			"title": {"The title field must be a string."},
		})
		return
	}

	if input.Title != nil && len([]rune(*input.Title)) > 255 {
		respondValidation(c, map[string][]string{
			"title": {"The title field must not be greater than 255 characters."},
		})
		return
	}

	updates := map[string]any{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) > 0 {
		if err := e.DB.Model(&announcement).Updates(updates).Error; err != nil {
			log.Printf("Error updating announcement %d: %v", id, err)
			respondError(c, http.StatusInternalServerError, "Failed to update announcement.")
			return
		}
	}

	respondData(c, http.StatusOK, announcement)
}

// DeleteAnnouncement removes the row outright; announcements have no
// soft-delete or expiry lifecycle.
func (e *Env) DeleteAnnouncement(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		respondError(c, http.StatusNotFound, "Announcement not found.")
		return
	}

	if err := e.DB.Delete(&models.Announcement{}, id).Error; err != nil {
		log.Printf("Error deleting announcement %d: %v", id, err)
		respondError(c, http.StatusInternalServerError, "Failed to delete announcement.")
		return
	}

	c.Status(http.StatusNoContent)
}
