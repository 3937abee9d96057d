package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/repository"
	"learnhub/api/internal/service"
)

func (h HandlerSet) ListSubcategories(c *gin.Context) {
	subcategories, err := h.subcategories.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list subcategories failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]subcategoryResponse, 0, len(subcategories))
	for _, s := range subcategories {
		resp = append(resp, newSubcategoryResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"subcategories": resp})
}

// CheckDuplicateSubcategory answers the admin form's live validation:
// does this name already exist inside the category? An id query param
// excludes the row being edited.
func (h HandlerSet) CheckDuplicateSubcategory(c *gin.Context) {
	name := c.Query("name")
	categoryID := c.Query("categoryId")
	if name == "" || categoryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and categoryId are required"})
		return
	}

	exists, err := h.subcategories.ExistsDuplicate(c.Request.Context(), name, categoryID, c.Query("id"))
	if err != nil {
		h.log.Error().Err(err).Msg("duplicate check failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "check_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

func (h HandlerSet) GetSubcategory(c *gin.Context) {
	subcategory, err := h.subcategories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSubcategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subcategory_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get subcategory failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	c.JSON(http.StatusOK, newSubcategoryResponse(subcategory))
}

func (h HandlerSet) ListSubcategoryVideos(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.subcategories.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrSubcategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "subcategory_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get subcategory failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	videos, err := h.videos.ListBySubcategory(c.Request.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Msg("list videos failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		resp = append(resp, newVideoResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"videos": resp})
}

type subcategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CategoryID  string `json:"categoryId" binding:"required"`
}

func (h HandlerSet) CreateSubcategory(c *gin.Context) {
	var req subcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subcategory, err := h.catalogService.CreateSubcategory(c.Request.Context(), service.SubcategoryInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
		case errors.Is(err, repository.ErrSubcategoryExists):
			c.JSON(http.StatusConflict, gin.H{"error": "subcategory_name_taken"})
		default:
			h.log.Error().Err(err).Msg("create subcategory failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		}
		return
	}

	c.JSON(http.StatusCreated, newSubcategoryResponse(subcategory))
}

func (h HandlerSet) UpdateSubcategory(c *gin.Context) {
	var req subcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subcategory, err := h.catalogService.UpdateSubcategory(c.Request.Context(), c.Param("id"), service.SubcategoryInput{
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
		case errors.Is(err, repository.ErrSubcategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "subcategory_not_found"})
		case errors.Is(err, repository.ErrSubcategoryExists):
			c.JSON(http.StatusConflict, gin.H{"error": "subcategory_name_taken"})
		default:
			h.log.Error().Err(err).Msg("update subcategory failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, newSubcategoryResponse(subcategory))
}

// DeleteSubcategory refuses while videos still reference the node.
func (h HandlerSet) DeleteSubcategory(c *gin.Context) {
	id := c.Param("id")

	if err := h.catalogService.DeleteSubcategory(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrSubcategoryHasChildren):
			c.JSON(http.StatusBadRequest, gin.H{"error": "subcategory_has_videos"})
		case errors.Is(err, repository.ErrSubcategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "subcategory_not_found"})
		default:
			h.log.Error().Err(err).Str("subcategory_id", id).Msg("delete subcategory failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "subcategory deleted"})
}
