package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/repository"
	"learnhub/api/internal/service"
)

func (h HandlerSet) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list categories failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		resp = append(resp, newCategoryResponse(cat))
	}
	c.JSON(http.StatusOK, gin.H{"categories": resp})
}

func (h HandlerSet) GetCategory(c *gin.Context) {
	category, err := h.categories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	c.JSON(http.StatusOK, newCategoryResponse(category))
}

func (h HandlerSet) ListCategorySubcategories(c *gin.Context) {
	id := c.Param("id")

	if _, err := h.categories.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	subcategories, err := h.subcategories.ListByCategory(c.Request.Context(), id)
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

type categoryRequest struct {
	Name        string `form:"name" json:"name" binding:"required"`
	Description string `form:"description" json:"description"`
}

// CreateCategory accepts a multipart form with an optional cover image.
func (h HandlerSet) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	}
	if header, err := c.FormFile("image"); err == nil {
		url, key, err := h.uploadImage(c, header, "categories")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image_upload_failed"})
			return
		}
		input.ImageURL = url
		input.ImageKey = &key
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), input)
	if err != nil {
		h.removeObject(c, input.ImageKey)
		if errors.Is(err, repository.ErrCategoryExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "category_name_taken"})
			return
		}
		h.log.Error().Err(err).Msg("create category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(category))
}

func (h HandlerSet) UpdateCategory(c *gin.Context) {
	id := c.Param("id")

	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	input := service.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    existing.ImageURL,
		ImageKey:    existing.ImageKey,
	}
	var replacedKey *string
	if header, err := c.FormFile("image"); err == nil {
		url, key, err := h.uploadImage(c, header, "categories")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image_upload_failed"})
			return
		}
		replacedKey = existing.ImageKey
		input.ImageURL = url
		input.ImageKey = &key
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, input)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "category_name_taken"})
			return
		}
		h.log.Error().Err(err).Msg("update category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}
	h.removeObject(c, replacedKey)

	c.JSON(http.StatusOK, newCategoryResponse(category))
}

// DeleteCategory refuses while subcategories still reference the node.
func (h HandlerSet) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrCategoryHasChildren) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "category_has_subcategories"})
			return
		}
		h.log.Error().Err(err).Str("category_id", id).Msg("delete category failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	h.removeObject(c, existing.ImageKey)

	c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
}
