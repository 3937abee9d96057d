package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/ids"
	"learnhub/api/internal/models"
	"learnhub/api/internal/repository"
)

func (h HandlerSet) ListBooks(c *gin.Context) {
	books, err := h.books.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list books failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]bookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, newBookResponse(b))
	}
	c.JSON(http.StatusOK, gin.H{"books": resp})
}

func (h HandlerSet) GetBook(c *gin.Context) {
	book, err := h.books.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	c.JSON(http.StatusOK, newBookResponse(book))
}

type bookRequest struct {
	Name        string  `form:"name" binding:"required"`
	Description string  `form:"description"`
	Price       float64 `form:"price"`
}

func (h HandlerSet) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book := models.Book{
		ID:          ids.New(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	}
	if header, err := c.FormFile("image"); err == nil {
		url, key, err := h.uploadImage(c, header, "books")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image_upload_failed"})
			return
		}
		book.ImageURL = url
		book.ImageKey = &key
	}

	if err := h.books.Create(c.Request.Context(), book); err != nil {
		h.removeObject(c, book.ImageKey)
		h.log.Error().Err(err).Msg("create book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
		return
	}

	c.JSON(http.StatusCreated, newBookResponse(book))
}

func (h HandlerSet) UpdateBook(c *gin.Context) {
	id := c.Param("id")

	var req bookRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, err := h.books.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	book := models.Book{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    existing.ImageURL,
		ImageKey:    existing.ImageKey,
	}
	var replacedKey *string
	if header, err := c.FormFile("image"); err == nil {
		url, key, err := h.uploadImage(c, header, "books")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "image_upload_failed"})
			return
		}
		replacedKey = existing.ImageKey
		book.ImageURL = url
		book.ImageKey = &key
	}

	updated, err := h.books.Update(c.Request.Context(), book)
	if err != nil {
		h.log.Error().Err(err).Str("book_id", id).Msg("update book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
		return
	}
	h.removeObject(c, replacedKey)

	c.JSON(http.StatusOK, newBookResponse(updated))
}

func (h HandlerSet) DeleteBook(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.books.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "book_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}

	if err := h.books.Delete(c.Request.Context(), id); err != nil {
		h.log.Error().Err(err).Str("book_id", id).Msg("delete book failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}
	h.removeObject(c, existing.ImageKey)

	c.JSON(http.StatusOK, gin.H{"message": "book deleted"})
}
