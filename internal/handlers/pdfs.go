package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/api/internal/repository"
	"learnhub/api/internal/service"
)

func (h HandlerSet) ListPDFs(c *gin.Context) {
	pdfs, err := h.pdfs.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list pdfs failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}

	resp := make([]pdfResponse, 0, len(pdfs))
	for _, p := range pdfs {
		resp = append(resp, newPDFResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"pdfs": resp})
}

func (h HandlerSet) GetPDF(c *gin.Context) {
	pdf, err := h.pdfs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPDFNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pdf_not_found"})
			return
		}
		h.log.Error().Err(err).Msg("get pdf failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	c.JSON(http.StatusOK, newPDFResponse(pdf))
}

type pdfRequest struct {
	Title         string  `form:"title" binding:"required"`
	Description   string  `form:"description"`
	CategoryID    string  `form:"categoryId" binding:"required"`
	SubcategoryID string  `form:"subcategoryId" binding:"required"`
	Price         float64 `form:"price"`
}

func (h HandlerSet) CreatePDF(c *gin.Context) {
	var req pdfRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pdf file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer file.Close()

	pdf, err := h.pdfService.Create(c.Request.Context(), service.PDFInput{
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Price:         req.Price,
		File:          file,
		FileSize:      header.Size,
	})
	if err != nil {
		h.respondPDFError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newPDFResponse(pdf))
}

func (h HandlerSet) UpdatePDF(c *gin.Context) {
	var req pdfRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.PDFInput{
		Title:         req.Title,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Price:         req.Price,
	}
	if header, err := c.FormFile("file"); err == nil {
		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}
		defer file.Close()
		input.File = file
		input.FileSize = header.Size
	}

	pdf, err := h.pdfService.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondPDFError(c, err)
		return
	}

	c.JSON(http.StatusOK, newPDFResponse(pdf))
}

func (h HandlerSet) respondPDFError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPDFNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "pdf_not_found"})
	case errors.Is(err, repository.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "category_not_found"})
	case errors.Is(err, repository.ErrSubcategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "subcategory_not_found"})
	default:
		h.log.Error().Err(err).Msg("pdf operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pdf_operation_failed"})
	}
}

func (h HandlerSet) DeletePDF(c *gin.Context) {
	id := c.Param("id")

	if err := h.pdfService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrPDFNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "pdf_not_found"})
			return
		}
		h.log.Error().Err(err).Str("pdf_id", id).Msg("delete pdf failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "pdf deleted"})
}

// DownloadPDF hands an entitled caller the file URL and counts the
// download. Admins bypass the entitlement check.
func (h HandlerSet) DownloadPDF(c *gin.Context) {
	user := currentUser(c)
	id := c.Param("id")

	pdf, err := h.pdfService.Download(c.Request.Context(), id, user.ID, isAdmin(user))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPDFNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "pdf_not_found"})
		case errors.Is(err, service.ErrNotEntitled):
			c.JSON(http.StatusForbidden, gin.H{"error": "not_entitled"})
		default:
			h.log.Error().Err(err).Str("pdf_id", id).Msg("pdf download failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "download_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fileUrl":  pdf.FileURL,
		"fileSize": pdf.FileSize,
	})
}
