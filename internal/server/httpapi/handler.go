package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/devnotes/internal/common"
	"github.com/dmitrijs2005/devnotes/internal/server/services"
)

func (s *HTTPServer) listNotes(c *gin.Context) {
	list, err := s.notes.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	out := make([]noteDTO, 0, len(list))
	for _, n := range list {
		out = append(out, toDTO(n))
	}
	c.JSON(http.StatusOK, out)
}

func (s *HTTPServer) getNote(c *gin.Context) {
	n, err := s.notes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toDTO(n))
}

func (s *HTTPServer) upsertNote(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if req.Title == nil || req.Content == nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "title and content are required"})
		return
	}

	n, err := s.notes.Upsert(c.Request.Context(), services.UpsertInput{
		ID:      req.ID,
		Title:   *req.Title,
		Content: *req.Content,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, upsertResponse{ID: n.ID})
}

func (s *HTTPServer) deleteNote(c *gin.Context) {
	if err := s.notes.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps service errors to status codes. Unexpected errors are logged and
// reported without detail.
func (s *HTTPServer) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "note not found"})
	case errors.Is(err, common.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
