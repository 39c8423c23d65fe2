package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"alignbench/domain/core"
	"alignbench/domain/scoring"
	"alignbench/internal/errors"
	"alignbench/internal/report"
)

const defaultListLimit = 50

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"persistence": s.service.PersistenceEnabled(),
	})
}

// handleScore scores a {records, weights, domains} document. ?persist=true
// saves the run; ?format=markdown or html returns the report instead of JSON.
func (s *Server) handleScore(c *gin.Context) {
	persist, _ := strconv.ParseBool(c.DefaultQuery("persist", "false"))

	var ds scoring.Dataset
	body := http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&ds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataset document: " + err.Error()})
		return
	}

	sr, err := s.service.Score(c.Request.Context(), ds, persist)
	if err != nil {
		s.writeError(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(sr.Result)))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(sr.Result))
	default:
		c.JSON(http.StatusOK, sr)
	}
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	runs, err := s.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sr, err := s.service.GetRun(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sr)
}

// writeError maps error codes onto HTTP statuses
func (s *Server) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidGrouping, errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusUnprocessableEntity
	case errors.CodeConfigInvalid:
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
