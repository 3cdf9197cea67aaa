package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"csvdash/app"
	"csvdash/domain/chart"
	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/internal/axis"
	apperrors "csvdash/internal/errors"
)

// datasetResponse describes a stored dataset without its rows.
type datasetResponse struct {
	*dataset.Dataset
	Rows       int               `json:"rows"`
	ChartTypes []chart.ChartType `json:"chart_types"`
}

func newDatasetResponse(ds *dataset.Dataset) datasetResponse {
	return datasetResponse{Dataset: ds, Rows: ds.RowCount(), ChartTypes: axis.OfferedTypes(ds.Roles)}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListDatasets(c *gin.Context) {
	list, err := s.store.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	out := make([]datasetResponse, 0, len(list))
	for _, ds := range list {
		out = append(out, newDatasetResponse(ds))
	}
	c.JSON(http.StatusOK, gin.H{"datasets": out, "count": len(out)})
}

// handleUpload accepts a multipart "file" field holding a CSV or XLSX file.
func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondStatus(c, http.StatusRequestEntityTooLarge,
				apperrors.InvalidInput(fmt.Sprintf("upload exceeds %d bytes", s.maxUpload)))
			return
		}
		s.respondError(c, apperrors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if s.maxUpload > 0 && header.Size > s.maxUpload {
		s.respondStatus(c, http.StatusRequestEntityTooLarge,
			apperrors.InvalidInput(fmt.Sprintf("file size %d exceeds %d bytes", header.Size, s.maxUpload)))
		return
	}

	ds, err := s.service.Load(c.Request.Context(), header.Filename, file, header.Size)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.Put(c.Request.Context(), ds); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newDatasetResponse(ds))
}

func (s *Server) handleGetDataset(c *gin.Context) {
	ds, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newDatasetResponse(ds))
}

func (s *Server) handleDeleteDataset(c *gin.Context) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAnalysis(c *gin.Context) {
	ds, ok := s.lookup(c)
	if !ok {
		return
	}
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}
	result, err := s.service.Analyze(c.Request.Context(), ds, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.respondJSON(c, http.StatusOK, result)
}

// handleChart renders the requested chart as an image. A refused chart is
// answered with the rejection as JSON.
func (s *Server) handleChart(c *gin.Context) {
	ds, ok := s.lookup(c)
	if !ok {
		return
	}
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if _, err := s.service.RenderChart(c.Request.Context(), ds, req, &buf); err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, s.service.ContentType(), buf.Bytes())
}

func (s *Server) lookup(c *gin.Context) (*dataset.Dataset, bool) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return nil, false
	}
	ds, err := s.store.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return ds, true
}

// bindRequest decodes an optional JSON analysis request.
func (s *Server) bindRequest(c *gin.Context) (app.AnalysisRequest, bool) {
	var req app.AnalysisRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput(fmt.Sprintf("invalid analysis request: %v", err)))
		return req, false
	}
	return req, true
}

// respondJSON encodes v before writing so an unencodable body is reported
// as an error rather than an empty success.
func (s *Server) respondJSON(c *gin.Context, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.respondError(c, apperrors.Wrap(err, "failed to encode response"))
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func (s *Server) respondError(c *gin.Context, err error) {
	appErr := apperrors.FromDomain(err)
	s.respondStatus(c, apperrors.HTTPStatus(appErr.Code), err)
}

func (s *Server) respondStatus(c *gin.Context, status int, err error) {
	appErr := apperrors.FromDomain(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"code": appErr.Code, "message": err.Error()},
	})
}
