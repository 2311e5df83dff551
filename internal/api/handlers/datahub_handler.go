package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/threatflux/datahub/internal/auth/jwt"
	"github.com/threatflux/datahub/internal/datahub/admin"
	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/sample"
	"github.com/threatflux/datahub/internal/datahub/snapshot"
	"github.com/threatflux/datahub/internal/metrics"
	"github.com/threatflux/datahub/pkg/logger"
)

// DataHubHandler exposes the C8 Admin/IO/Query surface over HTTP. A
// producer app authenticates with a JWT whose Username claim names the
// app, and may only register or push under /app/<that name>/....
// Administrative endpoints (default/override/source, config load,
// destinations) are unrestricted across any absolute path, gated by
// RoleMiddleware.RequireRole("admin") at the router level.
type DataHubHandler struct {
	hub     *admin.Hub
	metrics metrics.Collector
	logger  logger.Logger
}

// NewDataHubHandler creates a DataHubHandler over hub.
func NewDataHubHandler(hub *admin.Hub, collector metrics.Collector, logger logger.Logger) *DataHubHandler {
	return &DataHubHandler{hub: hub, metrics: collector, logger: logger}
}

func appIDFromContext(c *gin.Context) string {
	claimsVal, exists := c.Get("claims")
	if !exists {
		return ""
	}
	claims, ok := claimsVal.(*jwt.Claims)
	if !ok {
		return ""
	}
	return claims.Username
}

// sampleRequest is the wire shape for a single pushed value — the type
// tag selects which of the four fields is read, mirroring the tagged
// union of sample.Sample itself.
type sampleRequest struct {
	Type    string  `json:"type" binding:"required"`
	Boolean bool    `json:"boolean,omitempty"`
	Numeric float64 `json:"numeric,omitempty"`
	String  string  `json:"string,omitempty"`
	JSON    string  `json:"json,omitempty"`
}

func (r sampleRequest) toSample() (sample.Type, sample.Sample, error) {
	now := float64(0)
	switch r.Type {
	case "trigger":
		return sample.Trigger, sample.New(sample.Trigger, now, nil), nil
	case "bool":
		return sample.Boolean, sample.New(sample.Boolean, now, r.Boolean), nil
	case "numeric":
		return sample.Numeric, sample.New(sample.Numeric, now, r.Numeric), nil
	case "string":
		return sample.String, sample.New(sample.String, now, r.String), nil
	case "json":
		return sample.JSON, sample.New(sample.JSON, now, r.JSON), nil
	default:
		return 0, sample.Sample{}, dherrors.ErrBadParameter
	}
}

func sampleTypeFromQuery(s string) (sample.Type, error) {
	switch s {
	case "trigger":
		return sample.Trigger, nil
	case "bool":
		return sample.Boolean, nil
	case "numeric":
		return sample.Numeric, nil
	case "string":
		return sample.String, nil
	case "json":
		return sample.JSON, nil
	default:
		return 0, dherrors.ErrBadParameter
	}
}

type sampleResponse struct {
	Type    string      `json:"type"`
	Value   interface{} `json:"value"`
	AtUnix  float64     `json:"ts"`
	PathKey string      `json:"path"`
}

func responseOf(path string, s sample.Sample) sampleResponse {
	r := sampleResponse{Type: s.Type().String(), AtUnix: s.Timestamp(), PathKey: path}
	switch s.Type() {
	case sample.Boolean:
		r.Value = s.AsBoolean()
	case sample.Numeric:
		r.Value = s.AsNumeric()
	case sample.String:
		r.Value = s.AsString()
	case sample.JSON:
		r.Value = s.AsJSON()
	}
	return r
}

// dherrToStatus maps the sentinel table of package dherrors to an HTTP
// status code, the same way mapErrorToStatusAndCode does for the auth
// and API errors of this package.
func dherrToStatus(err error) (int, string) {
	switch dherrors.CodeString(err) {
	case "NotFound":
		return http.StatusNotFound, "NOT_FOUND"
	case "BadParameter", "TypeMismatch", "Overflow":
		return http.StatusBadRequest, "BAD_PARAMETER"
	case "Duplicate":
		return http.StatusConflict, "DUPLICATE"
	case "Unsupported", "WouldCycle":
		return http.StatusUnprocessableEntity, "UNSUPPORTED"
	case "NoMemory", "Busy":
		return http.StatusServiceUnavailable, "BUSY"
	case "FormatError":
		return http.StatusBadRequest, "FORMAT_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"
	}
}

func (h *DataHubHandler) fail(c *gin.Context, err error) {
	status, code := dherrToStatus(err)
	h.logger.Warn("datahub request failed",
		logger.String("path", c.Request.URL.Path),
		logger.String("code", code),
		logger.Error(err))
	c.JSON(status, ErrorResponse{Status: status, Code: code, Message: err.Error()})
}

// RegisterResourceRequest is the body of a RegisterInput/RegisterOutput call.
type RegisterResourceRequest struct {
	Path     string `json:"path" binding:"required"`
	DataType string `json:"dataType" binding:"required"`
	Units    string `json:"units"`
}

// RegisterInput handles POST /app/inputs.
func (h *DataHubHandler) RegisterInput(c *gin.Context) {
	var req RegisterResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	dt, err := sampleTypeFromQuery(req.DataType)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.hub.RegisterInput(appIDFromContext(c), req.Path, dt, req.Units)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": res.Path(), "dataType": res.DataType().String()})
}

// RegisterOutput handles POST /app/outputs.
func (h *DataHubHandler) RegisterOutput(c *gin.Context) {
	var req RegisterResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	dt, err := sampleTypeFromQuery(req.DataType)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.hub.RegisterOutput(appIDFromContext(c), req.Path, dt, req.Units)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": res.Path(), "dataType": res.DataType().String()})
}

// Push handles POST /app/push?path=/app/<app>/..., scoped to the
// caller's own app namespace.
func (h *DataHubHandler) Push(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		HandleError(c, ErrInvalidInput)
		return
	}
	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	t, s, err := req.toSample()
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.hub.PushFromApp(appIDFromContext(c), path, t, s); err != nil {
		h.metrics.RecordPush(req.Type, false)
		h.fail(c, err)
		return
	}
	h.metrics.RecordPush(req.Type, true)
	c.Status(http.StatusNoContent)
}

// AdminPush handles POST /admin/push?path=..., unrestricted to any
// absolute path, implicitly creating a Placeholder.
func (h *DataHubHandler) AdminPush(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		HandleError(c, ErrInvalidInput)
		return
	}
	var req sampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	t, s, err := req.toSample()
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.hub.PushAdmin(path, t, s); err != nil {
		h.metrics.RecordPush(req.Type, false)
		h.fail(c, err)
		return
	}
	h.metrics.RecordPush(req.Type, true)
	c.Status(http.StatusNoContent)
}

// Query handles GET /query?path=....
func (h *DataHubHandler) Query(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		HandleError(c, ErrInvalidInput)
		return
	}
	s, ok, err := h.hub.Query(path)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNoContent, nil)
		return
	}
	c.JSON(http.StatusOK, responseOf(path, s))
}

// Snapshot handles GET /admin/snapshot: a full in-memory dump of the
// resource tree for introspection/debugging.
func (h *DataHubHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, snapshot.Dump(h.hub.Tree()))
}

// adminValueRequest is the body of SetDefault/SetOverride admin calls.
type adminValueRequest struct {
	Path   string        `json:"path" binding:"required"`
	Sample sampleRequest `json:"sample" binding:"required"`
}

// SetDefault handles PUT /admin/default.
func (h *DataHubHandler) SetDefault(c *gin.Context) {
	var req adminValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	t, s, err := req.Sample.toSample()
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.hub.SetDefault(req.Path, t, s); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveDefault handles DELETE /admin/default?path=....
func (h *DataHubHandler) RemoveDefault(c *gin.Context) {
	if err := h.hub.RemoveDefault(c.Query("path")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetOverride handles PUT /admin/override.
func (h *DataHubHandler) SetOverride(c *gin.Context) {
	var req adminValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	t, s, err := req.Sample.toSample()
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.hub.SetOverride(req.Path, t, s); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveOverride handles DELETE /admin/override?path=....
func (h *DataHubHandler) RemoveOverride(c *gin.Context) {
	if err := h.hub.RemoveOverride(c.Query("path")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// setSourceRequest is the body of SetSource.
type setSourceRequest struct {
	DestinationPath string `json:"destinationPath" binding:"required"`
	SourcePath      string `json:"sourcePath" binding:"required"`
}

// SetSource handles PUT /admin/source.
func (h *DataHubHandler) SetSource(c *gin.Context) {
	var req setSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	if err := h.hub.SetSource(req.DestinationPath, req.SourcePath); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveSource handles DELETE /admin/source?path=....
func (h *DataHubHandler) RemoveSource(c *gin.Context) {
	if err := h.hub.RemoveSource(c.Query("path")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteIO handles DELETE /admin/io?path=....
func (h *DataHubHandler) DeleteIO(c *gin.Context) {
	if err := h.hub.DeleteIO(c.Query("path")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteObservation handles DELETE /admin/observations/:name.
func (h *DataHubHandler) DeleteObservation(c *gin.Context) {
	if err := h.hub.DeleteObservation(c.Param("name")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// addDestinationRequest is the body of AddDestination; the callback
// target is a single symbolic name resolved at delivery time against a
// pool of destination connections held by the caller out-of-band (this
// handler only records that a name exists and reports delivery counts
// via the logger, matching the C7 registry's own fire-and-forget
// semantics).
type addDestinationRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddDestination handles POST /admin/destinations.
func (h *DataHubHandler) AddDestination(c *gin.Context) {
	var req addDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	name := req.Name
	ref, err := h.hub.AddDestination(name, func(dest, obsPath string, s sample.Sample) {
		h.metrics.RecordDestinationDelivery(dest)
		h.logger.Info("destination delivery",
			logger.String("destination", dest),
			logger.String("observation", obsPath))
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name, "ref": ref})
}

// loadConfigRequest carries the raw config document and its encoding
// tag (spec.md §4.6 only defines "json" today, but the field exists so
// a future encoding doesn't need a new endpoint).
type loadConfigRequest struct {
	Encoding string `json:"encoding" binding:"required"`
	Document string `json:"document" binding:"required"`
}

// LoadConfig handles POST /admin/config.
func (h *DataHubHandler) LoadConfig(c *gin.Context) {
	var req loadConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleError(c, ErrInvalidInput)
		return
	}
	doc := req.Document
	start := time.Now()
	result, err := h.hub.LoadConfig(req.Encoding, func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(doc)), nil
	})
	h.metrics.RecordConfigLoad(err == nil, time.Since(start))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": result.Created, "updated": result.Updated, "deleted": result.Deleted})
}
