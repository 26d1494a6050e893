package handlers

import (
	"bytes"
	"fieldmap-service/internal/api/dto"
	"fieldmap-service/internal/export"
	"fieldmap-service/internal/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	formatJSON    = "json"
	formatGeoJSON = "geojson"

	staleHeader = "X-Snapshot-Stale"
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// MapHandler exposes the clustered map views.
type MapHandler struct {
	Maps   *services.MapService
	Logger *zap.Logger
}

func (h *MapHandler) Orders(c *gin.Context) {
	format, ok := requestFormat(c)
	if !ok {
		return
	}

	view, err := h.Maps.AllOrders(c.Request.Context())
	if err != nil {
		h.fail(c, "orders map", err)
		return
	}

	writeView(c, format, view)
}

func (h *MapHandler) Client(c *gin.Context) {
	clientID, err := parseID(c.Param("clientID"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid client id")
		return
	}
	format, ok := requestFormat(c)
	if !ok {
		return
	}

	view, err := h.Maps.ClientPlacements(c.Request.Context(), clientID)
	if err != nil {
		h.fail(c, "client map", err)
		return
	}

	writeView(c, format, view)
}

func (h *MapHandler) Route(c *gin.Context) {
	routeID, err := parseID(c.Param("routeID"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid route id")
		return
	}
	format, ok := requestFormat(c)
	if !ok {
		return
	}

	view, err := h.Maps.RouteTasks(c.Request.Context(), routeID)
	if err != nil {
		h.fail(c, "route map", err)
		return
	}

	writeView(c, format, view)
}

// Routes serves GET /maps/routes?ids=1,2,3 as one JSON document.
func (h *MapHandler) Routes(c *gin.Context) {
	ids, err := parseIDList(c.Query("ids"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.Maps.Routes(c.Request.Context(), ids)
	if err != nil {
		h.fail(c, "route maps", err)
		return
	}

	c.Header(staleHeader, strconv.FormatBool(anyStale(views)))
	c.JSON(http.StatusOK, dto.NewListMapViewsResponse(views))
}

// ExportXLSX downloads the orders map, plus any routes named in ?routes=,
// as one workbook.
func (h *MapHandler) ExportXLSX(c *gin.Context) {
	var routeIDs []int
	if raw := c.Query("routes"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		routeIDs = ids
	}

	ctx := c.Request.Context()

	orders, err := h.Maps.AllOrders(ctx)
	if err != nil {
		h.fail(c, "orders export", err)
		return
	}
	views := []*services.MapView{orders}

	if len(routeIDs) > 0 {
		routes, err := h.Maps.Routes(ctx, routeIDs)
		if err != nil {
			h.fail(c, "orders export", err)
			return
		}
		views = append(views, routes...)
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, views...); err != nil {
		h.Logger.Error("xlsx export failed", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="orders.xlsx"`)
	c.Header(staleHeader, strconv.FormatBool(anyStale(views)))
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}

func (h *MapHandler) fail(c *gin.Context, op string, err error) {
	status := errorStatus(err)
	h.Logger.Warn(op+" failed", zap.Int("status", status), zap.Error(err))
	writeError(c, status, errorMessage(status))
}

func requestFormat(c *gin.Context) (string, bool) {
	switch f := c.DefaultQuery("format", formatJSON); f {
	case formatJSON, formatGeoJSON:
		return f, true
	default:
		writeError(c, http.StatusBadRequest, "format must be json or geojson")
		return "", false
	}
}

func writeView(c *gin.Context, format string, v *services.MapView) {
	c.Header(staleHeader, strconv.FormatBool(v.Stale))

	if format == formatGeoJSON {
		body, err := export.GeoJSON(v.Clusters).MarshalJSON()
		if err != nil {
			writeError(c, http.StatusInternalServerError, "internal server error")
			return
		}
		c.Data(http.StatusOK, "application/geo+json", body)
		return
	}

	c.JSON(http.StatusOK, dto.NewMapViewResponse(v))
}

func anyStale(views []*services.MapView) bool {
	for _, v := range views {
		if v.Stale {
			return true
		}
	}
	return false
}
