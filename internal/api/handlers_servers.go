// handlers_servers.go - Server registry and log display handlers
package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/witsml-transfer/backend/internal/logdata"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// ServerHandlerImpl implements the ServerHandler interface
type ServerHandlerImpl struct {
	servers  ServerProvider
	pageSize int
}

// NewServerHandler creates a new server handler. pageSize caps the rows of one display read.
func NewServerHandler(servers ServerProvider, pageSize int) ServerHandler {
	return &ServerHandlerImpl{servers: servers, pageSize: pageSize}
}

// LogDataResponse is one page of log data as shown in a curve table.
type LogDataResponse struct {
	StartIndex          string                      `json:"startIndex,omitempty"`
	EndIndex            string                      `json:"endIndex,omitempty"`
	CurveSpecifications []models.CurveSpecification `json:"curveSpecifications"`
	Data                []map[string]string         `json:"data"`
}

// HandleListServers returns the configured servers
func (h *ServerHandlerImpl) HandleListServers(c echo.Context) error {
	return c.JSON(http.StatusOK, h.servers.Servers())
}

// HandleAddLog creates a log, header and optional data, on a server
func (h *ServerHandlerImpl) HandleAddLog(c echo.Context) error {
	client, err := h.servers.Client(c.Param("server"))
	if err != nil {
		return FromError("server not available", err)
	}

	var l witsml.Log
	if err := c.Bind(&l); err != nil {
		return NewBadRequestError("invalid log", err)
	}
	if l.Uid == "" || l.UidWell == "" || l.UidWellbore == "" {
		return NewValidationError("uid")
	}

	result, err := client.AddToStore(c.Request().Context(), witsml.Document{ObjectType: witsml.ObjectTypeLog, Log: &l})
	if err != nil {
		return FromError("failed to add log", err)
	}
	if !result.IsSuccessful {
		return NewConflictError(result.Reason)
	}
	return c.JSON(http.StatusCreated, models.NewRefreshObject(client.ServerUrl(), l.UidWell, l.UidWellbore, witsml.ObjectTypeLog, l.Uid, models.RefreshAdd))
}

// HandleGetLogData reads one page of log data for display. Query parameters: mnemonics
// (comma separated, default all), startIndex and endIndex (default the log range).
func (h *ServerHandlerImpl) HandleGetLogData(c echo.Context) error {
	client, err := h.servers.Client(c.Param("server"))
	if err != nil {
		return FromError("server not available", err)
	}
	ref := models.ObjectReference{
		WellUid:     c.Param("wellUid"),
		WellboreUid: c.Param("wellboreUid"),
		Uid:         c.Param("logUid"),
	}
	ctx := c.Request().Context()

	set, err := client.GetFromStore(ctx, witsml.GetLogByUid(ref.WellUid, ref.WellboreUid, ref.Uid), witsml.OptionsIn{ReturnElements: witsml.ReturnHeaderOnly})
	if err != nil {
		return FromError("failed to read log header", err)
	}
	header, ok := set.FirstLog()
	if !ok {
		return NewNotFoundError("log", ref.Uid)
	}

	var requested []string
	if raw := c.QueryParam("mnemonics"); raw != "" {
		for _, m := range strings.Split(raw, ",") {
			if m = strings.TrimSpace(m); m != "" {
				requested = append(requested, m)
			}
		}
	}
	mnemonics, err := logdata.MnemonicList(header, requested)
	if err != nil {
		return FromError("invalid mnemonics", err)
	}

	response := LogDataResponse{Data: []map[string]string{}}
	window, hasData, err := logdata.WindowFromHeader(header)
	if err != nil {
		return FromError("invalid log header", err)
	}
	if !hasData {
		for _, m := range mnemonics {
			info, _ := header.CurveInfo(m)
			response.CurveSpecifications = append(response.CurveSpecifications, models.CurveSpecification{Mnemonic: m, Unit: info.Unit, DataType: info.TypeLogData})
		}
		return c.JSON(http.StatusOK, response)
	}

	if window, err = narrowWindow(header, window, c.QueryParam("startIndex"), c.QueryParam("endIndex")); err != nil {
		return FromError("invalid index range", err)
	}

	block, err := logdata.NewReader(client, h.pageSize).Read(ctx, ref, mnemonics, window.Start, window.End, true)
	if err != nil {
		return FromError("failed to read log data", err)
	}

	response.CurveSpecifications = block.CurveSpecifications
	if !block.IsEmpty() {
		response.StartIndex = block.StartIndex.TransportString()
		response.EndIndex = block.EndIndex.TransportString()
	}
	columns := block.Mnemonics()
	for _, row := range block.Rows {
		values := make(map[string]string, len(columns))
		values[columns[0]] = row.Index.TransportString()
		for i, v := range row.Values {
			if v != "" && i+1 < len(columns) {
				values[columns[i+1]] = v
			}
		}
		response.Data = append(response.Data, values)
	}
	return c.JSON(http.StatusOK, response)
}

func narrowWindow(header *witsml.Log, window logdata.Window, start, end string) (logdata.Window, error) {
	kind, direction, uom := logdata.IndexKindOf(header), logdata.DirectionOf(header), logdata.IndexUom(header)
	if start != "" {
		idx, err := models.ParseIndex(kind, start, uom, direction)
		if err != nil {
			return window, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		window.Start = idx
	}
	if end != "" {
		idx, err := models.ParseIndex(kind, end, uom, direction)
		if err != nil {
			return window, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		window.End = idx
	}
	return window, nil
}
