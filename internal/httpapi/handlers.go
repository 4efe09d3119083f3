package httpapi

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/assetsplitter/internal/calculator"
	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/metrics"
	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/notify"
	"github.com/mmynk/assetsplitter/internal/persistence"
	"github.com/mmynk/assetsplitter/internal/report"
	"github.com/mmynk/assetsplitter/internal/session"
)

type handler struct {
	session   *session.Session
	toast     *notify.Toast
	metrics   *metrics.Metrics
	autosaver *persistence.Autosaver
	now       func() time.Time
}

type totalsResponse struct {
	PartyA float64 `json:"partyA"`
	PartyB float64 `json:"partyB"`
}

func totalsFrom(t calculator.Totals) totalsResponse {
	return totalsResponse{PartyA: t.PartyA, PartyB: t.PartyB}
}

type stateResponse struct {
	models.StoredState
	Totals totalsResponse `json:"totals"`
}

type partiesRequest struct {
	PartyAName *string `json:"partyAName"`
	PartyBName *string `json:"partyBName"`
}

type assetRequest struct {
	Name             *string  `json:"name"`
	Value            *float64 `json:"value"`
	PartyAPercentage *float64 `json:"partyAPercentage"`
	PartyBPercentage *float64 `json:"partyBPercentage"`
}

type allocationRequest struct {
	AllocationType models.AllocationType `json:"allocationType"`
}

type notificationResponse struct {
	Message string `json:"message"`
	Visible bool   `json:"visible"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) writeState(w http.ResponseWriter, status int) {
	state := h.session.Snapshot()
	writeJSON(w, status, stateResponse{
		StoredState: state,
		Totals:      totalsFrom(calculator.CalculateTotals(state.Assets)),
	})
}

func (h *handler) getState(w http.ResponseWriter, r *http.Request) {
	h.writeState(w, http.StatusOK)
}

// resetState empties the form and deletes the stored document, so the
// next load finds nothing saved.
func (h *handler) resetState(w http.ResponseWriter, r *http.Request) {
	h.session.Reset()
	if h.autosaver != nil {
		if err := h.autosaver.Discard(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to reset", err.Error())
			return
		}
	}
	h.writeState(w, http.StatusOK)
}

func (h *handler) start(w http.ResponseWriter, r *http.Request) {
	var req partiesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	var a, b string
	if req.PartyAName != nil {
		a = *req.PartyAName
	}
	if req.PartyBName != nil {
		b = *req.PartyBName
	}
	if err := h.session.Start(a, b); err != nil {
		writeError(w, mapError(err), "failed to start", err.Error())
		return
	}
	h.writeState(w, http.StatusCreated)
}

func (h *handler) setParties(w http.ResponseWriter, r *http.Request) {
	var req partiesRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.PartyAName != nil {
		h.session.SetPartyName(models.PartyA, *req.PartyAName)
	}
	if req.PartyBName != nil {
		h.session.SetPartyName(models.PartyB, *req.PartyBName)
	}
	h.writeState(w, http.StatusOK)
}

func (h *handler) addAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	asset := h.session.AddAsset()
	if req.Name != nil || req.Value != nil {
		if req.Name != nil {
			asset.Name = *req.Name
		}
		if req.Value != nil {
			asset.Value = *req.Value
		}
		h.session.UpdateAsset(asset)
	}
	writeJSON(w, http.StatusCreated, asset)
}

func (h *handler) updateAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req assetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.PartyAPercentage != nil && req.PartyBPercentage != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "set one percentage; the other party receives the remainder")
		return
	}

	asset, ok := h.session.Asset(id)
	if !ok {
		writeError(w, http.StatusNotFound, "failed to update asset", session.ErrAssetNotFound.Error())
		return
	}
	if req.Name != nil {
		asset.Name = *req.Name
	}
	if req.Value != nil {
		asset.Value = *req.Value
	}
	h.session.UpdateAsset(asset)

	switch {
	case req.PartyAPercentage != nil:
		h.session.SetPercentage(id, models.PartyA, *req.PartyAPercentage)
	case req.PartyBPercentage != nil:
		h.session.SetPercentage(id, models.PartyB, *req.PartyBPercentage)
	}

	asset, _ = h.session.Asset(id)
	writeJSON(w, http.StatusOK, asset)
}

func (h *handler) setAllocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req allocationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if !req.AllocationType.Valid() {
		writeError(w, http.StatusBadRequest, "invalid allocation type", string(req.AllocationType))
		return
	}

	asset, ok := h.session.Asset(id)
	if !ok {
		writeError(w, http.StatusNotFound, "failed to set allocation", session.ErrAssetNotFound.Error())
		return
	}
	h.session.SetAllocationType(asset, req.AllocationType)

	asset, _ = h.session.Asset(id)
	writeJSON(w, http.StatusOK, asset)
}

// deleteAsset is idempotent: unknown IDs are not an error.
func (h *handler) deleteAsset(w http.ResponseWriter, r *http.Request) {
	h.session.DeleteAsset(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getTotals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, totalsFrom(h.session.Totals()))
}

func (h *handler) importState(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "failed to read import", err.Error())
		return
	}

	name := r.URL.Query().Get("filename")
	if name == "" {
		name = "upload"
	}
	if err := h.session.ImportFile(name, data); err != nil {
		var shapeErr *codec.ShapeError
		details := ""
		if errors.As(err, &shapeErr) {
			details = shapeErr.Error()
		}
		writeError(w, mapError(err), msgInvalidImport, details)
		return
	}
	h.writeState(w, http.StatusOK)
}

func (h *handler) exportState(w http.ResponseWriter, r *http.Request) {
	data, err := h.session.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to export", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+codec.ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *handler) report(w http.ResponseWriter, r *http.Request) {
	kind, err := report.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown report", err.Error())
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, kind, h.session.Snapshot(), report.At(h.now())); err != nil {
		slog.Error("Failed to generate report", "kind", kind, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to generate report", err.Error())
		return
	}
	h.metrics.RecordReport(string(kind))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+kind.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *handler) notification(w http.ResponseWriter, r *http.Request) {
	var resp notificationResponse
	if h.toast != nil {
		resp.Message, resp.Visible = h.toast.Current()
	}
	writeJSON(w, http.StatusOK, resp)
}
