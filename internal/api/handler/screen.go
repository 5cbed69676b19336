// Package handler provides the HTTP handlers of the screen API.
package handler

import (
	"net/http"
	"strconv"

	"github.com/giljurha/Airvisual/internal/api/middleware"
	"github.com/giljurha/Airvisual/internal/api/models"
	"github.com/giljurha/Airvisual/internal/api/response"
	"github.com/giljurha/Airvisual/internal/presenter"
	"github.com/giljurha/Airvisual/internal/refresh"
)

const (
	defaultNoticeLimit = 20
	maxNoticeLimit     = DefaultNoticeCapacity
)

// ScreenSource is the part of the refresh controller the API drives.
type ScreenSource interface {
	Snapshot() refresh.Snapshot
	Refresh() bool
}

// ScreenHandler serves the screen state and accepts manual refreshes.
type ScreenHandler struct {
	source ScreenSource
	board  *Board
	locale string
}

// NewScreenHandler creates a ScreenHandler. Category labels are rendered in
// locale.
func NewScreenHandler(source ScreenSource, board *Board, locale string) *ScreenHandler {
	return &ScreenHandler{
		source: source,
		board:  board,
		locale: locale,
	}
}

// Get handles GET /v1/screen.
func (h *ScreenHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()

	screen := models.Screen{
		State:       snap.State.String(),
		Generation:  snap.Generation,
		LastOutcome: snap.LastOutcome.String(),
		Closed:      snap.State == refresh.StateClosed || h.board.Closed(),
		View:        toScreenView(snap.View, h.locale),
	}
	if snap.LastError != nil {
		msg := snap.LastError.Error()
		screen.LastError = &msg
	}

	response.JSON(w, r, http.StatusOK, screen)
}

// Notices handles GET /v1/screen/notices.
func (h *ScreenHandler) Notices(w http.ResponseWriter, r *http.Request) {
	limit := defaultNoticeLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxNoticeLimit {
			response.BadRequest(w, r, "limit must be between 1 and "+strconv.Itoa(maxNoticeLimit), []models.FieldError{
				{Field: "limit", Message: "out of range", Code: "OUT_OF_RANGE"},
			})
			return
		}
		limit = n
	}

	notices := h.board.Notices(limit)
	list := models.NoticeList{Items: make([]models.Notice, 0, len(notices))}
	for _, n := range notices {
		list.Items = append(list.Items, models.Notice{
			Generation: n.Generation,
			Level:      n.Level.String(),
			Text:       n.Text,
			At:         models.Timestamp(n.At),
		})
	}

	response.JSON(w, r, http.StatusOK, list)
}

// Refresh handles POST /v1/screen/refresh.
func (h *ScreenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.board.Closed() || h.source.Snapshot().State == refresh.StateClosed {
		response.Conflict(w, r, "screen is closed")
		return
	}
	if !h.source.Refresh() {
		response.Conflict(w, r, "refresh controller has stopped")
		return
	}

	response.Accepted(w, r, "/v1/screen", models.RefreshAccepted{
		Status:    "accepted",
		RequestID: middleware.GetRequestID(r.Context()),
	})
}

func toScreenView(v presenter.ViewState, locale string) models.ScreenView {
	view := models.ScreenView{
		LocationTitle:    v.LocationTitle,
		LocationSubtitle: v.LocationSubtitle,
		HasReading:       v.HasReading,
	}
	if !v.HasReading {
		return view
	}

	aqi := v.AQIValue
	ts := models.Timestamp(v.Timestamp)
	view.AQIValue = &aqi
	view.Category = v.Category.String()
	view.CategoryLabel = v.Category.Label(locale)
	view.Background = string(v.Background)
	view.FormattedTime = v.FormattedTime
	view.MeasuredAt = &ts
	return view
}
