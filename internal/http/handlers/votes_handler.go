// Vote and schedule HTTP handlers.
//
//   - GET /votes               (list, paginated, weak ETag)
//   - GET /votes/{message_id}  (one tally with percentages)
//   - GET /schedule            (current daily trigger)
//
// The ops API is read-only; votes are only ever cast through the buttons.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/wyr-bot/internal/domain"
	"github.com/tbourn/wyr-bot/internal/render"
	"github.com/tbourn/wyr-bot/internal/services"
	"github.com/tbourn/wyr-bot/internal/utils"
)

// TallyService is the read side of the vote tallies.
type TallyService interface {
	Get(ctx context.Context, messageID string) (*domain.Vote, error)
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Vote, int64, error)
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// ScheduleService exposes the stored daily schedule.
type ScheduleService interface {
	Current(ctx context.Context) (*domain.Schedule, error)
}

// Handlers groups the ops endpoints.
type Handlers struct {
	tallies   TallyService
	schedules ScheduleService
}

// New constructs Handlers bound to the given services.
func New(tallies TallyService, schedules ScheduleService) *Handlers {
	return &Handlers{tallies: tallies, schedules: schedules}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListVotesResponse wraps a page of tallies.
type ListVotesResponse struct {
	Votes      []domain.Vote `json:"votes"`
	Pagination Pagination    `json:"pagination"`
}

// VoteResponse is a tally plus the percentages shown in the results embed.
type VoteResponse struct {
	domain.Vote
	Total        int    `json:"total"`
	RightPercent string `json:"right_percent"`
	LeftPercent  string `json:"left_percent"`
	Gauge        string `json:"gauge"`
}

// ScheduleResponse is the stored daily trigger.
type ScheduleResponse struct {
	Time      string    `json:"time"`
	Hour      *int      `json:"hour,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// clampPagination reads page and page_size from the query. Out-of-range
// values are clamped; malformed ones fall back to the defaults.
func clampPagination(c *gin.Context) (page, pageSize int) {
	page = utils.ClampInt(c.Query("page"), utils.DefaultPage, 1, math.MaxInt32)
	pageSize = utils.ClampInt(c.Query("page_size"), utils.DefaultPageSize, 1, utils.MaxPageSize)
	return page, pageSize
}

// ListVotes returns tallies newest first. A matching If-None-Match yields 304.
func (h *Handlers) ListVotes(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.tallies.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"votes:%d:%d:%d:%d"`, page, pageSize, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.tallies.ListPage(ctx, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, ListVotesResponse{
		Votes: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetVote returns the tally of one posted message.
func (h *Handlers) GetVote(c *gin.Context) {
	id := strings.TrimSpace(c.Param("message_id"))
	if id == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_id is required")
		return
	}
	v, err := h.tallies.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrVoteNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "vote not found")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	left, right := render.Percentages(v.Left, v.Right)
	ok(c, VoteResponse{
		Vote:         *v,
		Total:        v.Total(),
		RightPercent: render.FormatPercentage(right),
		LeftPercent:  render.FormatPercentage(left),
		Gauge:        render.GaugeBar(v.Left, v.Right),
	})
}

// GetSchedule returns the stored daily expression and, when it has the
// "0 H * * *" shape, the hour.
func (h *Handlers) GetSchedule(c *gin.Context) {
	sch, err := h.schedules.Current(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	resp := ScheduleResponse{Time: sch.Time, UpdatedAt: sch.UpdatedAt}
	if hour, err := domain.ScheduleHour(sch.Time); err == nil {
		resp.Hour = &hour
	}
	ok(c, resp)
}
