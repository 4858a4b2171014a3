package chat

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Kruglikle/Free-room-MIET/pkg/config"
	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler serves the chat websocket and the JSON query endpoint over one
// shared aggregation engine.
type Handler struct {
	cfg *config.Config
	eng *schedule.Scheduler
}

func NewHandler(cfg *config.Config, eng *schedule.Scheduler) *Handler {
	return &Handler{cfg: cfg, eng: eng}
}

// Router builds the gin engine with all routes attached.
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws", h.HandleWebSocket)
	r.GET("/api/free", h.HandleFreeRooms)

	return r
}

// HandleWebSocket upgrades the connection and runs one chat session over it.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	session := NewSession(h.cfg, h.eng, func(text string) {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			log.Printf("websocket write failed: %v", err)
		}
	})

	ctx := c.Request.Context()
	session.Start(ctx)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		session.ProcessMessage(ctx, string(message))
	}
}

// HandleFreeRooms is the one-shot JSON variant of the conversation: query
// parameters date (or day name), pair (slot code) or at (wall-clock time),
// corpus, page.
func (h *Handler) HandleFreeRooms(c *gin.Context) {
	ctx := c.Request.Context()

	if len(h.eng.Directory().Groups()) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "group list is empty"})
		return
	}

	dayName, dayNumber, ok := h.resolveDay(c)
	if !ok {
		return
	}

	timeCode, ok := h.resolveSlot(c)
	if !ok {
		return
	}

	rooms := h.eng.Directory().EnsureRooms(ctx)
	if len(rooms) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room list is empty"})
		return
	}

	occupied, success := h.eng.AggregateOccupied(ctx, dayName, dayNumber, timeCode)
	if success == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "schedule service unavailable"})
		return
	}

	corpus := c.DefaultQuery("corpus", "all")
	free := schedule.FilterByPrefix(h.eng.FreeRooms(occupied), corpus)

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	totalPages := schedule.Pages(len(free), h.cfg.PageSize)
	if page > totalPages-1 {
		page = totalPages - 1
	}

	c.JSON(http.StatusOK, gin.H{
		"day":        dayName,
		"day_number": dayNumber,
		"time_code":  timeCode,
		"corpus":     corpus,
		"rooms":      schedule.Paginate(free, page, h.cfg.PageSize),
		"total":      len(free),
		"page":       page,
		"pages":      totalPages,
		"groups_ok":  success,
	})
}

// resolveDay turns the date or day query parameter into the upstream day
// pair. Responds with 400 itself when the input is unusable.
func (h *Handler) resolveDay(c *gin.Context) (string, *int, bool) {
	ctx := c.Request.Context()

	if value := c.Query("date"); value != "" {
		date, ok := schedule.ParseDate(value)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unparsable date, expected YYYY-MM-DD or DD.MM"})
			return "", nil, false
		}
		name, number := h.eng.MapDate(ctx, date)
		return name, &number, true
	}

	if value := c.Query("day"); value != "" {
		name, ok := schedule.NormalizeWeekday(value)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown weekday name"})
			return "", nil, false
		}
		// No date in hand, so only the learned mapping applies; an
		// unlearned day keeps the number absent rather than guessed.
		return name, nil, true
	}

	name, number := h.eng.MapDate(ctx, time.Now())
	return name, &number, true
}

// resolveSlot turns the pair or at query parameter into a slot code.
func (h *Handler) resolveSlot(c *gin.Context) (string, bool) {
	if code := c.Query("pair"); code != "" {
		return code, true
	}

	value := c.Query("at")
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pair or at parameter is required"})
		return "", false
	}
	clock, ok := schedule.ParseClock(value)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unparsable time, expected HH:MM"})
		return "", false
	}

	slots := h.eng.Times(c.Request.Context())
	if len(slots) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pair catalog unavailable"})
		return "", false
	}
	code, ok := schedule.TimeToCode(slots, clock)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time is outside every pair"})
		return "", false
	}
	return code, true
}
