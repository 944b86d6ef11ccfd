package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/signalworks/claimcheck/src/data"
)

type HistoryHandler struct {
	history *data.History
}

func NewHistoryHandler(history *data.History) HistoryHandler {
	return HistoryHandler{history: history}
}

// Recent lists recent investigations, most recent first. Returns an empty
// list when persistence is not configured.
func (h HistoryHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	rows := h.history.Recent(limit)
	if rows == nil {
		rows = []data.Investigation{}
	}
	c.JSON(http.StatusOK, gin.H{"investigations": rows})
}
