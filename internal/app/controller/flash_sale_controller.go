package controller

import (
	"net/http"

	"github.com/asthar/asthar-backend/internal/app/service"
	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/asthar/asthar-backend/internal/middleware"
	"github.com/asthar/asthar-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
)

type FlashSaleController struct {
	flashSaleService service.FlashSaleService
	hub              *websocket.Hub
	upgrader         *gorillaws.Upgrader
}

func NewFlashSaleController(flashSaleService service.FlashSaleService, hub *websocket.Hub, allowedOrigins []string) *FlashSaleController {
	return &FlashSaleController{
		flashSaleService: flashSaleService,
		hub:              hub,
		upgrader:         websocket.NewUpgrader(allowedOrigins),
	}
}

// GetFlashSale returns today's flash sale products and the time left
// GET /api/v1/flash-sale
func (ctrl *FlashSaleController) GetFlashSale(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sale, err := ctrl.flashSaleService.GetFlashSale(c.Request.Context())
	if err != nil {
		log.Error("Failed to fetch flash sale", err, nil)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "flash sale")
		return
	}

	c.JSON(http.StatusOK, flashSaleBody(sale))
}

// Subscribe streams the countdown over a websocket. The first frame is the
// current window; ticks and rollovers follow from the hub.
// GET /api/v1/flash-sale/ws
func (ctrl *FlashSaleController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	greeting := &websocket.Message{
		Type: websocket.MessageTick,
		Data: ctrl.flashSaleService.Window(),
	}
	if err := websocket.Serve(ctrl.hub, ctrl.upgrader, c.Writer, c.Request, greeting); err != nil {
		// the upgrader has already written the HTTP error
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	log.Debug("Flash sale subscriber connected", nil)
}
