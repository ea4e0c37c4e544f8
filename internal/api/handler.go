package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-rescue-network/internal/crisis"
	"github.com/mr1hm/go-rescue-network/internal/expiry"
	internalgrpc "github.com/mr1hm/go-rescue-network/internal/grpc"
	"github.com/mr1hm/go-rescue-network/internal/models"
	"github.com/mr1hm/go-rescue-network/internal/repository"
	"github.com/mr1hm/go-rescue-network/internal/rescue"
	"github.com/mr1hm/go-rescue-network/internal/routing"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	network     *rescue.Network
	dispatcher  *rescue.Dispatcher
	router      routing.Router
	broadcaster *internalgrpc.Broadcaster
	db          Pinger
}

func NewHandler(network *rescue.Network, dispatcher *rescue.Dispatcher, router routing.Router, broadcaster *internalgrpc.Broadcaster, db Pinger) *Handler {
	return &Handler{
		network:     network,
		dispatcher:  dispatcher,
		router:      router,
		broadcaster: broadcaster,
		db:          db,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.root)
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/health", h.health)

	api.GET("/donors", h.getDonors)
	api.POST("/donors", h.createDonor)
	api.DELETE("/donors/:id", h.deleteDonor)

	api.GET("/ngos", h.getNGOs)
	api.POST("/ngos", h.createNGO)
	api.DELETE("/ngos/:id", h.deleteNGO)

	api.GET("/vehicles", h.getVehicles)
	api.GET("/active-vehicle", h.activeVehicle)
	api.POST("/vehicle-breakdown/:id", h.vehicleBreakdown)

	api.GET("/crises", h.getCrises)
	api.POST("/crises", h.createCrisis)
	api.GET("/crises/stream", h.streamCrises)
	api.GET("/crises/ws", h.crisisSocket)
	api.POST("/crises/:id/dismiss", h.dismissCrisis)
	api.POST("/crises/:id/resolve", h.resolveCrisis)

	api.GET("/expiry", h.classifyExpiry)
	api.GET("/stats", h.stats)
	api.GET("/map", h.networkMap)

	api.GET("/route", h.route)
	api.POST("/request", h.createRequest)
	api.GET("/requests", h.getRequests)

	api.POST("/optimize", h.optimize)
	api.GET("/route-plan", h.routePlan)
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

var errInvalidBody = errors.New("invalid request body")

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "Backend running",
		"service": "Food & Medicine Rescue Network",
	})
}

func (h *Handler) health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getDonors(c *gin.Context) {
	c.JSON(http.StatusOK, h.network.Inventory(h.network.Now()))
}

func (h *Handler) createDonor(c *gin.Context) {
	var sub rescue.DonorSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		abortWithError(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	donor, err := h.network.AddDonor(sub)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, donor)
}

func (h *Handler) deleteDonor(c *gin.Context) {
	id := c.Param("id")
	if !h.network.DeleteDonor(id) {
		abortWithError(c, http.StatusNotFound, errors.New("donor not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *Handler) getNGOs(c *gin.Context) {
	c.JSON(http.StatusOK, h.network.NGOs())
}

func (h *Handler) createNGO(c *gin.Context) {
	var sub rescue.NGOSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		abortWithError(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	ngo, err := h.network.AddNGO(sub)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, ngo)
}

func (h *Handler) deleteNGO(c *gin.Context) {
	id := c.Param("id")
	if !h.network.DeleteNGO(id) {
		abortWithError(c, http.StatusNotFound, errors.New("ngo not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func (h *Handler) getVehicles(c *gin.Context) {
	c.JSON(http.StatusOK, h.network.Vehicles())
}

func (h *Handler) activeVehicle(c *gin.Context) {
	v, ok := h.network.ActiveVehicle()
	if !ok {
		abortWithError(c, http.StatusNotFound, errors.New("no vehicle available"))
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) vehicleBreakdown(c *gin.Context) {
	id := c.Param("id")
	cr, err := h.network.ReportBreakdown(id)
	switch {
	case errors.Is(err, rescue.ErrVehicleNotFound):
		abortWithError(c, http.StatusNotFound, err)
		return
	case errors.Is(err, rescue.ErrVehicleBrokenDown):
		abortWithError(c, http.StatusConflict, err)
		return
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "vehicle " + id + " broken down",
		"crisis":  cr,
	})
}

func (h *Handler) getCrises(c *gin.Context) {
	crises := h.network.Crises()
	if c.Query("sort") == "severity" {
		crises = crisis.SortBySeverity(crises)
	}
	c.JSON(http.StatusOK, crises)
}

type crisisRequest struct {
	ID          string                `json:"id"`
	Type        models.CrisisType     `json:"type"`
	Severity    models.CrisisSeverity `json:"severity"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Location    string                `json:"location"`
	VehicleID   string                `json:"vehicleId"`
}

func (h *Handler) createCrisis(c *gin.Context) {
	var req crisisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	cr, err := h.network.RaiseCrisis(models.Crisis{
		ID:          req.ID,
		Type:        req.Type,
		Severity:    req.Severity,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		VehicleID:   req.VehicleID,
	})
	switch {
	case errors.Is(err, crisis.ErrDuplicateCrisis):
		abortWithError(c, http.StatusConflict, err)
		return
	case err != nil:
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusCreated, cr)
}

// Unknown ids are not an error for dismiss or resolve; the outcome reports
// removed=false.
func (h *Handler) dismissCrisis(c *gin.Context) {
	c.JSON(http.StatusOK, h.network.DismissCrisis(c.Param("id")))
}

func (h *Handler) resolveCrisis(c *gin.Context) {
	c.JSON(http.StatusOK, h.network.ResolveCrisis(c.Param("id")))
}

// streamCrises sends the open crises as a "snapshot" event, then one event
// per raise, dismiss or resolve until the client disconnects.
func (h *Handler) streamCrises(c *gin.Context) {
	if h.broadcaster == nil {
		abortWithError(c, http.StatusServiceUnavailable, errors.New("event stream unavailable"))
		return
	}

	id, events := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", h.network.Crises())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case e, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(e.Kind), e)
			return true
		}
	})
}

func (h *Handler) classifyExpiry(c *gin.Context) {
	exp, err := expiry.ParseExpiry(c.Query("expiry"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	now := h.network.Now()
	if n := c.Query("now"); n != "" {
		if now, err = expiry.ParseExpiry(n); err != nil {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
	}

	r := expiry.Classify(exp, now)
	c.JSON(http.StatusOK, gin.H{
		"expiry":         exp,
		"now":            now,
		"tier":           r.Tier,
		"hoursRemaining": r.HoursRemaining,
		"label":          r.Label,
	})
}

func (h *Handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.network.Stats(h.network.Now()))
}

func (h *Handler) networkMap(c *gin.Context) {
	fc := toGeoJSON(
		h.network.Inventory(h.network.Now()),
		h.network.NGOs(),
		h.network.Vehicles(),
		h.network.RoutePlan(),
	)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, errors.New("missing query parameter " + key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("invalid query parameter " + key)
	}
	return v, nil
}

func (h *Handler) route(c *gin.Context) {
	var vals [4]float64
	for i, key := range []string{"start_lon", "start_lat", "end_lon", "end_lat"} {
		v, err := queryFloat(c, key)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, err)
			return
		}
		vals[i] = v
	}

	from := models.Coordinate{Lng: vals[0], Lat: vals[1]}
	to := models.Coordinate{Lng: vals[2], Lat: vals[3]}
	if !from.Valid() || !to.Valid() {
		abortWithError(c, http.StatusBadRequest, rescue.ErrInvalidCoordinates)
		return
	}

	r, err := h.router.Route(c.Request.Context(), from, to)
	if err != nil {
		abortWithError(c, http.StatusBadGateway, errors.New("route lookup failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"distance_km": r.DistanceKm(),
		"eta_min":     r.ETAMin(),
		"geometry":    r.Geometry,
		"fallback":    r.Fallback,
	})
}

func (h *Handler) createRequest(c *gin.Context) {
	var sub rescue.RequestSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		abortWithError(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	req, err := h.dispatcher.Create(c.Request.Context(), sub)
	switch {
	case errors.Is(err, rescue.ErrMissingFields),
		errors.Is(err, rescue.ErrInvalidCoordinates),
		errors.Is(err, rescue.ErrInvalidPriority):
		abortWithError(c, http.StatusBadRequest, err)
		return
	case err != nil:
		abortWithError(c, http.StatusInternalServerError, errors.New("failed to store request"))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "request stored",
		"data":    req,
	})
}

func (h *Handler) getRequests(c *gin.Context) {
	filter := repository.Filter{
		Limit: 20, // Default to 20 requests if limit param not supplied
	}

	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}
	if o := c.Query("offset"); o != "" {
		if off, err := strconv.Atoi(o); err == nil && off >= 0 {
			filter.Offset = off
		}
	}
	if p := c.Query("priority"); p != "" {
		priority := models.Priority(p)
		if priority.Valid() {
			filter.Priority = &priority
		}
	}
	if s := c.Query("since"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			filter.Since = &t
		}
	}
	filter.DonorID = c.Query("donor_id")

	requests, err := h.dispatcher.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch requests",
		})
		return
	}
	if requests == nil {
		requests = []models.RescueRequest{}
	}
	c.JSON(http.StatusOK, requests)
}

func (h *Handler) optimize(c *gin.Context) {
	var opts rescue.OptimizationOptions
	if err := c.ShouldBindJSON(&opts); err != nil {
		abortWithError(c, http.StatusBadRequest, errInvalidBody)
		return
	}

	plan, err := h.network.OptimizeRoute(opts)
	switch {
	case errors.Is(err, rescue.ErrVehicleNotFound):
		abortWithError(c, http.StatusNotFound, err)
		return
	case err != nil:
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (h *Handler) routePlan(c *gin.Context) {
	c.JSON(http.StatusOK, h.network.RoutePlan())
}
