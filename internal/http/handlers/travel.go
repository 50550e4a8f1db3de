package handlers

import (
	"net/http"
	"strings"

	"github.com/wolfman30/cuddles-booking/internal/lookup"
	"github.com/wolfman30/cuddles-booking/internal/observability/metrics"
	"github.com/wolfman30/cuddles-booking/internal/travel"
	"github.com/wolfman30/cuddles-booking/pkg/logging"
)

// TravelHandler is the stateless travel fee calculator.
type TravelHandler struct {
	resolver lookup.Resolver
	configs  travel.Configs
	logger   *logging.Logger
	metrics  *metrics.EstimateMetrics
}

func NewTravelHandler(resolver lookup.Resolver, configs travel.Configs, logger *logging.Logger, m *metrics.EstimateMetrics) *TravelHandler {
	if configs == nil {
		configs = travel.DefaultConfigs()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TravelHandler{resolver: resolver, configs: configs, logger: logger, metrics: m}
}

type travelCheckRequest struct {
	Address string `json:"address"`
	Mode    string `json:"mode"`
}

type travelCheckResponse struct {
	Address     string                `json:"address"`
	Mode        travel.Mode           `json:"mode"`
	Distance    travel.DistanceResult `json:"distance"`
	Approximate bool                  `json:"approximate"`
	Evaluation  travel.FeeEvaluation  `json:"evaluation"`
	Description string                `json:"description"`
}

type travelErrorResponse struct {
	ErrorKind travel.ErrorKind `json:"error_kind"`
	Message   string           `json:"message"`
}

// Check handles POST /api/v1/travel/check.
func (h *TravelHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req travelCheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	address := strings.TrimSpace(req.Address)
	if address == "" {
		jsonError(w, "address is required", http.StatusBadRequest)
		return
	}
	mode := travel.ModeInHome
	if strings.TrimSpace(req.Mode) != "" {
		parsed, err := travel.ParseMode(req.Mode)
		if err != nil {
			jsonError(w, "unknown fulfillment mode", http.StatusBadRequest)
			return
		}
		mode = parsed
	}
	cfg, err := h.configs.For(mode)
	if err != nil {
		jsonError(w, "unknown fulfillment mode", http.StatusBadRequest)
		return
	}

	dist, err := h.resolver.Resolve(r.Context(), address)
	if err != nil {
		kind := travel.KindOf(err)
		h.logger.Warn("travel check failed", "error", err, "error_kind", kind)
		writeJSON(w, statusForKind(kind), travelErrorResponse{ErrorKind: kind, Message: travel.UserMessage(kind)})
		return
	}

	eval := travel.Evaluate(dist, cfg)
	h.metrics.ObserveFeeEvaluation(string(eval.Mode), string(eval.Status))
	writeJSON(w, http.StatusOK, travelCheckResponse{
		Address:     address,
		Mode:        mode,
		Distance:    dist,
		Approximate: dist.Approximate(),
		Evaluation:  eval,
		Description: travel.Describe(eval, cfg),
	})
}

func statusForKind(kind travel.ErrorKind) int {
	switch kind {
	case travel.KindAddressNotFound:
		return http.StatusUnprocessableEntity
	case travel.KindRateLimited:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

