package reservation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"innkeeper/infras/otel"
	"innkeeper/internal/domains/reservation/model/dto"
	"innkeeper/internal/domains/reservation/service"
	"innkeeper/shared/constant"
	"innkeeper/shared/validator"
	"innkeeper/transport/http/response"
)

type Handler struct {
	service service.Reservation
	otel    otel.Otel
}

func New(service service.Reservation, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/reservations", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateReservation)
		routerGroup.Get("/", handler.GetReservations)
		routerGroup.Get("/{id}", handler.GetReservationByID)
		routerGroup.Patch("/{id}", handler.UpdateReservation)
		routerGroup.Delete("/{id}", handler.DeleteReservation)
	})
}

// CreateReservation handles the creation of a new reservation.
// @Summary Create a new reservation
// @Description Create a new reservation record under the authenticated tenant.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param request body dto.CreateReservationRequest true "Create Reservation Request"
// @Success 201 {object} response.Data[model.ReservationRecord] "Reservation created successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations [post]
// @Security BearerAuth
func (handler *Handler) CreateReservation(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateReservation")
	defer scope.End()

	req := dto.CreateReservationRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	rec, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create reservation")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Reservation created successfully")

	response.WithJSON(writer, http.StatusCreated, rec)
}

// GetReservations retrieves every reservation for the authenticated tenant.
// @Summary Get all reservations
// @Description Retrieve all reservations for the authenticated tenant, sorted by check-in date.
// @Tags Reservation
// @Accept json
// @Produce json
// @Success 200 {object} response.Data[dto.GetReservationsResponse] "List of reservations"
// @Failure 401 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations [get]
// @Security BearerAuth
func (handler *Handler) GetReservations(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservations")
	defer scope.End()

	reservations, err := handler.service.GetAll(ctx)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservations")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservations retrieved successfully")

	response.WithJSON(w, http.StatusOK, reservations)
}

// GetReservationByID retrieves a reservation by its ID.
// @Summary Get a reservation by ID
// @Description Retrieve a reservation by its unique identifier.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Data[model.ReservationRecord] "Reservation details"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetReservationByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetReservationByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	rec, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get reservation by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation retrieved successfully")

	response.WithJSON(w, http.StatusOK, rec)
}

// UpdateReservation updates an existing reservation by its ID.
// @Summary Update a reservation by ID
// @Description Update the details of an existing reservation.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Param request body dto.UpdateReservationRequest true "Update Reservation Request"
// @Success 200 {object} response.Data[model.ReservationRecord] "Reservation updated successfully"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateReservation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.UpdateReservationRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	rec, err := handler.service.Update(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update reservation")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation updated successfully")

	response.WithJSON(w, http.StatusOK, rec)
}

// DeleteReservation deletes a reservation by its ID.
// @Summary Delete a reservation by ID
// @Description Delete a reservation using its unique identifier.
// @Tags Reservation
// @Accept json
// @Produce json
// @Param id path string true "Reservation ID"
// @Success 200 {object} response.Message "Reservation deleted successfully"
// @Failure 401 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/reservations/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteReservation")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete reservation")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Reservation deleted successfully")

	response.WithMessage(w, http.StatusOK, "Reservation deleted successfully")
}
