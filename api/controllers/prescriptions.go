package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/novaderm/clinic-backend/api/middleware"
	"github.com/novaderm/clinic-backend/api/responses"
	"github.com/novaderm/clinic-backend/api/validators"
	"github.com/novaderm/clinic-backend/internal/prescriptions"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/logger"
)

type createPrescriptionRequest struct {
	Type             string           `json:"type" validate:"required"`
	Name             string           `json:"name"`
	Quantity         int              `json:"quantity" validate:"required,gt=0"`
	Instructions     *string          `json:"instructions"`
	UnitPrice        *decimal.Decimal `json:"unit_price"`
	CustomerID       int64            `json:"customer_id" validate:"required,gt=0"`
	ConsultationID   *int64           `json:"consultation_id" validate:"omitempty,gt=0"`
	ConsultationDate time.Time        `json:"consultation_date" validate:"required"`
	ProductID        *int64           `json:"product_id" validate:"omitempty,gt=0"`
}

// PrescriptionCreate issues a prescription on behalf of the authenticated
// doctor.
func PrescriptionCreate(svc prescriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescription service unavailable"))
			return
		}

		var payload createPrescriptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParsePrescriptionType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
			return
		}

		input := prescriptions.CreateInput{
			Type:             kind,
			Name:             payload.Name,
			Quantity:         payload.Quantity,
			Instructions:     payload.Instructions,
			CustomerID:       payload.CustomerID,
			DoctorID:         middleware.UserIDFromContext(r.Context()),
			ConsultationID:   payload.ConsultationID,
			ConsultationDate: payload.ConsultationDate,
			ProductID:        payload.ProductID,
		}
		if payload.UnitPrice != nil {
			input.UnitPrice = *payload.UnitPrice
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// PrescriptionGet fetches one prescription by id.
func PrescriptionGet(svc prescriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescription service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "prescriptionId"), "prescriptionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PrescriptionList returns a customer's prescription history, newest first,
// optionally narrowed to one status.
func PrescriptionList(svc prescriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "prescription service unavailable"))
			return
		}

		customerID, err := validators.ParseQueryID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if customerID == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "customer_id required").WithDetails(map[string]any{"field": "customer_id"}))
			return
		}

		var statusFilter *enums.PrescriptionStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParsePrescriptionStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			statusFilter = &status
		}

		rows, err := svc.ListByCustomer(r.Context(), *customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if statusFilter != nil {
			filtered := rows[:0:0]
			for _, row := range rows {
				if row.Status == statusFilter.String() {
					filtered = append(filtered, row)
				}
			}
			rows = filtered
		}

		responses.WriteSuccess(w, map[string]any{"prescriptions": rows})
	}
}
