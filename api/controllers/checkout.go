package controllers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/novaderm/clinic-backend/api/middleware"
	"github.com/novaderm/clinic-backend/api/responses"
	"github.com/novaderm/clinic-backend/api/validators"
	checkoutsvc "github.com/novaderm/clinic-backend/internal/checkout"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/logger"
)

// CheckoutPending lists prescriptions still processable at the counter.
func CheckoutPending(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		customerID, err := validators.ParseQueryID(r, "customer_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListPending(r.Context(), checkoutsvc.ListParams{
			CustomerID: customerID,
			Page:       page.Page,
			PerPage:    page.PerPage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type checkoutRequest struct {
	PrescriptionIDs []int64 `json:"prescription_ids" validate:"required,min=1,dive,gt=0"`
}

type checkoutResponse struct {
	Message           string          `json:"message"`
	CheckoutID        string          `json:"checkout_id"`
	ProductsProcessed int             `json:"products_processed"`
	ServicesProcessed int             `json:"services_processed"`
	TotalItems        int             `json:"total_items"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	ProcessedAt       time.Time       `json:"processed_at"`
}

// CheckoutSubmit executes the selected batch as one unit.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Submit(r.Context(), checkoutsvc.SubmitInput{
			PrescriptionIDs: payload.PrescriptionIDs,
			ProcessedBy:     middleware.UserIDFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			Message:           "Checkout completed",
			CheckoutID:        receipt.CheckoutID,
			ProductsProcessed: receipt.ProductCount,
			ServicesProcessed: receipt.ServiceCount,
			TotalItems:        receipt.TotalItems,
			TotalAmount:       receipt.TotalAmount,
			ProcessedAt:       receipt.ProcessedAt,
		})
	}
}

type updateStatusRequest struct {
	PrescriptionID *int64  `json:"prescription_id" validate:"omitempty,gt=0"`
	CustomerID     *int64  `json:"customer_id" validate:"omitempty,gt=0"`
	Type           *string `json:"type"`
	Status         string  `json:"status" validate:"required"`
}

type updateStatusResponse struct {
	Message    string  `json:"message"`
	Status     string  `json:"status"`
	UpdatedIDs []int64 `json:"updated_ids"`
}

// CheckoutUpdateStatus moves one prescription, or a customer's batch,
// through the lifecycle outside full checkout.
func CheckoutUpdateStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload updateStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParsePrescriptionStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		input := checkoutsvc.UpdateStatusInput{
			PrescriptionID: payload.PrescriptionID,
			CustomerID:     payload.CustomerID,
			Status:         status,
		}
		if payload.Type != nil {
			kind, err := enums.ParsePrescriptionType(*payload.Type)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type"))
				return
			}
			input.Type = &kind
		}

		result, err := svc.UpdateStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updateStatusResponse{
			Message:    "Status updated",
			Status:     result.Status.String(),
			UpdatedIDs: result.UpdatedIDs,
		})
	}
}
