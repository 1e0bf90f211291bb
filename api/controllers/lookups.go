package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/novaderm/clinic-backend/api/responses"
	"github.com/novaderm/clinic-backend/api/validators"
	"github.com/novaderm/clinic-backend/internal/lookups"
	"github.com/novaderm/clinic-backend/pkg/enums"
	pkgerrors "github.com/novaderm/clinic-backend/pkg/errors"
	"github.com/novaderm/clinic-backend/pkg/logger"
)

func lookupTypeFromPath(r *http.Request) (enums.LookupType, error) {
	lookupType, err := enums.ParseLookupType(chi.URLParam(r, "lookupType"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid lookup type")
	}
	return lookupType, nil
}

// LookupList returns every option of one intake-form list.
func LookupList(svc lookups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		lookupType, err := lookupTypeFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.List(r.Context(), lookupType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"entries": entries})
	}
}

type createLookupRequest struct {
	Label     string `json:"label" validate:"required,min=1,max=120"`
	SortOrder int    `json:"sort_order" validate:"min=0"`
}

// LookupCreate adds an option to one intake-form list.
func LookupCreate(svc lookups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		lookupType, err := lookupTypeFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createLookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Create(r.Context(), lookupType, payload.Label, payload.SortOrder)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// LookupDelete removes an option from one intake-form list.
func LookupDelete(svc lookups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lookup service unavailable"))
			return
		}

		lookupType, err := lookupTypeFromPath(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "entryId"), "entryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), lookupType, id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Entry removed"})
	}
}
