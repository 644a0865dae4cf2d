// Vitrina - Localized Content Discovery Storefront
// Copyright 2026 Vitrina Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrina-app/vitrina

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// PicksRequest is the body of POST /api/v1/picks. The client sends its
// taste signals; the server may top up recent ids from recorded views when
// the client omits them.
type PicksRequest struct {
	FavoriteIDs []int64 `json:"favorite_ids" validate:"omitempty,dive,gt=0"`
	RecentIDs   []int64 `json:"recent_ids" validate:"omitempty,dive,gt=0"`
	Limit       int     `json:"limit" validate:"omitempty,gte=1,lte=50"`
}

// RecordViewRequest is the body of POST /api/v1/views.
type RecordViewRequest struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}

// SetPanelKeyRequest is the body of POST /api/v1/panels/{panel}/key.
type SetPanelKeyRequest struct {
	Key string `json:"key" validate:"required,max=128"`
}

// ReorderSectionsRequest is the body of POST /api/v1/pages/{page}/sections/reorder.
type ReorderSectionsRequest struct {
	From int `json:"from" validate:"gte=0"`
	To   int `json:"to" validate:"gte=0"`
}

// decodeAndValidate unmarshals a JSON request body into dst and runs
// struct validation.
func (h *Handler) decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid field %s", verrs[0].Field())
		}
		return err
	}
	return nil
}
