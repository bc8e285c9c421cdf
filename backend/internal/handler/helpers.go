package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fileIdParam reads the {id} path parameter. Malformed ids cannot exist and
// are reported as not found.
func fileIdParam(r *http.Request) (domain.FileId, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return domain.FileId{}, errors.ErrNotFound
	}
	return id, nil
}

// parseParentId accepts what clients send as parentId: absent, 0, "0" or "" for
// the root, otherwise a hex id. Anything else becomes the zero id, which no
// record has, so the service reports it in its own validation order.
func parseParentId(v any) *domain.FileId {
	switch p := v.(type) {
	case nil:
		return nil
	case float64:
		if p == 0 {
			return nil
		}
	case string:
		if p == "" || p == "0" {
			return nil
		}
		if id, err := primitive.ObjectIDFromHex(p); err == nil {
			return &id
		}
	}
	unknown := primitive.NilObjectID
	return &unknown
}

// intQuery returns the integer query parameter or def when it is absent or malformed.
func intQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
