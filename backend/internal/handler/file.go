package handler

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/itchan-dev/filesmanager/shared/api"
	"github.com/itchan-dev/filesmanager/shared/domain"
	"github.com/itchan-dev/filesmanager/shared/errors"
	"github.com/itchan-dev/filesmanager/shared/logger"
	mw "github.com/itchan-dev/filesmanager/shared/middleware"
	"github.com/itchan-dev/filesmanager/shared/utils"
)

// sniffLen is how many leading bytes are inspected when the name gives no content type.
const sniffLen = 3072

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Public.MaxBodySize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Public.MaxBodySize)
	}

	var body api.UploadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	file, err := h.file.Upload(r.Context(), mw.GetUserIdFromContext(r), domain.UploadData{
		Name:     body.Name,
		Type:     domain.FileType(body.Type),
		Data:     body.Data,
		ParentId: parseParentId(body.ParentId),
		IsPublic: body.IsPublic,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, api.NewFileResponse(file, true))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := fileIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	file, err := h.file.Get(r.Context(), mw.GetUserIdFromContext(r), id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewFileResponse(file, false))
}

// Index lists the caller's records under ?parentId= (root by default), one ?page= at a time.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	userId := mw.GetUserIdFromContext(r)
	if userId == nil {
		utils.WriteErrorAndStatusCode(w, errors.ErrUnauthorized)
		return
	}

	// an id that cannot exist has no children, the listing comes back empty
	parentId := parseParentId(r.URL.Query().Get("parentId"))
	files, err := h.file.List(r.Context(), *userId, parentId, intQuery(r, "page", 0))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewFileListResponse(files))
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, true)
}

func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, false)
}

func (h *Handler) setPublic(w http.ResponseWriter, r *http.Request, isPublic bool) {
	id, err := fileIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	caller := mw.GetUserIdFromContext(r)
	var file *domain.File
	if isPublic {
		file, err = h.file.Publish(r.Context(), caller, id)
	} else {
		file, err = h.file.Unpublish(r.Context(), caller, id)
	}
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.NewFileResponse(file, false))
}

// Data streams the stored bytes. ?size= selects a thumbnail variant.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	id, err := fileIdParam(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		if size, err = strconv.Atoi(raw); err != nil {
			utils.WriteErrorAndStatusCode(w, errors.ErrNotFound)
			return
		}
	}

	rc, file, err := h.file.Data(r.Context(), mw.GetUserIdFromContext(r), id, size)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	head = head[:n]

	// variants may be re-encoded, so only the original trusts its name
	contentType := ""
	if size == 0 {
		contentType = mime.TypeByExtension(filepath.Ext(file.Name))
	}
	if contentType == "" {
		contentType = mimetype.Detect(head).String()
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, io.MultiReader(bytes.NewReader(head), rc)); err != nil {
		logger.Log.Warn("failed to stream file", "file_id", id.Hex(), "error", err)
	}
}
