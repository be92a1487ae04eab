package v1handler

import (
	"detector/internal/detector"
	"detector/pkg/domain"
	"detector/pkg/serrors"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// Item is the v1 representation of an uploaded item.
type Item struct {
	ID        uuid.UUID  `json:"id"`
	Filename  string     `json:"filename"`
	MediaType string     `json:"mediaType"`
	Size      int64      `json:"size"`
	Status    string     `json:"status"`
	Result    *Result    `json:"result,omitempty"`
	LastError string     `json:"lastError,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type Result struct {
	Judgment  string                  `json:"judgment"`
	Reason    string                  `json:"reason"`
	Records   []domain.AnalysisRecord `json:"records"`
	Timestamp time.Time               `json:"timestamp"`
}

type ItemList struct {
	Items      []Item  `json:"items"`
	NextCursor *string `json:"nextCursor"`
}

func DomainItemToV1(in *domain.Item) Item {
	out := Item{
		ID:        uuid.UUID(in.ID),
		Filename:  in.Filename,
		MediaType: in.MediaType,
		Size:      in.Size,
		Status:    string(in.Status),
		LastError: in.LastError,
		CreatedAt: in.CreatedAt,
	}
	if !in.UpdatedAt.IsZero() {
		updatedAt := in.UpdatedAt
		out.UpdatedAt = &updatedAt
	}
	if in.Result != nil {
		records := in.Result.Records
		if records == nil {
			records = []domain.AnalysisRecord{}
		}
		out.Result = &Result{
			Judgment:  string(in.Result.Judgment),
			Reason:    in.Result.Reason,
			Records:   records,
			Timestamp: in.Result.Timestamp,
		}
	}

	return out
}

func parseItemID(r *http.Request) (domain.ItemID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return domain.ItemID{}, serrors.Wrap(serrors.ErrBadRequest, err, "invalid item id")
	}

	return domain.ItemID(id), nil
}

// CreateItem accepts a multipart upload in the "file" field and queues it for
// analysis.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, r, maxErr)

			return
		}
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid multipart body"))

		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "missing file field"))

		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("could not read upload: %w", err))

		return
	}

	mediaType := header.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}

	item, err := h.deps.Detector.Submit(r.Context(), GetUserIDFromContext(r.Context()), detector.Upload{
		Filename:  header.Filename,
		MediaType: mediaType,
		Content:   content,
	})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusCreated, DomainItemToV1(item))
}

// GetItem returns an item of the current user by ID.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	item, err := h.deps.Detector.Item(r.Context(), GetUserIDFromContext(r.Context()), id)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(r.Context(), w, http.StatusOK, DomainItemToV1(item))
}

// ListItems returns a page of the user's items, newest first.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var limit uint64
	if s := q.Get("limit"); s != "" {
		var err error
		if limit, err = strconv.ParseUint(s, 10, 32); err != nil {
			h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid limit"))

			return
		}
	}

	items, nextCursor, err := h.deps.Detector.Items(r.Context(),
		GetUserIDFromContext(r.Context()),
		domain.ItemStatus(q.Get("status")),
		q.Get("cursor"),
		uint(limit))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	out := ItemList{Items: make([]Item, 0, len(items))}
	for i := range items {
		out.Items = append(out.Items, DomainItemToV1(&items[i]))
	}
	if nextCursor != "" {
		out.NextCursor = &nextCursor
	}

	writeJSON(r.Context(), w, http.StatusOK, out)
}

// DeleteItem deletes an item of the current user.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseItemID(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if err := h.deps.Detector.Delete(r.Context(), GetUserIDFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportHistory downloads every finished item of the user as a JSON document.
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	b, err := h.deps.Detector.Export(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": domain.HistoryFilename(h.now())}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
