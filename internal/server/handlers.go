// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	commonerrors "homecare-admin/internal/common/errors"
	"homecare-admin/internal/documents"
	"homecare-admin/internal/lists"
	"homecare-admin/internal/models"
	"homecare-admin/internal/view"
)

// viewResponse is the JSON contract of one list view page.
type viewResponse struct {
	Rows       interface{}           `json:"rows"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Pages      int                   `json:"pages"`
	Badges     map[view.Category]int `json:"badges"`
	StatusTab  string                `json:"status_tab"`
	SearchTerm string                `json:"search_term"`
	Error      string                `json:"error,omitempty"`
}

type declineRequest struct {
	ReasonChoice string `json:"reason_choice"`
	ReasonOther  string `json:"reason_other"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleView(svc *lists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := parseQuery(r)
		// Without an explicit sort in the query, the column-header toggle
		// state owns the ordering.
		if q.SortKey == "" {
			state := svc.SortState()
			q.SortKey, q.SortDesc = state.Key, state.Desc
		}
		if err := svc.Ensure(r.Context(), q.Status, q.Search); err != nil {
			s.log.Warn("view refresh failed", map[string]interface{}{"error": err.Error()})
		}

		result := svc.View(q)
		writeJSON(w, http.StatusOK, viewResponse{
			Rows:       result.Rows,
			Total:      result.Total,
			Page:       result.Page,
			Pages:      result.Pages,
			Badges:     result.Badges,
			StatusTab:  result.StatusTab,
			SearchTerm: result.SearchTerm,
			Error:      svc.LastError(),
		})
	}
}

// handleSearch is the typing endpoint: it records the term and lets the
// debounce decide when the refetch happens.
func (s *Server) handleSearch(svc *lists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Q string `json:"q"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, commonerrors.NewInvalidDecisionError("invalid search body"))
			return
		}
		svc.Search(body.Q)
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
	}
}

// handleSort is the column-header click endpoint: clicking the active key
// flips direction, switching keys resets to ascending.
func (s *Server) handleSort(svc *lists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Key == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "sort key is required"})
			return
		}

		state := svc.ToggleSort(body.Key)
		dir := "asc"
		if state.Desc {
			dir = "desc"
		}
		writeJSON(w, http.StatusOK, map[string]string{"sort": state.Key, "dir": dir})
	}
}

func (s *Server) handleApprove(svc *lists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := svc.Approve(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "approved"})
	}
}

func (s *Server) handleDecline(svc *lists.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var body declineRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, commonerrors.NewInvalidDecisionError("invalid decline body"))
			return
		}

		d := models.Decision{ReasonChoice: body.ReasonChoice, ReasonOther: body.ReasonOther}
		if err := svc.Decline(r.Context(), id, d); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": id, "status": "declined"})
	}
}

// handleDocuments resolves the raw documents blob of an application group
// into the fixed catalog of known document kinds.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	raw, err := s.appsSrc.Documents(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"group_id":  groupID,
		"documents": documents.ResolveAll(raw),
	})
}

// handleDocumentKind resolves a single catalog kind to its primary URL,
// answering 404 when the kind is unknown or nothing is attached.
func (s *Server) handleDocumentKind(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	kindName := chi.URLParam(r, "kind")

	kind, ok := documents.Lookup(kindName)
	if !ok {
		writeError(w, commonerrors.NewDocumentNotFoundError(kindName))
		return
	}

	raw, err := s.appsSrc.Documents(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	resolved := documents.ResolveURL(raw, kind.Keys, kind.Fuzzy)
	if resolved == "" {
		writeError(w, commonerrors.NewDocumentNotFoundError(kindName))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"group_id": groupID,
		"kind":     kindName,
		"url":      resolved,
	})
}

// handleRequestDetail lazily hydrates one service request row with its
// group detail.
func (s *Server) handleRequestDetail(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")

	detail, err := s.reqsSrc.Detail(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.requests.HydrateRequestDetail(groupID, detail))
}

func parseQuery(r *http.Request) view.Query {
	params := r.URL.Query()

	page, _ := strconv.Atoi(params.Get("page"))
	if page < 1 {
		page = 1
	}

	return view.Query{
		Status:   params.Get("status"),
		Category: view.ParseCategory(params.Get("category")),
		Search:   params.Get("q"),
		SortKey:  params.Get("sort"),
		SortDesc: params.Get("dir") == "desc",
		Page:     page,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	payload := map[string]interface{}{"message": commonerrors.UserMessage(err)}

	if stdErr, ok := err.(*commonerrors.StandardError); ok {
		status = httpStatus(stdErr.Code)
		payload["code"] = stdErr.Code
		payload["category"] = commonerrors.GetErrorCategory(stdErr.Code)
		payload["retryable"] = commonerrors.IsRetryable(err)
	}
	writeJSON(w, status, payload)
}

func httpStatus(code commonerrors.ErrorCode) int {
	switch code {
	case commonerrors.ErrCodeInvalidDecision:
		return http.StatusBadRequest
	case commonerrors.ErrCodeSessionInvalid, commonerrors.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case commonerrors.ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case commonerrors.ErrCodeActionRejected:
		return http.StatusConflict
	case commonerrors.ErrCodeFetchTimeout:
		return http.StatusGatewayTimeout
	case commonerrors.ErrCodeFetchFailed, commonerrors.ErrCodeDecodeFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
