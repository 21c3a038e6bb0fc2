package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/team-dbx/dbx/internal/common"
	"github.com/team-dbx/dbx/internal/dto"
	"github.com/team-dbx/dbx/internal/server/models"
)

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", common.ErrorValidation, tooLarge.Limit)
		}
		return fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return nil
}

func toDTO(cats []models.Category) dto.CategoriesResponse {
	out := dto.CategoriesResponse{Categories: make([]dto.Category, 0, len(cats))}
	for _, c := range cats {
		out.Categories = append(out.Categories, dto.Category{ID: c.ID, Name: c.Name})
	}
	return out
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decode(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.IDToken) == "" {
		a.writeError(w, r, fmt.Errorf("%w: email and idToken are required", common.ErrorValidation))
		return
	}

	initial, err := a.users.Login(r.Context(), req.Email, req.IDToken)
	if err != nil {
		a.log.Info(r.Context(), "login rejected", "email", req.Email, "error", err)
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.LoginResponse{IsInitialUser: initial, Result: common.ResultOK})
}

func (a *API) initialSetting(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.InitialSetting(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(cats))
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(cats))
}

func (a *API) listResources(w http.ResponseWriter, r *http.Request) {
	list, err := a.resources.List(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CategoryListResponse{CategoryList: list})
}

func (a *API) detail(w http.ResponseWriter, r *http.Request) {
	d, err := a.resources.Detail(r.Context(), chi.URLParam(r, "categoryID"), chi.URLParam(r, "resourceID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) versions(w http.ResponseWriter, r *http.Request) {
	vs, err := a.resources.Versions(r.Context(), chi.URLParam(r, "categoryID"), chi.URLParam(r, "resourceID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.VersionsResponse{Versions: vs})
}

func (a *API) createResource(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	var req dto.UploadRequest
	if err := decode(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	resp, err := a.resources.Create(r.Context(), chi.URLParam(r, "categoryID"), user, &req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (a *API) addVersion(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	var req dto.UploadRequest
	if err := decode(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	resp, err := a.resources.AddVersion(r.Context(), chi.URLParam(r, "categoryID"), chi.URLParam(r, "resourceID"), user, &req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// deleteResource answers FAIL, not 404, for a resource that does not exist.
func (a *API) deleteResource(w http.ResponseWriter, r *http.Request) {
	ok, err := a.resources.Delete(r.Context(), chi.URLParam(r, "categoryID"), chi.URLParam(r, "resourceID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	result := common.ResultOK
	if !ok {
		result = common.ResultFail
	}
	writeJSON(w, http.StatusOK, dto.ResultResponse{Result: result})
}
