package api

import (
	"net/http"
	"strconv"

	"casetracker/core"
)

// createExamine godoc
//
//	@Summary		Create examine
//	@Description	Creates a new examine. The body must not carry an id. The case definition reference may be given as caseDefinitionId or caseDefinition.id.
//	@Tags			examines
//	@Accept			json
//	@Produce		json
//	@Param			examine	body		core.Examine	true	"Examine"
//	@Success		201		{object}	core.Examine
//	@Failure		400		{object}	Problem
//	@Router			/api/examines [post]
func (a *API) createExamine(w http.ResponseWriter, r *http.Request) {
	var body core.Examine
	if err := a.decodeJSONBody(w, r, &body); err != nil {
		return
	}
	if !a.validateBody(w, core.EntityExamine, &body) {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to save Examine", "examine", body.String())

	created, err := a.examines.Create(r.Context(), &body)
	if err != nil {
		a.writeServiceError(w, r, core.EntityExamine, err)
		return
	}

	w.Header().Set("Location", "/api/"+core.ResourceExamines+"/"+strconv.FormatInt(*created.ID, 10))
	a.setEntityAlert(w, core.EntityExamine, alertCreated, *created.ID)
	a.respondJSON(w, created, http.StatusCreated)
}

// updateExamine godoc
//
//	@Summary		Replace examine
//	@Description	Overwrites every field of an existing examine. The body id must equal the path id.
//	@Tags			examines
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Examine ID"
//	@Param			examine	body		core.Examine	true	"Examine"
//	@Success		200		{object}	core.Examine
//	@Failure		400		{object}	Problem
//	@Failure		404		{object}	Problem
//	@Router			/api/examines/{id} [put]
func (a *API) updateExamine(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseIDParam(w, r, core.EntityExamine)
	if !ok {
		return
	}

	var body core.Examine
	if err := a.decodeJSONBody(w, r, &body); err != nil {
		return
	}
	if !a.validateBody(w, core.EntityExamine, &body) {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to update Examine", "id", id, "examine", body.String())

	updated, err := a.examines.Replace(r.Context(), id, &body)
	if err != nil {
		a.writeServiceError(w, r, core.EntityExamine, err)
		return
	}

	a.setEntityAlert(w, core.EntityExamine, alertUpdated, *updated.ID)
	a.respondJSON(w, updated, http.StatusOK)
}

// partialUpdateExamine godoc
//
//	@Summary		Partially update examine
//	@Description	Merges the present fields into an existing examine. An explicit null clears a field, including the case definition reference.
//	@Tags			examines
//	@Accept			json
//	@Accept			application/merge-patch+json
//	@Produce		json
//	@Param			id		path		int							true	"Examine ID"
//	@Param			patch	body		core.ExaminePatch	true	"Fields to change"
//	@Success		200		{object}	core.Examine
//	@Failure		400		{object}	Problem
//	@Failure		404		{object}	Problem
//	@Router			/api/examines/{id} [patch]
func (a *API) partialUpdateExamine(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseIDParam(w, r, core.EntityExamine)
	if !ok {
		return
	}
	if !a.requireContentType(w, r, "application/json", mergePatchContentType) {
		return
	}

	var patch core.ExaminePatch
	if err := a.decodeJSONBody(w, r, &patch); err != nil {
		return
	}
	if !a.validateBody(w, core.EntityExamine, &patch) {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to partial update Examine", "id", id)

	updated, err := a.examines.PartialUpdate(r.Context(), id, &patch)
	if err != nil {
		a.writeServiceError(w, r, core.EntityExamine, err)
		return
	}

	a.setEntityAlert(w, core.EntityExamine, alertUpdated, *updated.ID)
	a.respondJSON(w, updated, http.StatusOK)
}

// getAllExamines godoc
//
//	@Summary		List examines
//	@Description	Returns one page of examines. Totals and navigation are in the X-Total-Count and Link headers.
//	@Tags			examines
//	@Produce		json
//	@Param			page	query	int		false	"Zero-based page index"	default(0)
//	@Param			size	query	int		false	"Page size"				default(20)
//	@Param			sort	query	string	false	"Sort as property,asc|desc (repeatable)"
//	@Success		200		{array}	core.Examine
//	@Router			/api/examines [get]
func (a *API) getAllExamines(w http.ResponseWriter, r *http.Request) {
	req := ParsePageRequest(r, a.config.API.Pagination.DefaultSize, a.config.API.Pagination.MaxSize)

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to get a page of Examines", "page", req.Page, "size", req.Size)

	page, err := a.examines.List(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, r, core.EntityExamine, err)
		return
	}

	writePaginationHeaders(w, r, page)
	a.respondJSON(w, page.Items, http.StatusOK)
}

// getExamine godoc
//
//	@Summary		Get examine
//	@Tags			examines
//	@Produce		json
//	@Param			id	path		int	true	"Examine ID"
//	@Success		200	{object}	core.Examine
//	@Failure		404	{object}	Problem
//	@Router			/api/examines/{id} [get]
func (a *API) getExamine(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseIDParam(w, r, core.EntityExamine)
	if !ok {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to get Examine", "id", id)

	e, err := a.examines.Get(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, core.EntityExamine, err)
		return
	}

	a.respondJSON(w, e, http.StatusOK)
}

// deleteExamine godoc
//
//	@Summary		Delete examine
//	@Description	Deletes the examine if present. The referenced case definition is not touched.
//	@Tags			examines
//	@Param			id	path	int	true	"Examine ID"
//	@Success		204
//	@Router			/api/examines/{id} [delete]
func (a *API) deleteExamine(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseIDParam(w, r, core.EntityExamine)
	if !ok {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to delete Examine", "id", id)

	if err := a.examines.Delete(r.Context(), id); err != nil {
		a.writeServiceError(w, r, core.EntityExamine, err)
		return
	}

	a.setEntityAlert(w, core.EntityExamine, alertDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}
