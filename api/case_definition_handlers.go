package api

import (
	"net/http"
	"strconv"

	"casetracker/core"
)

const mergePatchContentType = "application/merge-patch+json"

// createCaseDefinition godoc
//
//	@Summary		Create case definition
//	@Description	Creates a new case definition. The body must not carry an id.
//	@Tags			case-definitions
//	@Accept			json
//	@Produce		json
//	@Param			caseDefinition	body		core.CaseDefinition	true	"Case definition"
//	@Success		201				{object}	core.CaseDefinition
//	@Failure		400				{object}	Problem
//	@Router			/api/case-definitions [post]
func (a *API) createCaseDefinition(w http.ResponseWriter, r *http.Request) {
	var body core.CaseDefinition
	if err := a.decodeJSONBody(w, r, &body); err != nil {
		return
	}
	if !a.validateBody(w, core.EntityCaseDefinition, &body) {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to save CaseDefinition", "case_definition", body.String())

	created, err := a.caseDefinitions.Create(r.Context(), &body)
	if err != nil {
		a.writeServiceError(w, r, core.EntityCaseDefinition, err)
		return
	}

	w.Header().Set("Location", "/api/"+core.ResourceCaseDefinitions+"/"+strconv.FormatInt(*created.ID, 10))
	a.setEntityAlert(w, core.EntityCaseDefinition, alertCreated, *created.ID)
	a.respondJSON(w, created, http.StatusCreated)
}

// updateCaseDefinition godoc
//
//	@Summary		Replace case definition
//	@Description	Overwrites every field of an existing case definition. The body id must equal the path id.
//	@Tags			case-definitions
//	@Accept			json
//	@Produce		json
//	@Param			id				path		int					true	"Case definition ID"
//	@Param			caseDefinition	body		core.CaseDefinition	true	"Case definition"
//	@Success		200				{object}	core.CaseDefinition
//	@Failure		400				{object}	Problem
//	@Failure		404				{object}	Problem
//	@Router			/api/case-definitions/{id} [put]
func (a *API) updateCaseDefinition(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseIDParam(w, r, core.EntityCaseDefinition)
	if !ok {
		return
	}

	var body core.CaseDefinition
	if err := a.decodeJSONBody(w, r, &body); err != nil {
		return
	}
	if !a.validateBody(w, core.EntityCaseDefinition, &body) {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to update CaseDefinition", "id", id, "case_definition", body.String())

	updated, err := a.caseDefinitions.Replace(r.Context(), id, &body)
	if err != nil {
		a.writeServiceError(w, r, core.EntityCaseDefinition, err)
		return
	}

	a.setEntityAlert(w, core.EntityCaseDefinition, alertUpdated, *updated.ID)
	a.respondJSON(w, updated, http.StatusOK)
}

// partialUpdateCaseDefinition godoc
//
//	@Summary		Partially update case definition
//	@Description	Merges the present fields into an existing case definition. An explicit null clears a field.
//	@Tags			case-definitions
//	@Accept			json
//	@Accept			application/merge-patch+json
//	@Produce		json
//	@Param			id		path		int							true	"Case definition ID"
//	@Param			patch	body		core.CaseDefinitionPatch	true	"Fields to change"
//	@Success		200		{object}	core.CaseDefinition
//	@Failure		400		{object}	Problem
//	@Failure		404		{object}	Problem
//	@Router			/api/case-definitions/{id} [patch]
func (a *API) partialUpdateCaseDefinition(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseIDParam(w, r, core.EntityCaseDefinition)
	if !ok {
		return
	}
	if !a.requireContentType(w, r, "application/json", mergePatchContentType) {
		return
	}

	var patch core.CaseDefinitionPatch
	if err := a.decodeJSONBody(w, r, &patch); err != nil {
		return
	}
	if !a.validateBody(w, core.EntityCaseDefinition, &patch) {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to partial update CaseDefinition", "id", id)

	updated, err := a.caseDefinitions.PartialUpdate(r.Context(), id, &patch)
	if err != nil {
		a.writeServiceError(w, r, core.EntityCaseDefinition, err)
		return
	}

	a.setEntityAlert(w, core.EntityCaseDefinition, alertUpdated, *updated.ID)
	a.respondJSON(w, updated, http.StatusOK)
}

// getAllCaseDefinitions godoc
//
//	@Summary		List case definitions
//	@Description	Returns one page of case definitions. Totals and navigation are in the X-Total-Count and Link headers.
//	@Tags			case-definitions
//	@Produce		json
//	@Param			page	query	int		false	"Zero-based page index"	default(0)
//	@Param			size	query	int		false	"Page size"				default(20)
//	@Param			sort	query	string	false	"Sort as property,asc|desc (repeatable)"
//	@Success		200		{array}	core.CaseDefinition
//	@Router			/api/case-definitions [get]
func (a *API) getAllCaseDefinitions(w http.ResponseWriter, r *http.Request) {
	req := ParsePageRequest(r, a.config.API.Pagination.DefaultSize, a.config.API.Pagination.MaxSize)

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to get a page of CaseDefinitions", "page", req.Page, "size", req.Size)

	page, err := a.caseDefinitions.List(r.Context(), req)
	if err != nil {
		a.writeServiceError(w, r, core.EntityCaseDefinition, err)
		return
	}

	writePaginationHeaders(w, r, page)
	a.respondJSON(w, page.Items, http.StatusOK)
}

// getCaseDefinition godoc
//
//	@Summary		Get case definition
//	@Tags			case-definitions
//	@Produce		json
//	@Param			id	path		int	true	"Case definition ID"
//	@Success		200	{object}	core.CaseDefinition
//	@Failure		404	{object}	Problem
//	@Router			/api/case-definitions/{id} [get]
func (a *API) getCaseDefinition(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseIDParam(w, r, core.EntityCaseDefinition)
	if !ok {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to get CaseDefinition", "id", id)

	c, err := a.caseDefinitions.Get(r.Context(), id)
	if err != nil {
		a.writeServiceError(w, r, core.EntityCaseDefinition, err)
		return
	}

	a.respondJSON(w, c, http.StatusOK)
}

// deleteCaseDefinition godoc
//
//	@Summary		Delete case definition
//	@Description	Deletes the case definition if present. Examines referencing it keep existing without a reference.
//	@Tags			case-definitions
//	@Param			id	path	int	true	"Case definition ID"
//	@Success		204
//	@Router			/api/case-definitions/{id} [delete]
func (a *API) deleteCaseDefinition(w http.ResponseWriter, r *http.Request) {
	id, ok := a.parseIDParam(w, r, core.EntityCaseDefinition)
	if !ok {
		return
	}

	LogWithRequestID(r.Context(), a.logger).Debugw("REST request to delete CaseDefinition", "id", id)

	if err := a.caseDefinitions.Delete(r.Context(), id); err != nil {
		a.writeServiceError(w, r, core.EntityCaseDefinition, err)
		return
	}

	a.setEntityAlert(w, core.EntityCaseDefinition, alertDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}
