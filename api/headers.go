package api

import (
	"net/http"
	"net/url"
	"strconv"
)

// Alert actions reported in the X-<app>-alert header
const (
	alertCreated = "created"
	alertUpdated = "updated"
	alertDeleted = "deleted"
)

func (a *API) alertHeader() string  { return "X-" + a.config.API.ApplicationName + "-alert" }
func (a *API) errorHeader() string  { return "X-" + a.config.API.ApplicationName + "-error" }
func (a *API) paramsHeader() string { return "X-" + a.config.API.ApplicationName + "-params" }

// setEntityAlert marks a successful mutation, e.g. casetrackerApp.examine.updated
func (a *API) setEntityAlert(w http.ResponseWriter, entity, action string, id int64) {
	w.Header().Set(a.alertHeader(), a.config.API.ApplicationName+"."+entity+"."+action)
	w.Header().Set(a.paramsHeader(), strconv.FormatInt(id, 10))
}

// setFailureAlert marks a client failure, e.g. error.idexists
func (a *API) setFailureAlert(w http.ResponseWriter, entity, errorKey string) {
	w.Header().Set(a.errorHeader(), "error."+errorKey)
	w.Header().Set(a.paramsHeader(), url.QueryEscape(entity))
}
