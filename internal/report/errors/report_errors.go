package reporterrors

import (
	"net/http"

	"go-outpass/internal/shared/apperror"
)

var (
	ErrUpstreamUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"reports data source is unavailable",
		http.StatusServiceUnavailable,
	)
	ErrExportUnavailable = apperror.New(
		apperror.CodeServiceUnavailable,
		"report export hand-off is not configured",
		http.StatusServiceUnavailable,
	)
)
