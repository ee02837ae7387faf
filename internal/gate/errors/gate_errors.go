package gateerrors

import (
	"net/http"

	"go-outpass/internal/shared/apperror"
)

var (
	ErrInvalidPassCode = apperror.New(
		apperror.CodeInvalidInput,
		"invalid pass code",
		http.StatusBadRequest,
	)
	ErrPassUnknown = apperror.New(
		apperror.CodeNotFound,
		"no outpass for this pass code",
		http.StatusNotFound,
	)
	ErrPassNotActive = apperror.New(
		apperror.CodeInvalidState,
		"outpass is not in a scannable state",
		http.StatusConflict,
	)
	ErrEntryAlreadyRecorded = apperror.New(
		apperror.CodeConflict,
		"entry already recorded for this outpass",
		http.StatusConflict,
	)
)
