package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/tarea-api/internal/domain"
	"github.com/phrazzld/tarea-api/internal/store"
)

// Fixed client-facing messages. The wording is part of the deployed
// API's contract and must not change.
const (
	MsgTareaNotFound  = "Tarea no encontrada"
	MsgFileNotFound   = "Archivo no encontrado"
	MsgTooManyFiles   = "No puedes tener más de 3 archivos en total."
	MsgFileTypeDenied = "Tipo de archivo no permitido. Solo se aceptan imágenes y PDFs."
	MsgFileTooLarge   = "El archivo supera el tamaño máximo de 10MB."
	MsgDuplicateFile  = "No puedes adjuntar el mismo archivo dos veces."
	MsgInvalidRequest = "Formato de solicitud no válido"
	MsgGenericFailure = "Error al procesar la solicitud"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, store.ErrTareaNotFound),
		errors.Is(err, store.ErrFileNotFound):
		return http.StatusNotFound

	// Bad request errors: all checked before any mutating side effect
	case errors.Is(err, domain.ErrTooManyAttachments),
		errors.Is(err, domain.ErrDuplicateAttachment),
		errors.Is(err, domain.ErrEmptyAttachmentName),
		errors.Is(err, ErrTooManyUploadFiles),
		errors.Is(err, ErrFileTypeNotAllowed),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, store.ErrInvalidCursor):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal
// details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return MsgGenericFailure
	}

	switch {
	case errors.Is(err, store.ErrTareaNotFound):
		return MsgTareaNotFound

	case errors.Is(err, store.ErrFileNotFound):
		return MsgFileNotFound

	case errors.Is(err, domain.ErrTooManyAttachments),
		errors.Is(err, ErrTooManyUploadFiles):
		return MsgTooManyFiles

	case errors.Is(err, ErrFileTypeNotAllowed):
		return MsgFileTypeDenied

	case errors.Is(err, ErrFileTooLarge):
		return MsgFileTooLarge

	case errors.Is(err, domain.ErrDuplicateAttachment),
		errors.Is(err, domain.ErrEmptyAttachmentName):
		return MsgDuplicateFile

	case errors.Is(err, store.ErrInvalidCursor):
		return MsgInvalidRequest

	default:
		return MsgGenericFailure
	}
}
