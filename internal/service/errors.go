package service

import (
	"fmt"

	"github.com/google/uuid"
)

// ConflictError signals a state conflict: a second open session, or an
// operation applied to a session in the wrong state. SesionID carries the
// conflicting session so the caller can resolve manually.
type ConflictError struct {
	Motivo   string
	SesionID uuid.UUID
}

func (e *ConflictError) Error() string {
	if e.SesionID != uuid.Nil {
		return fmt.Sprintf("%s (sesión %s)", e.Motivo, e.SesionID)
	}
	return e.Motivo
}

// NotFoundError signals an unknown entity id. Motivo is the full message.
type NotFoundError struct {
	Motivo string
}

func (e *NotFoundError) Error() string {
	return e.Motivo
}

// ValidationError carries the offending field.
type ValidationError struct {
	Campo  string
	Motivo string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Campo, e.Motivo)
}
