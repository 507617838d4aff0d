package domain

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the import path. Everything here is recoverable:
// the batch reports the message and the caller re-triggers the upload.
var (
	// ErrInvalidInput means a profile form was submitted with missing fields.
	ErrInvalidInput = errors.New("preencha todos os campos e selecione um layout")

	// ErrFileRead means a local file could not be read or decoded.
	ErrFileRead = errors.New("erro ao ler arquivo local")

	// ErrNoTransactions means extraction produced an empty list.
	ErrNoTransactions = errors.New("nenhum lançamento de rendimento ou movimentação encontrado neste extrato")

	// ErrRegimeNotImplemented is returned for tax regimes without a
	// computation path (currently LUCRO_REAL).
	ErrRegimeNotImplemented = errors.New("regime sem apuração implementada")
)

// LayoutMismatchError is returned when the external model reports that the
// document does not belong to the layout the caller requested.
type LayoutMismatchError struct {
	Requested LayoutType
	Detected  string
}

func (e *LayoutMismatchError) Error() string {
	detected := e.Detected
	if detected == "" {
		detected = "Outro"
	}
	return fmt.Sprintf("divergência: o arquivo enviado não parece ser do layout %s; identificado como: %s", e.Requested, detected)
}

// UpstreamError wraps a failure of the external document-understanding
// service, including responses whose shape violates the expected schema.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err as an UpstreamError.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}
