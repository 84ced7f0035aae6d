package service

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorKind classifies domain failures. The transport layer maps kinds to status codes.
type ErrorKind string

const (
	KindInvalidProduct         ErrorKind = "INVALID_PRODUCT"
	KindInvalidQuantity        ErrorKind = "INVALID_QUANTITY"
	KindInsufficientStock      ErrorKind = "INSUFFICIENT_STOCK"
	KindInvalidTabState        ErrorKind = "INVALID_TAB_STATE"
	KindInvalidComboDefinition ErrorKind = "INVALID_COMBO_DEFINITION"
	KindCashSessionConflict    ErrorKind = "CASH_SESSION_CONFLICT"
	KindPaymentMismatch        ErrorKind = "PAYMENT_MISMATCH"
	KindInvalidMovementKind    ErrorKind = "INVALID_MOVEMENT_KIND"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindForbidden              ErrorKind = "FORBIDDEN"
	KindInvalidCredentials     ErrorKind = "INVALID_CREDENTIALS"
	KindConflict               ErrorKind = "CONFLICT"
)

// DomainError carries a kind and a user-facing message.
type DomainError struct {
	Kind ErrorKind
	Msg  string
}

func (e *DomainError) Error() string { return e.Msg }

// Is matches any DomainError of the same kind, so callers can test against the sentinels below.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func newErr(kind ErrorKind, format string, args ...interface{}) error {
	return &DomainError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidProduct         = &DomainError{Kind: KindInvalidProduct, Msg: "Produto inválido ou inativo"}
	ErrInvalidQuantity        = &DomainError{Kind: KindInvalidQuantity, Msg: "Quantidade inválida"}
	ErrInsufficientStock      = &DomainError{Kind: KindInsufficientStock, Msg: "Estoque insuficiente"}
	ErrInvalidTabState        = &DomainError{Kind: KindInvalidTabState, Msg: "Comanda não está aberta"}
	ErrInvalidComboDefinition = &DomainError{Kind: KindInvalidComboDefinition, Msg: "Combo inválido"}
	ErrCashSessionConflict    = &DomainError{Kind: KindCashSessionConflict, Msg: "Conflito de caixa"}
	ErrPaymentMismatch        = &DomainError{Kind: KindPaymentMismatch, Msg: "Pagamento inválido"}
	ErrInvalidMovementKind    = &DomainError{Kind: KindInvalidMovementKind, Msg: "Tipo de movimento inválido"}
	ErrNotFound               = &DomainError{Kind: KindNotFound, Msg: "Registro não encontrado"}
	ErrForbidden              = &DomainError{Kind: KindForbidden, Msg: "Acesso negado"}
	ErrInvalidCredentials     = &DomainError{Kind: KindInvalidCredentials, Msg: "Usuário ou senha inválidos"}
	ErrConflict               = &DomainError{Kind: KindConflict, Msg: "Registro já existe"}
)

// ErrRetryable marks transient concurrency failures (serialization, deadlock, lock timeout).
// The transaction was rolled back; the caller may retry the whole operation.
var ErrRetryable = errors.New("operação concorrente, tente novamente")

// Postgres SQLSTATE codes handled explicitly.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
)

// classifyDBError turns driver errors into domain errors where the database is the one
// enforcing an invariant. Everything else passes through unchanged.
func classifyDBError(err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return fmt.Errorf("%w: %s", ErrRetryable, pgErr.Code)
		case pgUniqueViolation:
			if pgErr.ConstraintName == "uniq_caixa_aberto" {
				return newErr(KindCashSessionConflict, "Já existe um caixa aberto")
			}
		}
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
