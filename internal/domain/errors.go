package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	// Transport: сеть, таймаут, не-2xx ответ.
	Transport ErrorKind = iota + 1
	// Schema: тело не разобрать, нет полей, код ошибки площадки, пустой стакан.
	Schema
)

func (k ErrorKind) String() string {
	switch k {
	case Transport:
		return "transport"
	case Schema:
		return "schema"
	default:
		return "unknown"
	}
}

// FetchError: ошибка одного адаптера.
type FetchError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func TransportErr(source string, err error) error {
	return &FetchError{Source: source, Kind: Transport, Err: err}
}

func SchemaErr(source string, format string, args ...any) error {
	return &FetchError{Source: source, Kind: Schema, Err: fmt.Errorf(format, args...)}
}

// KindOf возвращает вид ошибки или 0, если это не FetchError.
func KindOf(err error) ErrorKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

// ErrEmptyBook: площадка ответила, но без единого уровня.
var ErrEmptyBook = errors.New("empty book")

// SkippedSource: площадка, выпавшая из агрегата, и причина.
type SkippedSource struct {
	Source string    `json:"source"`
	Kind   ErrorKind `json:"-"`
	Reason string    `json:"reason"`
}

func (s SkippedSource) String() string { return s.Source + ": " + s.Reason }

// ErrAllSourcesFailed: ни одна площадка не отдала стакан.
var ErrAllSourcesFailed = errors.New("all depth sources failed")
