package domain

import (
	"context"
	"errors"
	"net/http"

	"go.trai.ch/zerr"
)

var (
	// ErrInvalidIdentifier is returned when an identifier is empty or contains invalid characters.
	ErrInvalidIdentifier = zerr.New("invalid identifier")

	// ErrInvalidHorizon is returned when a forecast horizon is outside [1, maxHorizon].
	ErrInvalidHorizon = zerr.New("invalid forecast horizon")

	// ErrDataUnavailable is the category for every failure to obtain usable historical data.
	ErrDataUnavailable = zerr.New("historical data unavailable")

	// ErrEmptyResult is returned when the data source returns no usable records for an identifier.
	ErrEmptyResult = zerr.New("data source returned no records")

	// ErrSourceUnavailable is returned when the data source cannot be reached or fails transiently.
	ErrSourceUnavailable = zerr.New("data source unavailable")

	// ErrInsufficientData is returned when fewer than the configured minimum points remain after cleaning.
	ErrInsufficientData = zerr.New("insufficient data points for training")

	// ErrTrainingFailed is the category for every failure of a training run.
	ErrTrainingFailed = zerr.New("training failed")

	// ErrModelFitFailed is returned when the forecasting engine cannot fit a model.
	ErrModelFitFailed = zerr.New("failed to fit model")

	// ErrModelNotFound is returned when no stored artifact exists for an identifier.
	ErrModelNotFound = zerr.New("model not found")

	// ErrStorageFailed is the category for persistence and load I/O failures.
	ErrStorageFailed = zerr.New("storage failure")

	// ErrArtifactCorrupt is returned when a stored artifact fails its integrity check.
	ErrArtifactCorrupt = zerr.New("model artifact is corrupt")

	// ErrStoreCreateFailed is returned when a storage directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create storage directory")

	// ErrStoreReadFailed is returned when a stored file cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read stored file")

	// ErrStoreWriteFailed is returned when a stored file cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write stored file")

	// ErrStoreMarshalFailed is returned when a stored value cannot be encoded.
	ErrStoreMarshalFailed = zerr.New("failed to marshal stored value")

	// ErrStoreUnmarshalFailed is returned when a stored value cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal stored value")

	// ErrModelDecodeFailed is returned when a serialized model cannot be turned back into a handle.
	ErrModelDecodeFailed = zerr.New("failed to decode model")

	// ErrPredictFailed is returned when the forecasting engine cannot produce a forecast.
	ErrPredictFailed = zerr.New("failed to generate forecast")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigInvalid is returned when the configuration fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrManagerClosed is returned when the model cache manager has been shut down.
	ErrManagerClosed = zerr.New("model cache manager is closed")
)

// ErrorKind classifies errors for callers that must map them to an external protocol.
type ErrorKind uint8

const (
	// KindInternal is any failure not covered by a more specific kind.
	KindInternal ErrorKind = iota
	// KindValidation is a user input problem; retrying without changing input will not help.
	KindValidation
	// KindNotFound means the requested model does not exist.
	KindNotFound
	// KindDataUnavailable means historical data could not be obtained.
	KindDataUnavailable
	// KindTrainingFailed means fitting a model failed.
	KindTrainingFailed
	// KindStorage means persistence or load I/O failed.
	KindStorage
	// KindCanceled means the caller stopped waiting.
	KindCanceled
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindDataUnavailable:
		return "data_unavailable"
	case KindTrainingFailed:
		return "training_failed"
	case KindStorage:
		return "storage"
	case KindCanceled:
		return "canceled"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status code a transport layer should use for the kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound, KindDataUnavailable:
		return http.StatusNotFound
	case KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// KindOf classifies err. The checks run from the most specific cause to the
// most general category, so a training failure caused by missing data is
// reported as KindDataUnavailable.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrInvalidIdentifier), errors.Is(err, ErrInvalidHorizon):
		return KindValidation
	case errors.Is(err, ErrEmptyResult),
		errors.Is(err, ErrSourceUnavailable),
		errors.Is(err, ErrInsufficientData),
		errors.Is(err, ErrDataUnavailable):
		return KindDataUnavailable
	case errors.Is(err, ErrModelNotFound):
		return KindNotFound
	case errors.Is(err, ErrStorageFailed), errors.Is(err, ErrArtifactCorrupt):
		return KindStorage
	case errors.Is(err, ErrTrainingFailed), errors.Is(err, ErrModelFitFailed):
		return KindTrainingFailed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

// StorageError tags err as a persistence failure while keeping its cause chain.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	return errors.Join(ErrStorageFailed, err)
}
