// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/blinklabs-io/utxoledger/ledger"
	"github.com/blinklabs-io/utxoledger/ledger/common"
	"github.com/blinklabs-io/utxoledger/ledger/mutate"
	"github.com/blinklabs-io/utxoledger/ledger/rules"
)

type ErrorKind uint

const (
	ErrorKindValidationError ErrorKind = iota
	ErrorKindUtxoNotAvailable
	ErrorKindValueNotConserved
	ErrorKindTransactionExpired
	ErrorKindScriptFailure
	ErrorKindRateLimited
	ErrorKindAuthenticationError
	ErrorKindBanned
	ErrorKindMempoolFull
	ErrorKindInternalError
)

var errorKindNames = map[ErrorKind]string{
	ErrorKindValidationError:     "ValidationError",
	ErrorKindUtxoNotAvailable:    "UtxoNotAvailable",
	ErrorKindValueNotConserved:   "ValueNotConserved",
	ErrorKindTransactionExpired:  "TransactionExpired",
	ErrorKindScriptFailure:       "ScriptFailure",
	ErrorKindRateLimited:         "RateLimited",
	ErrorKindAuthenticationError: "AuthenticationError",
	ErrorKindBanned:              "Banned",
	ErrorKindMempoolFull:         "MempoolFull",
	ErrorKindInternalError:       "InternalError",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", uint(k))
}

// Retryable reports whether the kind is a transport condition worth retrying. Validation
// failures never are
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrorKindRateLimited, ErrorKindMempoolFull, ErrorKindInternalError:
		return true
	default:
		return false
	}
}

// SubmitError is the provider facing classification of a failed submission. Err holds the
// underlying failure, if any
type SubmitError struct {
	Kind    ErrorKind
	Inputs  []common.TransactionInput
	Message string
	Err     error
}

// Sentinels for use with errors.Is, which matches on Kind only
var (
	ErrValidation          = &SubmitError{Kind: ErrorKindValidationError}
	ErrUtxoNotAvailable    = &SubmitError{Kind: ErrorKindUtxoNotAvailable}
	ErrValueNotConserved   = &SubmitError{Kind: ErrorKindValueNotConserved}
	ErrTransactionExpired  = &SubmitError{Kind: ErrorKindTransactionExpired}
	ErrScriptFailure       = &SubmitError{Kind: ErrorKindScriptFailure}
	ErrRateLimited         = &SubmitError{Kind: ErrorKindRateLimited}
	ErrAuthenticationError = &SubmitError{Kind: ErrorKindAuthenticationError}
	ErrBanned              = &SubmitError{Kind: ErrorKindBanned}
	ErrMempoolFull         = &SubmitError{Kind: ErrorKindMempoolFull}
	ErrInternal            = &SubmitError{Kind: ErrorKindInternalError}
)

func (e *SubmitError) Error() string {
	msg := e.Kind.String()
	if len(e.Inputs) > 0 {
		inputs := make([]string, 0, len(e.Inputs))
		for _, input := range e.Inputs {
			inputs = append(inputs, input.String())
		}
		msg = fmt.Sprintf("%s (inputs: %s)", msg, strings.Join(inputs, ", "))
	}
	switch {
	case e.Err != nil:
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	case e.Message != "":
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	return msg
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

func (e *SubmitError) Is(target error) bool {
	t, ok := target.(*SubmitError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable is Kind.Retryable, except that local inconsistencies classified as internal
// errors fail the same way on every attempt
func (e *SubmitError) Retryable() bool {
	if !e.Kind.Retryable() {
		return false
	}
	var outputConflict mutate.OutputAlreadyExistsError
	if errors.As(e.Err, &outputConflict) || errors.Is(e.Err, rules.ErrNoScriptEvaluator) {
		return false
	}
	return true
}

func newSubmitError(kind ErrorKind, err error) *SubmitError {
	return &SubmitError{Kind: kind, Err: err}
}

// Classify maps a validation, application or decode failure to its SubmitError. Errors that
// are already classified are returned as is
func Classify(err error) *SubmitError {
	if err == nil {
		return nil
	}
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return submitErr
	}
	var (
		badInputs      rules.BadInputsUtxoError
		badCollateral  rules.BadCollateralInputsError
		badReference   rules.BadReferenceInputsError
		alreadySpent   mutate.InputAlreadySpentError
		notConserved   rules.ValueNotConservedUtxoError
		outsideVal     rules.OutsideValidityIntervalUtxoError
		plutusFailed   rules.PlutusScriptFailedError
		nativeFailed   rules.NativeScriptFailedError
		flagMismatch   rules.ValidityFlagMismatchError
		evalErr        *common.ScriptEvaluationError
		decodeErr      ledger.TransactionDecodeError
		outputConflict mutate.OutputAlreadyExistsError
	)
	switch {
	case errors.As(err, &badInputs):
		return &SubmitError{Kind: ErrorKindUtxoNotAvailable, Inputs: badInputs.Inputs, Err: err}
	case errors.As(err, &badCollateral):
		return &SubmitError{Kind: ErrorKindUtxoNotAvailable, Inputs: badCollateral.Inputs, Err: err}
	case errors.As(err, &badReference):
		return &SubmitError{Kind: ErrorKindUtxoNotAvailable, Inputs: badReference.Inputs, Err: err}
	case errors.As(err, &alreadySpent):
		return &SubmitError{
			Kind:   ErrorKindUtxoNotAvailable,
			Inputs: []common.TransactionInput{alreadySpent.Input},
			Err:    err,
		}
	case errors.As(err, &notConserved):
		return newSubmitError(ErrorKindValueNotConserved, err)
	case errors.As(err, &outsideVal):
		return newSubmitError(ErrorKindTransactionExpired, err)
	case errors.As(err, &plutusFailed),
		errors.As(err, &nativeFailed),
		errors.As(err, &flagMismatch),
		errors.As(err, &evalErr),
		errors.Is(err, common.ErrBudgetExhausted):
		return newSubmitError(ErrorKindScriptFailure, err)
	case errors.As(err, &decodeErr):
		return newSubmitError(ErrorKindValidationError, err)
	case errors.As(err, &outputConflict),
		errors.Is(err, rules.ErrNoScriptEvaluator):
		return newSubmitError(ErrorKindInternalError, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newSubmitError(ErrorKindInternalError, err)
	default:
		return newSubmitError(ErrorKindValidationError, err)
	}
}

// Known substrings in rejection messages, checked in order against the lowercased message
var messagePatterns = []struct {
	substr string
	kind   ErrorKind
}{
	{"badinputsutxo", ErrorKindUtxoNotAvailable},
	{"bad inputs", ErrorKindUtxoNotAvailable},
	{"utxo not available", ErrorKindUtxoNotAvailable},
	{"already spent", ErrorKindUtxoNotAvailable},
	{"valuenotconserved", ErrorKindValueNotConserved},
	{"value not conserved", ErrorKindValueNotConserved},
	{"outsidevalidityinterval", ErrorKindTransactionExpired},
	{"outside of validity interval", ErrorKindTransactionExpired},
	{"transaction expired", ErrorKindTransactionExpired},
	{"tx expired", ErrorKindTransactionExpired},
	{"plutusscriptfailed", ErrorKindScriptFailure},
	{"script failed", ErrorKindScriptFailure},
	{"script evaluation failed", ErrorKindScriptFailure},
	{"rate limit", ErrorKindRateLimited},
	{"too many requests", ErrorKindRateLimited},
	{"unauthorized", ErrorKindAuthenticationError},
	{"forbidden", ErrorKindAuthenticationError},
	{"invalid project token", ErrorKindAuthenticationError},
	{"token expired", ErrorKindAuthenticationError},
	{"banned", ErrorKindBanned},
	{"mempool is full", ErrorKindMempoolFull},
	{"mempool full", ErrorKindMempoolFull},
}

// ClassifyMessage classifies a rejection that is only available as text. It is a fallback
// for sources without structured errors
func ClassifyMessage(msg string) *SubmitError {
	lower := strings.ToLower(msg)
	for _, pattern := range messagePatterns {
		if strings.Contains(lower, pattern.substr) {
			return &SubmitError{Kind: pattern.kind, Message: msg}
		}
	}
	return &SubmitError{Kind: ErrorKindValidationError, Message: msg}
}

// ClassifyHTTPStatus classifies a failed HTTP submission from its status code, falling back to
// the response body for client errors
func ClassifyHTTPStatus(statusCode int, body []byte) *SubmitError {
	msg := strings.TrimSpace(string(body))
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &SubmitError{Kind: ErrorKindRateLimited, Message: msg}
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return &SubmitError{Kind: ErrorKindAuthenticationError, Message: msg}
	case statusCode == http.StatusTeapot:
		return &SubmitError{Kind: ErrorKindBanned, Message: msg}
	case statusCode == http.StatusServiceUnavailable:
		return &SubmitError{Kind: ErrorKindMempoolFull, Message: msg}
	case statusCode >= 500:
		return &SubmitError{Kind: ErrorKindInternalError, Message: msg}
	default:
		return ClassifyMessage(msg)
	}
}
