package signing

import (
	"errors"
	"fmt"
)

// State is a step of the external signer's flow.
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateSigning    State = "signing"
	StateSubmitting State = "submitting"
	StateSigned     State = "signed"
	StateError      State = "error"
)

// ErrorKind distinguishes why a flow is in StateError. Only
// ErrorSubmitFailed can be retried.
type ErrorKind string

const (
	ErrorNone             ErrorKind = ""
	ErrorNotFound         ErrorKind = "not_found"
	ErrorExpired          ErrorKind = "expired"
	ErrorAlreadyCompleted ErrorKind = "already_completed"
	ErrorSubmitFailed     ErrorKind = "submit_failed"
	ErrorUnavailable      ErrorKind = "unavailable"
)

// Classify maps an error from Resolve or Sign to an ErrorKind. A lost
// completion race is retryable; the retry then resolves as completed.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, ErrInvalidState):
		return ErrorSubmitFailed
	case errors.Is(err, ErrNotFound):
		return ErrorNotFound
	case errors.Is(err, ErrExpired):
		return ErrorExpired
	case errors.Is(err, ErrAlreadyCompleted):
		return ErrorAlreadyCompleted
	default:
		return ErrorSubmitFailed
	}
}

// Flow is the signer's state machine for one session:
//
//	Loading -> Ready | Error
//	Ready -> Signing -> Submitting -> Signed | Error
//	Error -> Ready (submit failures only, signature kept)
//
// A Flow is not safe for concurrent use; it models a single signer's view.
type Flow struct {
	state     State
	kind      ErrorKind
	session   *Session
	signature string
	signer    string
	signedURL string
}

// NewFlow starts a flow in StateLoading.
func NewFlow() *Flow {
	return &Flow{state: StateLoading}
}

func (f *Flow) State() State { return f.state }
func (f *Flow) Kind() ErrorKind { return f.kind }
func (f *Flow) Session() *Session { return f.session }
func (f *Flow) Signature() string { return f.signature }
func (f *Flow) Signer() string { return f.signer }
func (f *Flow) SignedURL() string { return f.signedURL }
func (f *Flow) Retryable() bool { return f.state == StateError && f.kind == ErrorSubmitFailed }
func (f *Flow) Terminal() bool { return f.state == StateSigned || (f.state == StateError && !f.Retryable()) }

// Loaded applies the result of resolving the session. It is ignored outside
// StateLoading.
func (f *Flow) Loaded(sess *Session, err error) {
	if f.state != StateLoading {
		return
	}
	f.session = sess
	if err != nil {
		kind := Classify(err)
		if kind == ErrorSubmitFailed {
			kind = ErrorUnavailable
		}
		f.fail(kind)
		return
	}
	f.state = StateReady
}

// Draw captures a signature and the signer's name. Allowed from Ready,
// Signing, and a retryable Error.
func (f *Flow) Draw(signature, signer string) bool {
	switch {
	case f.state == StateReady, f.state == StateSigning, f.Retryable():
	default:
		return false
	}
	if signature == "" {
		return false
	}
	f.signature = signature
	f.signer = signer
	f.kind = ErrorNone
	f.state = StateSigning
	return true
}

// Submit moves a drawn signature into Submitting. It returns false, changing
// nothing, when a submission is already in flight or nothing was drawn.
func (f *Flow) Submit() bool {
	if f.state != StateSigning || f.signature == "" {
		return false
	}
	f.state = StateSubmitting
	return true
}

// Succeeded completes the flow with the signed document's URL.
func (f *Flow) Succeeded(signedURL string) {
	if f.state != StateSubmitting {
		return
	}
	f.signedURL = signedURL
	f.state = StateSigned
}

// Failed records a submission failure. Resolution failures discovered during
// submission are terminal; anything else keeps the signature for a retry.
func (f *Flow) Failed(err error) {
	if f.state != StateSubmitting {
		return
	}
	f.fail(Classify(err))
}

// Retry returns a retryable Error to Ready with the signature kept.
func (f *Flow) Retry() bool {
	if !f.Retryable() {
		return false
	}
	f.kind = ErrorNone
	f.state = StateReady
	return true
}

// Message is a signer-facing explanation of the current error.
func (f *Flow) Message() string {
	name := "this document"
	if f.session != nil && f.session.DocumentName != "" {
		name = fmt.Sprintf("%q", f.session.DocumentName)
	}

	switch f.kind {
	case ErrorNotFound:
		return "This signing link is not valid. Please contact the sender for a new link."
	case ErrorExpired:
		return fmt.Sprintf("The signing link for %s has expired. Please ask the sender for a new link.", name)
	case ErrorAlreadyCompleted:
		return fmt.Sprintf("%s has already been signed. No further action is needed.", capitalize(name))
	case ErrorSubmitFailed:
		return fmt.Sprintf("We could not sign %s. Your signature has been kept, please try again.", name)
	case ErrorUnavailable:
		return "We could not load this signing request right now. Please reload the page in a moment."
	default:
		return ""
	}
}

func (f *Flow) fail(kind ErrorKind) {
	f.kind = kind
	f.state = StateError
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
