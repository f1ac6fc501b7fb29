package signing_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/attest/internal/signing"
	"github.com/JaimeStill/attest/pkg/pdfmark/pdfmarktest"
	"github.com/JaimeStill/attest/pkg/routes"
)

func (h *harness) mux() *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, h.sys.Handler().Routes())
	return mux
}

func do(t *testing.T, mux http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerLayout(t *testing.T) {
	h := newHarness(t)
	mux := h.mux()

	rec := do(t, mux, http.MethodGet, "/signing/documents/"+h.original.ID.String()+"/layout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var layout signing.Layout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layout))
	assert.Equal(t, 3, layout.PageCount)

	rec = do(t, mux, http.MethodGet, "/signing/documents/not-a-uuid/layout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodGet, "/signing/documents/"+uuid.NewString()+"/layout", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerSendResolveSubmit(t *testing.T) {
	h := newHarness(t)
	mux := h.mux()

	rec := do(t, mux, http.MethodPost, "/signing/documents/"+h.original.ID.String()+"/send",
		signing.SendCommand{Markers: clientMarkers()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var sent signing.SendResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sent))
	require.NotNil(t, sent.Session)
	id := sent.Session.ID.String()

	rec = do(t, mux, http.MethodGet, "/signing/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, mux, http.MethodPost, "/signing/sessions/"+id+"/submit", signing.SubmitCommand{
		Signature:  pdfmarktest.SignatureDataURL(),
		SignerName: "Jordan Client",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var signed signing.SignResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signed))
	assert.Equal(t, signing.StatusCompleted, signed.Session.Status)
	assert.Equal(t, "Signed - contract.pdf", signed.Document.Name)

	rec = do(t, mux, http.MethodGet, "/signing/sessions/"+id, nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body struct {
		Kind    signing.ErrorKind `json:"kind"`
		Session signing.Session   `json:"session"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, signing.ErrorAlreadyCompleted, body.Kind)
	assert.Equal(t, "contract.pdf", body.Session.DocumentName)

	rec = do(t, mux, http.MethodPost, "/signing/sessions/"+id+"/submit", signing.SubmitCommand{
		Signature: pdfmarktest.SignatureDataURL(),
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandlerStatusCodes(t *testing.T) {
	h := newHarness(t)
	mux := h.mux()
	sess := h.send(t, nil).Session

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown session", http.MethodGet, "/signing/sessions/" + uuid.NewString(), nil, http.StatusNotFound},
		{"garbage session id", http.MethodGet, "/signing/sessions/garbage", nil, http.StatusNotFound},
		{"bad signature", http.MethodPost, "/signing/sessions/" + sess.ID.String() + "/submit",
			signing.SubmitCommand{Signature: "nope"}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/signing/sessions/" + sess.ID.String() + "/submit",
			"not an object", http.StatusBadRequest},
		{"preparer without signer", http.MethodPost, "/signing/documents/" + h.original.ID.String() + "/sign",
			signing.SignCommand{Signature: pdfmarktest.SignatureDataURL()}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, mux, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	t.Run("expired", func(t *testing.T) {
		h.clock.Advance(ttl)
		rec := do(t, mux, http.MethodGet, "/signing/sessions/"+sess.ID.String(), nil)
		assert.Equal(t, http.StatusGone, rec.Code)
	})
}

func TestHandlerListSessions(t *testing.T) {
	h := newHarness(t)
	mux := h.mux()
	h.send(t, nil)
	h.send(t, clientMarkers())

	rec := do(t, mux, http.MethodGet, "/signing/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data  []signing.Session `json:"data"`
		Total int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.Total)
}
