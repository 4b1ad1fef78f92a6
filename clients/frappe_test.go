package clients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrappeCall(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"message":{"status":"Success","payment_url":"https://pay"}}`))
	}))
	defer srv.Close()

	fc := NewFrappeClient(srv.URL+"/", "key", "secret")
	msg, err := fc.Call(context.Background(), "cashfree.api.make_payment", map[string]any{"amount": "10"})
	require.NoError(t, err)

	assert.Equal(t, "/api/method/cashfree.api.make_payment", gotPath)
	assert.Equal(t, "token key:secret", gotAuth)
	assert.Equal(t, "10", gotBody["amount"])
	assert.JSONEq(t, `{"status":"Success","payment_url":"https://pay"}`, string(msg))
}

func TestFrappeCallServerException(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusExpectationFailed)
		_, _ = w.Write([]byte(`{"exc_type":"ValidationError","_server_messages":"[\"{\\\"message\\\": \\\"card declined\\\"}\"]"}`))
	}))
	defer srv.Close()

	_, err := NewFrappeClient(srv.URL, "", "").Call(context.Background(), "m", nil)
	require.Error(t, err)

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, http.StatusExpectationFailed, rpcErr.StatusCode)
	assert.Equal(t, "ValidationError", rpcErr.ExcType)
	assert.Equal(t, "card declined", ServerMessage(err))
}

func TestFrappeCallTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewFrappeClient(srv.URL, "", "").Call(context.Background(), "m", nil)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Empty(t, ServerMessage(err))
}

func TestDecodeServerMessages(t *testing.T) {
	assert.Nil(t, decodeServerMessages(""))
	assert.Equal(t, []string{"plain text"}, decodeServerMessages("plain text"))
	assert.Equal(t, []string{"a", "bare"}, decodeServerMessages(`["{\"message\":\"a\"}","bare"]`))
}

func TestFrappeDocumentMethods(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		switch r.URL.Path {
		case "/api/method/" + MethodGetList:
			_, _ = w.Write([]byte(`{"message":[{"name":"PR-1"},{"name":"PR-2"}]}`))
		case "/api/method/" + MethodGet:
			_, _ = w.Write([]byte(`{"message":{"name":"PR-1","status":"Paid"}}`))
		default:
			_, _ = w.Write([]byte(`{"message":{}}`))
		}
	}))
	defer srv.Close()

	fc := NewFrappeClient(srv.URL, "", "")
	ctx := context.Background()

	var rows []struct {
		Name string `json:"name"`
	}
	require.NoError(t, fc.GetList(ctx, ListQuery{Doctype: "Payment Request"}, &rows))
	assert.Len(t, rows, 2)

	var doc struct {
		Status string `json:"status"`
	}
	require.NoError(t, fc.GetDoc(ctx, "Payment Request", "PR-1", &doc))
	assert.Equal(t, "Paid", doc.Status)

	require.NoError(t, fc.SetValue(ctx, "Payment Request", "PR-1", "status", "Paid"))
	_, err := fc.Insert(ctx, map[string]string{"doctype": "Integration Request"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/api/method/" + MethodGetList,
		"/api/method/" + MethodGet,
		"/api/method/" + MethodSetValue,
		"/api/method/" + MethodInsert,
	}, calls)
}
