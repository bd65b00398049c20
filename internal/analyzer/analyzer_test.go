package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/docvault-api/internal/sanitizer"
	"github.com/BerylCAtieno/docvault-api/internal/storage"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

type stubModel struct {
	response string
	err      error
	calls    int
	mimeType string
	data     []byte
}

func (m *stubModel) Name() string { return "stub" }

func (m *stubModel) Generate(_ context.Context, _, mimeType string, data []byte) (string, error) {
	m.calls++
	m.mimeType = mimeType
	m.data = data
	return m.response, m.err
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line", in: "```json {\"a\":1}```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "\n  ```json\n{\"a\":1}\n```  \n", want: `{"a":1}`},
		{name: "unterminated", in: "```json\n{\"a\":", want: `{"a":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, stripCodeFences(tt.in))
		})
	}
}

func TestParseResult(t *testing.T) {
	t.Run("should parse fenced object", func(t *testing.T) {
		res, err := ParseResult("```json\n{\"vendor\":\"ACME Corp\",\"date\":\"2024-03-15\",\"amount\":\"1251.74\",\"type\":\"Invoice\",\"confidence\":0.93}\n```")
		require.NoError(t, err)
		require.Equal(t, "ACME Corp", *res.Vendor)
		require.Equal(t, "2024-03-15", *res.Date)
		require.Equal(t, "1251.74", *res.Amount)
		require.Equal(t, "Invoice", res.Type)
		require.Equal(t, 0.93, res.Confidence)
	})

	t.Run("should accept numeric amount and string confidence", func(t *testing.T) {
		res, err := ParseResult(`{"vendor":null,"amount":1251.74,"type":"Receipt","confidence":"0.5"}`)
		require.NoError(t, err)
		require.Nil(t, res.Vendor)
		require.Nil(t, res.Date)
		require.Equal(t, "1251.74", *res.Amount)
		require.Equal(t, 0.5, res.Confidence)
	})

	t.Run("should write numeric amounts in plain notation", func(t *testing.T) {
		tests := []struct {
			in   string
			want string
		}{
			{in: `1e3`, want: "1000"},
			{in: `1.5E2`, want: "150"},
			{in: `2.5e-1`, want: "0.25"},
			{in: `1251.74`, want: "1251.74"},
		}
		for _, tt := range tests {
			res, err := ParseResult(`{"amount":` + tt.in + `}`)
			require.NoError(t, err)
			require.Equal(t, tt.want, *res.Amount, tt.in)

			amount, ok := sanitizer.NormalizeAmount(*res.Amount)
			require.True(t, ok)
			require.Equal(t, tt.want, amount, tt.in)
		}
	})

	t.Run("should drop fields of the wrong type", func(t *testing.T) {
		res, err := ParseResult(`{"vendor":{"name":"x"},"amount":true,"type":7}`)
		require.NoError(t, err)
		require.Nil(t, res.Vendor)
		require.Nil(t, res.Amount)
		require.Equal(t, "7", res.Type)
	})

	for _, body := range []string{"I cannot read this image.", `{"vendor": "AC`, "null", `[{"vendor":"x"}]`, ""} {
		t.Run("should fail on "+body, func(t *testing.T) {
			_, err := ParseResult(body)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			require.Equal(t, "parse", Kind(err))
		})
	}
}

func TestClient_Extract(t *testing.T) {
	ctx := context.Background()
	blobs := storage.NewMemoryStorage()
	require.NoError(t, blobs.Put(ctx, "user-1/1-a.png", []byte("png-bytes"), "image/png"))

	t.Run("should re-read the blob and pick mime hint from key", func(t *testing.T) {
		model := &stubModel{response: `{"vendor":"ACME","type":"Invoice"}`}
		client := NewClient(blobs, model, utils.NopLogger())

		res, err := client.Extract(ctx, "user-1/1-a.png")
		require.NoError(t, err)
		require.Equal(t, "ACME", *res.Vendor)
		require.Equal(t, 1, model.calls)
		require.Equal(t, "image/png", model.mimeType)
		require.Equal(t, []byte("png-bytes"), model.data)
	})

	t.Run("should return fetch error for missing blob", func(t *testing.T) {
		model := &stubModel{}
		client := NewClient(blobs, model, utils.NopLogger())

		_, err := client.Extract(ctx, "user-1/missing.jpg")
		var fetchErr *FetchError
		require.ErrorAs(t, err, &fetchErr)
		require.ErrorIs(t, err, storage.ErrNotFound)
		require.Equal(t, 0, model.calls)
	})

	t.Run("should pass transport errors through without retry", func(t *testing.T) {
		model := &stubModel{err: &TransportError{Provider: "stub", StatusCode: 503, Body: "overloaded"}}
		client := NewClient(blobs, model, utils.NopLogger())

		_, err := client.Extract(ctx, "user-1/1-a.png")
		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		require.Equal(t, 503, transportErr.StatusCode)
		require.Equal(t, 1, model.calls)
	})
}

func TestKind(t *testing.T) {
	require.Equal(t, "transport", Kind(&TransportError{Provider: "x", Err: errors.New("dial")}))
	require.Equal(t, "fetch", Kind(&FetchError{Key: "k", Err: errors.New("gone")}))
	require.Equal(t, "unknown", Kind(errors.New("boom")))
}
