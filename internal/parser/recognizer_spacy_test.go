package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpacyEntityRecognizer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ents", r.URL.Path)

		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Python developer at Google", req.Text)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ents": []map[string]string{
				{"text": "Python", "label": "LANGUAGE"},
				{"text": "Google", "label": "ORG"},
			},
		})
	}))
	defer server.Close()

	recognizer := NewSpacyEntityRecognizer(server.URL)
	entities, err := recognizer.Recognize(context.Background(), "Python developer at Google")
	require.NoError(t, err, "识别不应失败")
	require.Len(t, entities, 2)

	assert.Equal(t, "Python", entities[0].Text)
	assert.Equal(t, CategoryLANGUAGE, entities[0].Label)
	assert.Equal(t, "Google", entities[1].Text)
	assert.Equal(t, CategoryORG, entities[1].Label)
}

func TestSpacyEntityRecognizerEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ents": null}`))
	}))
	defer server.Close()

	recognizer := NewSpacyEntityRecognizer(server.URL)
	entities, err := recognizer.Recognize(context.Background(), "nothing here")
	require.NoError(t, err)
	assert.Empty(t, entities, "无实体时应返回空切片而非nil错误")
}

func TestSpacyEntityRecognizerServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	recognizer := NewSpacyEntityRecognizer(server.URL)
	_, err := recognizer.Recognize(context.Background(), "some text")
	assert.Error(t, err, "服务端5xx应返回错误")
}
