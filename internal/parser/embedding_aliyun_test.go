package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"resume-evaluator-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEmbedder(t *testing.T, serverURL string) *AliyunEmbedder {
	t.Helper()
	embedder, err := NewAliyunEmbedder("test-key", config.EmbeddingConfig{
		Model:      "text-embedding-v3",
		Dimensions: 2,
		BaseURL:    serverURL,
	})
	require.NoError(t, err, "创建Embedder失败")
	return embedder
}

func TestNewAliyunEmbedderRequiresAPIKey(t *testing.T) {
	_, err := NewAliyunEmbedder("", config.EmbeddingConfig{})
	assert.Error(t, err, "空API Key应被拒绝")
}

func TestEmbedStringsReordersByIndex(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		// 响应故意乱序，客户端应按Index归位
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "embedding": []float64{0, 1}, "index": 1},
				{"object": "embedding", "embedding": []float64{1, 0}, "index": 0},
			},
			"model": "text-embedding-v3",
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL)
	vectors, err := embedder.EmbedStrings(context.Background(), []string{"first", "second"})
	require.NoError(t, err, "嵌入调用不应失败")
	require.Len(t, vectors, 2)

	assert.Equal(t, []float64{1, 0}, vectors[0], "向量应按Index归位到输入顺序")
	assert.Equal(t, []float64{0, 1}, vectors[1])
}

func TestEmbedStringsSingleInputAsString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		// 单条输入应以字符串形式发送
		_, isString := req["input"].(string)
		assert.True(t, isString, "单条输入应序列化为字符串而非数组")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "embedding": []float64{1, 0}, "index": 0},
			},
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL)
	vectors, err := embedder.EmbedStrings(context.Background(), []string{"only one"})
	require.NoError(t, err)
	require.Len(t, vectors, 1)
}

func TestEmbedStringsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"object": "embedding", "embedding": []float64{1, 0}, "index": 0},
			},
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL)
	_, err := embedder.EmbedStrings(context.Background(), []string{"a", "b"})
	assert.Error(t, err, "响应数量与输入不一致应报错")
}

func TestEmbedStringsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Requests rate limit exceeded",
			"type":    "requests",
			"code":    "rate_limit_reached",
		})
	}))
	defer server.Close()

	embedder := newTestEmbedder(t, server.URL)
	_, err := embedder.EmbedStrings(context.Background(), []string{"a"})
	require.Error(t, err, "非200响应应报错")
	assert.Contains(t, err.Error(), "rate_limit_reached", "错误信息应包含API错误码")
}

func TestEmbedStringsEmptyInput(t *testing.T) {
	embedder := newTestEmbedder(t, "http://unused.invalid")
	vectors, err := embedder.EmbedStrings(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors, "空输入应直接返回空结果")
}
