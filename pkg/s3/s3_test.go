package s3

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	c := &s3Client{bucketName: "models"}

	tests := []struct {
		name       string
		key        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{"bare key", "emotion/class_names.json", "models", "emotion/class_names.json", false},
		{"leading slash", "/class_names.json", "models", "class_names.json", false},
		{"escaped", "emotion%2Fclass_names.json", "models", "emotion/class_names.json", false},
		{"uri", "s3://artifacts/fer/class_names.json", "artifacts", "fer/class_names.json", false},
		{"empty", "", "", "", true},
		{"uri without key", "s3://artifacts/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := c.resolve(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestDownloadFromCompatibleEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/class_names.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`["angry","happy"]`))
	}))
	defer srv.Close()

	client, err := New(Config{
		Region:          "us-east-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		Bucket:          "models",
		Endpoint:        srv.URL,
	})
	require.NoError(t, err)

	data, err := client.Download(context.Background(), "class_names.json")
	require.NoError(t, err)
	assert.JSONEq(t, `["angry","happy"]`, string(data))

	_, err = client.Download(context.Background(), "missing.json")
	assert.Error(t, err)
}
