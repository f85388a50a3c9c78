package storage

import (
	"strings"
	"testing"
)

func TestObjectURL(t *testing.T) {
	tests := []struct {
		name     string
		uploader Uploader
		key      string
		want     string
	}{
		{
			name:     "custom endpoint",
			uploader: Uploader{bucket: "plots", endpoint: "http://minio:9000"},
			key:      "plots/a.png",
			want:     "http://minio:9000/plots/plots/a.png",
		},
		{
			name:     "endpoint with trailing slash",
			uploader: Uploader{bucket: "plots", endpoint: "http://minio:9000/"},
			key:      "plots/a.png",
			want:     "http://minio:9000/plots/plots/a.png",
		},
		{
			name:     "us-east-1 keeps the regionless host",
			uploader: Uploader{bucket: "mapaction-plots", region: "us-east-1"},
			key:      "plots/a.png",
			want:     "https://mapaction-plots.s3.amazonaws.com/plots/a.png",
		},
		{
			name:     "other regions use the regioned host",
			uploader: Uploader{bucket: "mapaction-plots", region: "eu-west-3"},
			key:      "plots/a.png",
			want:     "https://mapaction-plots.s3.eu-west-3.amazonaws.com/plots/a.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.uploader.ObjectURL(tt.key); got != tt.want {
				t.Errorf("ObjectURL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	key := objectKey("ndvi_ndwi_inc-1.png")
	if !strings.HasPrefix(key, "plots/") {
		t.Errorf("key %q missing plots/ prefix", key)
	}
	if !strings.HasSuffix(key, "_ndvi_ndwi_inc-1.png") {
		t.Errorf("key %q missing original base name", key)
	}
	if key == objectKey("ndvi_ndwi_inc-1.png") {
		t.Error("two keys for the same base collide")
	}
}
