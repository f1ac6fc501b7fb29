package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/JaimeStill/attest/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSystems(t *testing.T) map[string]storage.System {
	t.Helper()

	azure, err := storage.New(&storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "documents",
		ConnectionString: azuriteConnString,
	}, discard())
	if err != nil {
		t.Fatalf("New(azure) error = %v", err)
	}

	s3, err := storage.New(&storage.Config{
		Provider:        storage.ProviderS3,
		Bucket:          "documents",
		Region:          "us-east-1",
		Endpoint:        "http://127.0.0.1:9000",
		UsePathStyle:    true,
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
	}, discard())
	if err != nil {
		t.Fatalf("New(s3) error = %v", err)
	}

	return map[string]storage.System{"azure": azure, "s3": s3}
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "documents",
		ConnectionString: "not-a-connection-string",
	}

	if _, err := storage.New(cfg, discard()); err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := storage.New(&storage.Config{Provider: "ftp"}, discard()); err == nil {
		t.Fatal("expected error for unknown provider, got nil")
	}
}

// Key validation runs before any network call, so these hold without a
// running emulator.
func TestKeyValidation(t *testing.T) {
	keys := []struct {
		key  string
		want error
	}{
		{"", storage.ErrEmptyKey},
		{"../etc/passwd", storage.ErrInvalidKey},
		{"documents/../secrets", storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for provider, sys := range newSystems(t) {
		for _, k := range keys {
			t.Run(fmt.Sprintf("%s/%q", provider, k.key), func(t *testing.T) {
				if err := sys.Upload(ctx, k.key, bytes.NewReader(nil), "application/pdf"); !errors.Is(err, k.want) {
					t.Errorf("Upload() error = %v, want %v", err, k.want)
				}
				if _, err := sys.Download(ctx, k.key); !errors.Is(err, k.want) {
					t.Errorf("Download() error = %v, want %v", err, k.want)
				}
				if _, err := sys.Find(ctx, k.key); !errors.Is(err, k.want) {
					t.Errorf("Find() error = %v, want %v", err, k.want)
				}
				if err := sys.Delete(ctx, k.key); !errors.Is(err, k.want) {
					t.Errorf("Delete() error = %v, want %v", err, k.want)
				}
				if _, err := sys.Exists(ctx, k.key); !errors.Is(err, k.want) {
					t.Errorf("Exists() error = %v, want %v", err, k.want)
				}
			})
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("open: %w", storage.ErrNotFound), http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
