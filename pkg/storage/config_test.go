package storage_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/attest/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "test-connection"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderAzure {
		t.Errorf("provider: got %s, want azure", cfg.Provider)
	}
	if cfg.ContainerName != "documents" {
		t.Errorf("container_name: got %s, want documents", cfg.ContainerName)
	}
	if cfg.Region != "us-east-1" {
		t.Errorf("region: got %s, want us-east-1", cfg.Region)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PROVIDER", "s3")
	t.Setenv("TEST_BUCKET", "signed-docs")
	t.Setenv("TEST_ENDPOINT", "http://localhost:9000")
	t.Setenv("TEST_PATH_STYLE", "true")

	env := &storage.Env{
		Provider:     "TEST_PROVIDER",
		Bucket:       "TEST_BUCKET",
		Endpoint:     "TEST_ENDPOINT",
		UsePathStyle: "TEST_PATH_STYLE",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != storage.ProviderS3 {
		t.Errorf("provider: got %s, want s3", cfg.Provider)
	}
	if cfg.Bucket != "signed-docs" {
		t.Errorf("bucket: got %s, want signed-docs", cfg.Bucket)
	}
	if cfg.Endpoint != "http://localhost:9000" {
		t.Errorf("endpoint: got %s", cfg.Endpoint)
	}
	if !cfg.UsePathStyle {
		t.Error("use_path_style: got false, want true")
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr string
	}{
		{
			name:    "azure without credentials",
			cfg:     storage.Config{Provider: "azure"},
			wantErr: "connection_string or account_url required",
		},
		{
			name: "azure with account url",
			cfg:  storage.Config{Provider: "azure", AccountURL: "https://acct.blob.core.windows.net"},
		},
		{
			name:    "s3 without bucket",
			cfg:     storage.Config{Provider: "s3"},
			wantErr: "bucket required",
		},
		{
			name:    "s3 with half a key pair",
			cfg:     storage.Config{Provider: "s3", Bucket: "b", AccessKeyID: "id"},
			wantErr: "must be set together",
		},
		{
			name:    "unknown provider",
			cfg:     storage.Config{Provider: "ftp"},
			wantErr: "unknown provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := storage.Config{
		Provider:         "azure",
		ContainerName:    "documents",
		ConnectionString: "base-conn",
	}

	overlay := storage.Config{ConnectionString: "overlay-conn", UsePathStyle: true}
	base.Merge(&overlay)

	if base.ContainerName != "documents" {
		t.Errorf("container_name should remain documents, got %s", base.ContainerName)
	}
	if base.ConnectionString != "overlay-conn" {
		t.Errorf("connection_string: got %s, want overlay-conn", base.ConnectionString)
	}
	if !base.UsePathStyle {
		t.Error("use_path_style should be set by overlay")
	}
}
