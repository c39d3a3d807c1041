package gcp

import (
	"errors"
	"testing"
)

func TestResolveObjectStorageConfigFromEnvDefaultLocal(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")
	t.Setenv("ARCHIVE_GCS_BUCKET_NAME", "")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeLocal {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeLocal, cfg.Mode)
	}
	if cfg.ArchiveEnabled() {
		t.Fatalf("archive should be disabled in local mode")
	}
}

func TestResolveObjectStorageConfigFromEnvExplicitGCS(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "GCS")
	t.Setenv("STORAGE_EMULATOR_HOST", "")
	t.Setenv("ARCHIVE_GCS_BUCKET_NAME", "lecture-archive")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS || !cfg.ArchiveEnabled() || cfg.Bucket != "lecture-archive" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestResolveObjectStorageConfigFromEnvExplicitEmulator(t *testing.T) {
	t.Setenv("OBJECT_STORAGE_MODE", "gcs_emulator")
	t.Setenv("STORAGE_EMULATOR_HOST", "http://fake-gcs:4443")
	t.Setenv("ARCHIVE_GCS_BUCKET_NAME", "lecture-archive")

	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		t.Fatalf("ResolveObjectStorageConfigFromEnv: %v", err)
	}
	if !cfg.IsEmulatorMode() {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
}

func TestResolveObjectStorageConfigFromEnvErrors(t *testing.T) {
	cases := []struct {
		name   string
		mode   string
		host   string
		bucket string
		code   ObjectStorageConfigErrorCode
	}{
		{"invalid mode", "s3", "", "b", ObjectStorageConfigErrorInvalidMode},
		{"missing bucket", "gcs", "", "", ObjectStorageConfigErrorMissingBucket},
		{"missing emulator host", "gcs_emulator", "", "b", ObjectStorageConfigErrorMissingEmulatorHost},
		{"invalid emulator host", "gcs_emulator", "fake-gcs:4443", "b", ObjectStorageConfigErrorInvalidEmulatorHost},
	}
	for _, tc := range cases {
		t.Setenv("OBJECT_STORAGE_MODE", tc.mode)
		t.Setenv("STORAGE_EMULATOR_HOST", tc.host)
		t.Setenv("ARCHIVE_GCS_BUCKET_NAME", tc.bucket)

		_, err := ResolveObjectStorageConfigFromEnv()
		var cfgErr *ObjectStorageConfigError
		if !errors.As(err, &cfgErr) || cfgErr.Code != tc.code {
			t.Fatalf("%s: want code %q, got %v", tc.name, tc.code, err)
		}
	}
}
