package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/lecturelens-backend/internal/platform/gcp"
	"github.com/yungbote/lecturelens-backend/internal/platform/logger"
)

var newArchive = gcp.NewArchive

type ArchiveBootstrapErrorCode string

const (
	ArchiveBootstrapErrorInvalidMode         ArchiveBootstrapErrorCode = "invalid_mode"
	ArchiveBootstrapErrorMissingBucket       ArchiveBootstrapErrorCode = "missing_bucket"
	ArchiveBootstrapErrorMissingEmulatorHost ArchiveBootstrapErrorCode = "missing_emulator_host"
	ArchiveBootstrapErrorInvalidEmulatorHost ArchiveBootstrapErrorCode = "invalid_emulator_host"
	ArchiveBootstrapErrorConnectFailed       ArchiveBootstrapErrorCode = "connect_failed"
)

type ArchiveBootstrapError struct {
	Code         ArchiveBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *ArchiveBootstrapError) Error() string {
	if e == nil {
		return "archive storage bootstrap failed"
	}
	return fmt.Sprintf(
		"archive storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *ArchiveBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveArchive builds the archive mirror for the configured mode. Local mode yields a no-op archive.
func resolveArchive(log *logger.Logger, storageCfg gcp.ObjectStorageConfig) (gcp.Archive, error) {
	log.Info(
		"Selecting archive storage",
		"mode", storageCfg.Mode,
		"bucket", storageCfg.Bucket,
		"emulator_host", storageCfg.EmulatorHost,
	)

	archive, err := newArchive(log, storageCfg)
	if err != nil {
		classified := classifyArchiveBootstrapError(storageCfg, err)
		log.Error(
			"Archive storage bootstrap failed",
			"mode", storageCfg.Mode,
			"bucket", storageCfg.Bucket,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", archiveBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, classified
	}
	return archive, nil
}

func classifyArchiveBootstrapError(storageCfg gcp.ObjectStorageConfig, err error) error {
	code := ArchiveBootstrapErrorConnectFailed
	var cfgErr *gcp.ObjectStorageConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case gcp.ObjectStorageConfigErrorInvalidMode:
			code = ArchiveBootstrapErrorInvalidMode
		case gcp.ObjectStorageConfigErrorMissingBucket:
			code = ArchiveBootstrapErrorMissingBucket
		case gcp.ObjectStorageConfigErrorMissingEmulatorHost:
			code = ArchiveBootstrapErrorMissingEmulatorHost
		case gcp.ObjectStorageConfigErrorInvalidEmulatorHost:
			code = ArchiveBootstrapErrorInvalidEmulatorHost
		}
	}
	return &ArchiveBootstrapError{
		Code:         code,
		Mode:         string(storageCfg.Mode),
		EmulatorHost: storageCfg.EmulatorHost,
		Cause:        err,
	}
}

func archiveBootstrapErrorCode(err error) ArchiveBootstrapErrorCode {
	var bootstrapErr *ArchiveBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return ArchiveBootstrapErrorConnectFailed
}
