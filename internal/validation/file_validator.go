package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	apperrors "pvcli/internal/errors"
)

// FileValidator checks input files and output directories before a run
type FileValidator struct {
	logger            *slog.Logger
	allowedExtensions []string
}

// NewFileValidator creates a new file validator accepting the given
// extensions (lower case, with the leading dot)
func NewFileValidator(logger *slog.Logger, allowedExtensions []string) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger:            logger,
		allowedExtensions: allowedExtensions,
	}
}

// ValidateFileName checks an input name (path or upload file name) for a
// supported extension. Office lock files such as "~$prices.xlsx" are refused.
func (v *FileValidator) ValidateFileName(name string) error {
	base := filepath.Base(name)
	if name == "" || base == "." || base == string(filepath.Separator) {
		return apperrors.NewAppValidationError("input file name is empty", nil)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !slices.Contains(v.allowedExtensions, ext) {
		v.logger.Warn("Unsupported input file type",
			slog.String("file", base),
			slog.String("extension", ext))
		return apperrors.NewAppValidationError(
			fmt.Sprintf("unsupported file type %q, expected one of %s", ext, strings.Join(v.allowedExtensions, ", ")),
			nil,
		).WithContext("extension", ext)
	}

	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary Excel file",
			slog.String("file", base))
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a temporary Excel file", base), nil)
	}
	return nil
}

// ValidateInputFile checks that path names a readable regular file of a
// supported type
func (v *FileValidator) ValidateInputFile(path string) error {
	if err := v.ValidateFileName(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return apperrors.NewNotFoundError(fmt.Sprintf("input file %s", path))
	}
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to stat file %s", path), err)
	}
	if info.IsDir() {
		return apperrors.NewAppValidationError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}
