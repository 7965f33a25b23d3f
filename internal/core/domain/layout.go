package domain

import "path/filepath"

const (
	// AugurDirName is the name of the working directory holding all augur state.
	AugurDirName = ".augur"

	// DataDirName is the name of the historical data cache directory.
	DataDirName = "data"

	// ModelsDirName is the name of the model artifact directory.
	ModelsDirName = "models"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "augur.yaml"

	// DataFileExt is the extension of per-identifier historical data files.
	DataFileExt = ".csv"

	// ModelFileExt is the extension of per-identifier model artifact files.
	ModelFileExt = ".model.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultDataPath returns the default path for the historical data cache.
// It joins .augur and data.
func DefaultDataPath() string {
	return filepath.Join(AugurDirName, DataDirName)
}

// DefaultModelsPath returns the default path for model artifacts.
// It joins .augur and models.
func DefaultModelsPath() string {
	return filepath.Join(AugurDirName, ModelsDirName)
}

// DataFileName returns the data cache file name for id.
func DataFileName(id Identifier) string {
	return id.String() + DataFileExt
}

// ModelFileName returns the artifact file name for id.
func ModelFileName(id Identifier) string {
	return id.String() + ModelFileExt
}
