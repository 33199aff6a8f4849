package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/schedreg/internal/compiler"
	"github.com/roach88/schedreg/internal/ir"
	"github.com/roach88/schedreg/internal/registry"
)

// LoadResult contains a catalog loaded from a file or directory.
type LoadResult struct {
	Roles     []ir.RoleDescriptor
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during catalog loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadCatalog loads and compiles a CUE catalog. path is either a single
// .cue file or a directory holding one CUE package.
func LoadCatalog(path string) (*LoadResult, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog: %v", err)}
	}

	var result *LoadResult
	if info.IsDir() {
		result, err = loadDir(path)
	} else {
		result, err = loadFile(path)
	}
	if err != nil {
		return nil, err
	}

	roles, err := compiler.CompileCatalog(result.CUEValue)
	if err != nil {
		return nil, convertCompileError(err)
	}
	result.Roles = roles
	return result, nil
}

func loadFile(path string) (*LoadResult, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading catalog: %v", err)}
	}

	value := cuecontext.New().CompileBytes(src, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, convertCompileError(err)
	}
	return &LoadResult{CUEValue: value, FileCount: 1}, nil
}

func loadDir(dir string) (*LoadResult, error) {
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return &LoadResult{CUEValue: value, FileCount: len(cueFiles)}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// loadRegistry builds the registry the command works against: the catalog
// named by --catalog, or the embedded one. Registry decisions are logged to
// logw.
func loadRegistry(opts *RootOptions, logw io.Writer) (*registry.Registry, error) {
	logger := registry.WithLogger(opts.logger(logw))
	if opts.Catalog == "" {
		return registry.Load(logger)
	}

	result, err := LoadCatalog(opts.Catalog)
	if err != nil {
		return nil, err
	}
	return registry.FromCUE(result.CUEValue, logger)
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: err.Error(),
	}
}

// Error code constants - unified across all CLI commands.
// Catalog content errors reuse the compiler's E2xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	ErrCodeRoleNotFound = "E010" // (kind, role) not registered
	ErrCodeStore        = "E011" // database open, load or save failed
	ErrCodeViolations   = "E012" // schedule values outside their constraints
	ErrCodeTestFailed   = "E013" // one or more scenarios failed
)

// MapFieldToErrorCode maps a compiler error field such as "roles[3].unit"
// to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "roles":
		return compiler.ErrCatalogEmpty
	case field == "cue":
		return ErrCodeBuildFailed
	case strings.HasSuffix(field, ".kind"):
		return compiler.ErrEmptyConsumerKind
	case strings.HasSuffix(field, ".role"):
		return compiler.ErrEmptyRoleName
	case strings.HasSuffix(field, ".relationship"):
		return compiler.ErrEmptyRelationship
	case strings.HasSuffix(field, ".unit"):
		return compiler.ErrUnknownUnitType
	default:
		return ErrCodeGeneric
	}
}
