package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/shoalcove/scalegen/internal/compiler"
	"github.com/shoalcove/scalegen/internal/model"
)

// LoadMode controls how errors are handled during definition loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading definitions from a
// directory: algorithms plus the dimension and taxonomy catalogs.
type LoadResult struct {
	Algorithms []model.Algorithm
	Dimensions map[string]model.Dimension
	Taxonomies map[string]*model.Taxonomy
	CUEValue   cue.Value // The raw CUE value for additional processing
	FileCount  int       // Number of CUE files found
}

// AlgorithmByName returns the loaded algorithm with the given name or
// id.
func (r *LoadResult) AlgorithmByName(name string) (*model.Algorithm, bool) {
	for i := range r.Algorithms {
		if r.Algorithms[i].Name == name || r.Algorithms[i].ID == name {
			return &r.Algorithms[i], true
		}
	}
	return nil, false
}

// LoadError represents an error that occurred during loading.
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

// LoadDefinitions loads and compiles CUE definitions from a directory.
//
// Definitions live under three top-level structs: "algorithm",
// "dimension", and "taxonomy", each keyed by its label. If mode is
// LoadModeFailFast, returns on first error; LoadModeCollectAll
// collects all errors.
func LoadDefinitions(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("definitions directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing definitions directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		Dimensions: make(map[string]model.Dimension),
		Taxonomies: make(map[string]*model.Taxonomy),
		CUEValue:   value,
		FileCount:  len(cueFiles),
	}

	stop := eachField(value, "algorithm", mode, &errs, func(v cue.Value) error {
		alg, err := compiler.CompileAlgorithm(v)
		if err != nil {
			return err
		}
		result.Algorithms = append(result.Algorithms, *alg)
		return nil
	})
	if stop {
		return result, errs
	}

	stop = eachField(value, "dimension", mode, &errs, func(v cue.Value) error {
		dim, err := compiler.CompileDimension(v)
		if err != nil {
			return err
		}
		result.Dimensions[dim.ID] = *dim
		return nil
	})
	if stop {
		return result, errs
	}

	stop = eachField(value, "taxonomy", mode, &errs, func(v cue.Value) error {
		tax, err := compiler.CompileTaxonomy(v)
		if err != nil {
			return err
		}
		result.Taxonomies[tax.ID] = tax
		return nil
	})
	if stop {
		return result, errs
	}

	if len(result.Algorithms) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no algorithms found in definitions"})
	}

	return result, errs
}

// eachField iterates the fields of a top-level struct, compiling each
// one and collecting errors per the load mode. Returns true when the
// caller should stop (fail-fast with an error recorded).
func eachField(value cue.Value, path string, mode LoadMode, errs *[]error, fn func(v cue.Value) error) bool {
	structVal := value.LookupPath(cue.ParsePath(path))
	if !structVal.Exists() {
		return false
	}
	iter, iterErr := structVal.Fields()
	if iterErr != nil {
		*errs = append(*errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating %s definitions: %v", path, iterErr)})
		return mode == LoadModeFailFast
	}
	for iter.Next() {
		if err := fn(iter.Value()); err != nil {
			*errs = append(*errs, convertCompileError(err, path+"."+iter.Label()))
			if mode == LoadModeFailFast {
				return true
			}
		}
	}
	return false
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

// convertCompileError converts a compiler error to a LoadError with
// position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
