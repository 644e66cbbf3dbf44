package schema

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"
)

// Load reads a database definition from path, dispatching on the file
// extension (.cue, .yaml, .yml). A directory is loaded as a CUE package.
// The result is defaulted and validated.
func Load(path string) (Database, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return Database{}, newLoadError(ErrCodeNotFound, "schema not found: %s", path)
	}
	if err != nil {
		return Database{}, newLoadError(ErrCodeNotFound, "error accessing schema: %v", err)
	}

	var db Database
	switch {
	case info.IsDir():
		db, err = LoadCUE(path, ".")
	case filepath.Ext(path) == ".cue":
		db, err = LoadCUE(filepath.Dir(path), filepath.Base(path))
	case filepath.Ext(path) == ".yaml", filepath.Ext(path) == ".yml":
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return Database{}, newLoadError(ErrCodeLoadFailed, "reading %s: %v", path, err)
		}
		db, err = ParseYAML(data)
	default:
		return Database{}, newLoadError(ErrCodeFormat, "unsupported schema format %q (want .cue, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return Database{}, err
	}

	db = db.WithDefaults()
	if err := db.Validate(); err != nil {
		return Database{}, err
	}
	return db, nil
}

// LoadCUE builds the CUE instance named by arg (a file or ".") relative to
// dir and decodes its `database` field.
func LoadCUE(dir, arg string) (Database, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{arg}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return Database{}, newLoadError(ErrCodeLoadFailed, "no CUE instances loaded")
	}

	inst := instances[0]
	if inst.Err != nil {
		return Database{}, newLoadError(ErrCodeLoadFailed, "loading CUE files: %v", inst.Err)
	}

	v := ctx.BuildInstance(inst)
	if err := v.Err(); err != nil {
		return Database{}, formatCUEError(ErrCodeBuildFailed, err)
	}
	return decodeCUE(v)
}

// ParseCUE compiles CUE source and decodes its `database` field.
func ParseCUE(src []byte, filename string) (Database, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Database{}, formatCUEError(ErrCodeBuildFailed, err)
	}
	return decodeCUE(v)
}

func decodeCUE(root cue.Value) (Database, error) {
	dbVal := root.LookupPath(cue.ParsePath("database"))
	if !dbVal.Exists() {
		return Database{}, &LoadError{
			Code:    ErrCodeMissingField,
			Message: "database field is required",
			Pos:     root.Pos(),
		}
	}
	if err := dbVal.Validate(cue.Concrete(true)); err != nil {
		return Database{}, formatCUEError(ErrCodeBuildFailed, err)
	}

	// Round-trip through JSON so seed data keeps exact numbers.
	data, err := dbVal.MarshalJSON()
	if err != nil {
		return Database{}, formatCUEError(ErrCodeBuildFailed, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var db Database
	if err := dec.Decode(&db); err != nil {
		return Database{}, &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: err.Error(),
			Pos:     dbVal.Pos(),
		}
	}
	return db, nil
}

// ParseYAML decodes a YAML database definition.
func ParseYAML(data []byte) (Database, error) {
	var db Database
	if err := yaml.Unmarshal(data, &db); err != nil {
		return Database{}, newLoadError(ErrCodeLoadFailed, "parsing YAML: %v", err)
	}
	return db, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(code string, err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	// Report the first error with its position
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
