package pipeline

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mapdraw/pkg/errors"
)

// LoadOptions reads run options from a TOML file:
//
//	dataset = "GA"
//	districts = 14
//	allowed_deviation = 70000
//	seed = 2023
//	strategy = "frontier"
//
//	[stats]
//	party_a = "G20PREDBID"
//	party_b = "G20PRERTRU"
//
// Keys left out keep the values of [DefaultOptions]. Unknown keys are
// rejected so typos do not silently fall back to defaults.
// A relative graph path is resolved against the file's directory and may not
// leave it; absolute paths are kept as written.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	md, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Options{}, errors.New(errors.ErrCodeInvalidConfig,
			"%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if opts.GraphPath != "" && !filepath.IsAbs(opts.GraphPath) {
		if err := errors.ValidatePath(filepath.ToSlash(opts.GraphPath)); err != nil {
			return Options{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "%s: graph", path)
		}
		opts.GraphPath = filepath.Join(filepath.Dir(path), opts.GraphPath)
	}
	return opts, nil
}
