package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matzehuels/mapdraw/pkg/errors"
	mdio "github.com/matzehuels/mapdraw/pkg/io"
)

// Dataset is a graph file registered under a short code, such as a state
// postal abbreviation. The code is the file name without its extension.
type Dataset struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Path   string `json:"-"`
	Format string `json:"format"`
}

// ListDatasets returns the JSON and CSV graph files in dir, sorted by code.
// A missing directory yields no datasets.
func ListDatasets(dir string) ([]Dataset, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read dataset dir %s", dir)
	}

	var out []Dataset
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".json" && ext != ".csv" {
			continue
		}
		code := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if errors.ValidateDatasetCode(code) != nil {
			continue
		}
		ds := Dataset{
			Code:   code,
			Name:   code,
			Path:   filepath.Join(dir, e.Name()),
			Format: strings.TrimPrefix(ext, "."),
		}
		if ds.Format == FormatJSON {
			if name := readName(ds.Path); name != "" {
				ds.Name = name
			}
		}
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// FindDataset looks up a dataset by code, ignoring case.
func FindDataset(dir, code string) (Dataset, error) {
	if err := errors.ValidateDatasetCode(code); err != nil {
		return Dataset{}, err
	}
	all, err := ListDatasets(dir)
	if err != nil {
		return Dataset{}, err
	}
	for _, ds := range all {
		if strings.EqualFold(ds.Code, code) {
			return ds, nil
		}
	}
	return Dataset{}, errors.New(errors.ErrCodeNotFound, "no dataset %q in %s", code, dir)
}

func readName(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	name, _ := mdio.ReadName(f)
	return name
}
