// Package samples bundles known-good programs in both forms.
package samples

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed *.pseudo *.codes
var files embed.FS

// Sample is one program as pseudocode and as encoded lines.
type Sample struct {
	Name    string
	Pseudo  string
	Encoded string
}

// All returns every bundled sample, sorted by name.
func All() []Sample {
	names, err := fs.Glob(files, "*.pseudo")
	if err != nil {
		panic(err)
	}
	sort.Strings(names)

	samples := make([]Sample, 0, len(names))
	for _, name := range names {
		base := strings.TrimSuffix(name, path.Ext(name))
		samples = append(samples, Sample{
			Name:    base,
			Pseudo:  read(name),
			Encoded: read(base + ".codes"),
		})
	}
	return samples
}

func read(name string) string {
	data, err := files.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return strings.TrimRight(string(data), "\n")
}
